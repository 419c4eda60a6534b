package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

func TestVersionCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "docsearch version dev")
}

func testCmd(buf *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd
}

func TestPrintSearchResponse(t *testing.T) {
	buf := new(bytes.Buffer)
	resp := &domain.SearchResponse{
		Hits: []domain.SearchHit{
			{
				Document: domain.Document{Title: "Quarterly Report", FilePath: "/docs/q1.md", FileName: "q1.md"},
				Score:    3.14,
				Snippets: []string{"the <mark>budget</mark> grew"},
			},
			{
				Document: domain.Document{FilePath: "/docs/plain.txt", FileName: "plain.txt"},
				Score:    1.0,
			},
		},
		Total:    42,
		Page:     2,
		PageSize: 20,
		TookMS:   7,
	}

	require.NoError(t, printSearchResponse(testCmd(buf), resp))
	out := buf.String()
	assert.Contains(t, out, "42 results (page 2 of 3, 7ms)")
	assert.Contains(t, out, "[21] Quarterly Report (3.14)")
	assert.Contains(t, out, "the <mark>budget</mark> grew")
	assert.Contains(t, out, "[22] plain.txt (1.00)", "file name stands in for a missing title")
}

func TestPrintSearchResponseEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, printSearchResponse(testCmd(buf), &domain.SearchResponse{}))
	assert.Contains(t, buf.String(), "No results found.")
}

func TestPrintSourcesDeduplicates(t *testing.T) {
	buf := new(bytes.Buffer)
	printSources(testCmd(buf), []domain.RetrievalResult{
		{FilePath: "/docs/a.txt"},
		{FilePath: "/docs/a.txt"},
		{FilePath: "/docs/b.txt"},
	})
	out := buf.String()
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("/docs/a.txt")))
	assert.Contains(t, out, "/docs/b.txt")
}
