package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSnippetsHighlightsMatches(t *testing.T) {
	content := "The quarterly Budget was approved after a long review."

	snips := generateSnippets(content, []string{"budget"}, 3)
	require.Len(t, snips, 1)
	assert.Contains(t, snips[0], "<mark>Budget</mark>", "original casing is preserved")
}

func TestGenerateSnippetsMergesNearbyMatches(t *testing.T) {
	content := "budget planning and budget approval happen together."

	snips := generateSnippets(content, []string{"budget"}, 3)
	require.Len(t, snips, 1, "overlapping windows collapse into one snippet")
	assert.Equal(t, 2, strings.Count(snips[0], "<mark>"))
}

func TestGenerateSnippetsCapsCount(t *testing.T) {
	// Matches far enough apart that their windows cannot merge.
	pad := strings.Repeat("filler words here ", 30)
	content := "alpha " + pad + " alpha " + pad + " alpha " + pad + " alpha"

	snips := generateSnippets(content, []string{"alpha"}, 2)
	assert.Len(t, snips, 2)
}

func TestGenerateSnippetsEllipses(t *testing.T) {
	pad := strings.Repeat("x ", 200)
	content := pad + "needle" + " " + pad

	snips := generateSnippets(content, []string{"needle"}, 1)
	require.Len(t, snips, 1)
	assert.True(t, strings.HasPrefix(snips[0], "..."))
	assert.True(t, strings.HasSuffix(snips[0], "..."))
}

func TestGenerateSnippetsNoMatch(t *testing.T) {
	assert.Nil(t, generateSnippets("nothing relevant here", []string{"absent"}, 3))
	assert.Nil(t, generateSnippets("", []string{"term"}, 3))
	assert.Nil(t, generateSnippets("text", nil, 3))
}

func TestHighlightMultipleTerms(t *testing.T) {
	out := highlight("alpha beta alpha", []string{"alpha", "beta"})
	assert.Equal(t, "<mark>alpha</mark> <mark>beta</mark> <mark>alpha</mark>", out)
}
