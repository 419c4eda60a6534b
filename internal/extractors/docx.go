package extractors

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// Ensure Docx implements the interface.
var _ driven.Extractor = (*Docx)(nil)

// Docx extracts Word documents. A .docx file is a ZIP archive; the
// text lives in word/document.xml and the title and author in
// docProps/core.xml.
type Docx struct{}

// NewDocx creates a Word document extractor.
func NewDocx() *Docx {
	return &Docx{}
}

// Name identifies the extractor in logs.
func (e *Docx) Name() string {
	return "docx"
}

// Extensions returns the handled file extensions.
func (e *Docx) Extensions() []string {
	return []string{".docx"}
}

// documentXML mirrors the parts of word/document.xml we read: the
// paragraphs, their runs, and the text inside each run.
type documentXML struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text []struct {
					Content string `xml:",chardata"`
				} `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// coreXML mirrors the document properties in docProps/core.xml. The
// dcterms dates are W3CDTF, which RFC 3339 covers.
type coreXML struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Created  string `xml:"created"`
	Modified string `xml:"modified"`
}

// appXML mirrors the extended properties in docProps/app.xml.
type appXML struct {
	Pages int `xml:"Pages"`
}

// Extract opens the archive and pulls text paragraph by paragraph.
func (e *Docx) Extract(_ context.Context, filePath string) (*driven.ExtractedText, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer reader.Close()

	content, err := docxText(&reader.Reader)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}

	extracted := &driven.ExtractedText{
		Title:   titleFromPath(filePath),
		Content: content,
	}
	if core := docxProps(&reader.Reader); core != nil {
		if t := strings.TrimSpace(core.Title); t != "" {
			extracted.Title = t
		}
		extracted.Author = strings.TrimSpace(core.Creator)
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(core.Created)); err == nil {
			extracted.CreatedAt = t
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(core.Modified)); err == nil {
			extracted.ModifiedAt = t
		}
	}
	if app := docxAppProps(&reader.Reader); app != nil {
		extracted.PageCount = app.Pages
	}
	return extracted, nil
}

// docxText reads word/document.xml and joins its paragraphs with
// blank lines, preserving paragraph structure for chunking.
func docxText(reader *zip.Reader) (string, error) {
	data, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", nil
	}

	var doc documentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parsing document xml: %w", err)
	}

	paragraphs := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, run := range para.Runs {
			for _, text := range run.Text {
				b.WriteString(text.Content)
			}
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// docxProps reads docProps/core.xml. Missing or malformed properties
// are not an error; the archive member is optional.
func docxProps(reader *zip.Reader) *coreXML {
	data, err := readArchiveFile(reader, "docProps/core.xml")
	if err != nil || data == nil {
		return nil
	}
	var core coreXML
	if err := xml.Unmarshal(data, &core); err != nil {
		return nil
	}
	return &core
}

// docxAppProps reads docProps/app.xml, which is optional like core.xml.
func docxAppProps(reader *zip.Reader) *appXML {
	data, err := readArchiveFile(reader, "docProps/app.xml")
	if err != nil || data == nil {
		return nil
	}
	var app appXML
	if err := xml.Unmarshal(data, &app); err != nil {
		return nil
	}
	return &app
}

// readArchiveFile returns a member's bytes, or nil when absent.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}
