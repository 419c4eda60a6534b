package extractors

import (
	"context"
	"fmt"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"strings"

	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// Ensure Eml implements the interface.
var _ driven.Extractor = (*Eml)(nil)

// Eml extracts saved email messages. The subject becomes the title,
// the sender the author, and the searchable content carries the key
// headers followed by the decoded body text.
type Eml struct{}

// NewEml creates an email extractor.
func NewEml() *Eml {
	return &Eml{}
}

// Name identifies the extractor in logs.
func (e *Eml) Name() string {
	return "eml"
}

// Extensions returns the handled file extensions.
func (e *Eml) Extensions() []string {
	return []string{".eml"}
}

// Extract parses the message and renders headers plus body text.
func (e *Eml) Extract(_ context.Context, filePath string) (*driven.ExtractedText, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	from := decodeHeader(msg.Header.Get("From"))
	to := decodeHeader(msg.Header.Get("To"))
	date := msg.Header.Get("Date")

	body, err := emailBody(msg)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", filePath, err)
	}

	var content strings.Builder
	for _, header := range []struct{ name, value string }{
		{"From", from},
		{"To", to},
		{"Date", date},
		{"Subject", subject},
	} {
		if header.value != "" {
			fmt.Fprintf(&content, "%s: %s\n", header.name, header.value)
		}
	}
	content.WriteString("\n")
	content.WriteString(body)

	title := subject
	if title == "" {
		title = titleFromPath(filePath)
	}
	extracted := &driven.ExtractedText{
		Title:   title,
		Content: strings.TrimSpace(content.String()),
		Author:  from,
	}
	if sent, err := msg.Header.Date(); err == nil {
		extracted.CreatedAt = sent
		extracted.ModifiedAt = sent
	}
	return extracted, nil
}

// decodeHeader decodes RFC 2047 encoded words, keeping the raw header
// when decoding fails.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// emailBody pulls the text content out of the message, preferring
// text/plain parts of multipart messages and stripping markup from
// HTML-only mail.
func emailBody(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unparseable content types are read as plain text.
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return "", readErr
		}
		return string(body), nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return multipartBody(msg.Body, params["boundary"])
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", err
	}
	if mediaType == "text/html" {
		return stripMarkup(string(body)), nil
	}
	return string(body), nil
}

// multipartBody walks the parts, collecting text/plain ones and
// falling back to stripped text/html when that is all there is.
func multipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	var plain, htmlParts []string
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		mediaType, params, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil {
			continue
		}
		switch {
		case mediaType == "text/plain":
			if data, err := io.ReadAll(part); err == nil {
				plain = append(plain, string(data))
			}
		case mediaType == "text/html":
			if data, err := io.ReadAll(part); err == nil {
				htmlParts = append(htmlParts, stripMarkup(string(data)))
			}
		case strings.HasPrefix(mediaType, "multipart/"):
			if nested, err := multipartBody(part, params["boundary"]); err == nil && nested != "" {
				plain = append(plain, nested)
			}
		}
	}

	if len(plain) > 0 {
		return strings.Join(plain, "\n\n"), nil
	}
	return strings.Join(htmlParts, "\n\n"), nil
}

// stripMarkup removes HTML tags, keeping block boundaries as newlines.
func stripMarkup(s string) string {
	s = scriptTag.ReplaceAllString(s, "")
	s = styleTag.ReplaceAllString(s, "")
	s = blockEnd.ReplaceAllString(s, "\n\n")
	s = anyTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = lineSpace.ReplaceAllString(s, " ")
	s = multiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
