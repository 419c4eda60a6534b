// Package chunker splits document text into overlapping chunks sized for
// embedding models.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

// Sizes are expressed in tokens and converted to characters with a flat
// estimate, which is close enough for chunk budgeting.
const (
	// DefaultChunkTokens is the default chunk budget in tokens.
	DefaultChunkTokens = 500

	// DefaultOverlapTokens is the default overlap carried between
	// consecutive chunks, in tokens.
	DefaultOverlapTokens = 50

	// CharsPerToken is the character estimate for one token.
	CharsPerToken = 4

	// minChunkChars is the smallest chunk worth emitting on its own.
	minChunkChars = 50

	// minDocumentChars is the smallest document worth chunking at all.
	// Shorter documents produce nothing; documents between this and
	// minChunkChars produce a single chunk.
	minDocumentChars = 20
)

// Chunker splits text on paragraph boundaries, falling back to sentences
// and then raw character windows for oversized paragraphs.
type Chunker struct {
	maxChars     int
	overlapChars int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkTokens sets the chunk budget in tokens.
func WithChunkTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens > 0 {
			c.maxChars = tokens * CharsPerToken
		}
	}
}

// WithOverlapTokens sets the overlap between chunks in tokens.
func WithOverlapTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens >= 0 {
			c.overlapChars = tokens * CharsPerToken
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxChars:     DefaultChunkTokens * CharsPerToken,
		overlapChars: DefaultOverlapTokens * CharsPerToken,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for new content in every chunk.
	if c.overlapChars >= c.maxChars {
		c.overlapChars = c.maxChars / 4
	}

	return c
}

// span is a half-open [start, end) range into the source text.
type span struct {
	start, end int
}

// Chunk splits text into chunks for the given document. Chunk IDs are
// deterministic ("{documentID}_{index}") so re-chunking a document
// produces the same IDs, and offsets index into the trimmed text. The
// overlap prefix counts against each chunk's budget, so no chunk
// exceeds the configured size.
func (c *Chunker) Chunk(documentID int64, text string) []domain.Chunk {
	text = strings.TrimSpace(text)
	if len(text) < minDocumentChars {
		return nil
	}
	if len(text) < minChunkChars {
		return []domain.Chunk{c.makeChunk(documentID, 0, text, 0)}
	}

	acc := newAccumulator(c, text)
	for _, para := range splitParagraphs(text) {
		if para.end-para.start > c.maxChars {
			acc.flush()
			for _, s := range c.splitOversized(text, para) {
				acc.emit(s)
			}
			acc.reset(para.end)
			continue
		}
		acc.add(para)
	}
	acc.flush()

	return c.assemble(documentID, text, acc.spans)
}

// accumulator grows a chunk span paragraph by paragraph, carrying an
// overlap prefix from the previously emitted span into the budget of
// the next one.
type accumulator struct {
	c     *Chunker
	text  string
	spans []span

	start, end int
	carry      int
}

func newAccumulator(c *Chunker, text string) *accumulator {
	return &accumulator{c: c, text: text}
}

func (a *accumulator) add(s span) {
	if a.end > a.start && a.carry+(a.end-a.start)+(s.end-s.start) > a.c.maxChars {
		a.flush()
	}
	if a.end == a.start {
		a.start, a.end = s.start, s.start
		if len(a.spans) > 0 {
			a.carry = a.c.overlapLen(a.text, a.start)
			if a.carry+(s.end-s.start) > a.c.maxChars {
				a.carry = a.c.maxChars - (s.end - s.start)
			}
		}
	}
	a.end = s.end
}

func (a *accumulator) flush() {
	if a.end > a.start {
		a.spans = append(a.spans, span{start: a.start - a.carry, end: a.end})
	}
	a.reset(a.end)
}

func (a *accumulator) emit(s span) {
	a.spans = append(a.spans, s)
}

func (a *accumulator) reset(pos int) {
	a.start, a.end, a.carry = pos, pos, 0
}

// assemble turns final content spans into chunks, folding a too-small
// span into its predecessor when it fits the budget.
func (c *Chunker) assemble(documentID int64, text string, spans []span) []domain.Chunk {
	var chunks []domain.Chunk

	for _, s := range spans {
		content := text[s.start:s.end]
		if strings.TrimSpace(content) == "" {
			continue
		}

		if len(strings.TrimSpace(content)) < minChunkChars && len(chunks) > 0 {
			prev := &chunks[len(chunks)-1]
			if (s.end - prev.StartOffset) <= c.maxChars {
				prev.Content = text[prev.StartOffset:s.end]
				prev.EndOffset = s.end
				continue
			}
		}

		chunks = append(chunks, c.makeChunk(documentID, len(chunks), content, s.start))
	}

	return chunks
}

// overlapLen returns how many characters before pos to carry into the
// next chunk. The raw tail is trimmed forward to the first word boundary
// so chunks never start mid-word.
func (c *Chunker) overlapLen(text string, pos int) int {
	n := c.overlapChars
	if n > pos {
		n = pos
	}
	tail := text[pos-n : pos]
	if idx := strings.IndexAny(tail, " \t\n"); idx >= 0 {
		return n - idx - 1
	}
	return 0
}

func (c *Chunker) makeChunk(documentID int64, index int, content string, start int) domain.Chunk {
	return domain.Chunk{
		ID:          fmt.Sprintf("%d_%d", documentID, index),
		DocumentID:  documentID,
		Index:       index,
		Content:     content,
		StartOffset: start,
		EndOffset:   start + len(content),
	}
}

// splitOversized breaks a paragraph that exceeds the chunk budget into
// sentence accumulations, and any single oversized sentence into raw
// character windows.
func (c *Chunker) splitOversized(text string, para span) []span {
	acc := newAccumulator(c, text)
	acc.reset(para.start)

	for _, sent := range splitSentences(text, para) {
		if sent.end-sent.start > c.maxChars {
			acc.flush()
			step := c.maxChars - c.overlapChars
			for s := sent.start; s < sent.end; s += step {
				e := s + c.maxChars
				if e > sent.end {
					e = sent.end
				}
				acc.emit(span{start: s, end: e})
				if e == sent.end {
					break
				}
			}
			acc.reset(sent.end)
			continue
		}
		acc.add(sent)
	}
	acc.flush()

	return acc.spans
}

// splitParagraphs returns contiguous paragraph spans covering the text.
// A paragraph boundary is a newline followed by optional whitespace and
// another newline; the separator stays attached to the paragraph before
// it so spans tile the text exactly.
func splitParagraphs(text string) []span {
	var spans []span
	start := 0
	i := 0

	for i < len(text) {
		if text[i] != '\n' {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\r') {
			j++
		}
		if j < len(text) && text[j] == '\n' {
			// Consume any further blank lines.
			for j < len(text) && (text[j] == '\n' || text[j] == ' ' || text[j] == '\t' || text[j] == '\r') {
				j++
			}
			spans = append(spans, span{start: start, end: j})
			start = j
			i = j
			continue
		}
		i++
	}

	if start < len(text) {
		spans = append(spans, span{start: start, end: len(text)})
	}
	return spans
}

// splitSentences returns contiguous sentence spans within a paragraph.
// A sentence ends at '.', '!' or '?' followed by whitespace; the
// whitespace stays attached to the sentence before it.
func splitSentences(text string, para span) []span {
	var spans []span
	start := para.start

	for i := para.start; i < para.end-1; i++ {
		ch := text[i]
		if ch != '.' && ch != '!' && ch != '?' {
			continue
		}
		next := text[i+1]
		if next != ' ' && next != '\t' && next != '\n' {
			continue
		}
		j := i + 1
		for j < para.end && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
			j++
		}
		spans = append(spans, span{start: start, end: j})
		start = j
		i = j - 1
	}

	if start < para.end {
		spans = append(spans, span{start: start, end: para.end})
	}
	return spans
}
