package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsearch/internal/chunker"
	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch/internal/logger"
)

// Prompt templates for grounded generation.
const (
	ragSystemPrompt = `You are a document search assistant. Answer questions using only the
provided context passages. Cite the source file name when you draw on a
passage. If the context does not contain the answer, say so plainly
instead of guessing.`

	ragQuestionPrompt = `Context passages:

%s

Question: %s

Answer using only the context above.`

	ragSummaryPrompt = `Summarise what the following passages collectively say about "%s" in a
few sentences:

%s`

	noContextAnswer = "I couldn't find anything relevant in the indexed documents."
)

// Generation defaults.
const (
	DefaultMaxContextTokens = 3000
	DefaultAnswerMaxTokens  = 1024
	defaultPingTimeout      = 5 * time.Second
)

// RAGService answers questions grounded in the indexed corpus. It owns
// the chunk-and-embed side of indexing and the retrieve-and-generate
// side of answering. The capability state is decided once at startup
// and consulted before every operation.
type RAGService struct {
	chunks    *chunker.Chunker
	embedder  driven.EmbeddingService
	vectors   driven.VectorStore
	llm       driven.LLMService
	retriever *Retriever

	state            domain.RAGState
	maxContextTokens int
	answerMaxTokens  int
}

// RAGOption configures the RAG service.
type RAGOption func(*RAGService)

// WithMaxContextTokens bounds how much retrieved text a prompt carries.
func WithMaxContextTokens(n int) RAGOption {
	return func(s *RAGService) {
		if n > 0 {
			s.maxContextTokens = n
		}
	}
}

// WithAnswerMaxTokens bounds the generated answer length.
func WithAnswerMaxTokens(n int) RAGOption {
	return func(s *RAGService) {
		if n > 0 {
			s.answerMaxTokens = n
		}
	}
}

// NewRAGService wires the answer pipeline. Any of embedder, llm and
// retriever may be nil; the capability state reflects what is missing.
func NewRAGService(chunks *chunker.Chunker, embedder driven.EmbeddingService, vectors driven.VectorStore, llm driven.LLMService, retriever *Retriever, opts ...RAGOption) *RAGService {
	s := &RAGService{
		chunks:           chunks,
		embedder:         embedder,
		vectors:          vectors,
		llm:              llm,
		retriever:        retriever,
		state:            domain.RAGNotConfigured,
		maxContextTokens: DefaultMaxContextTokens,
		answerMaxTokens:  DefaultAnswerMaxTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckCapability pings the configured providers once and fixes the
// capability state for the life of the process.
func (s *RAGService) CheckCapability(ctx context.Context) domain.RAGState {
	if s.embedder == nil || s.llm == nil || s.vectors == nil {
		s.state = domain.RAGNotConfigured
		return s.state
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := s.embedder.Ping(pingCtx); err != nil {
		logger.Warn("embedding provider unreachable: %v", err)
		s.state = domain.RAGUnavailable
		return s.state
	}
	if err := s.llm.Ping(pingCtx); err != nil {
		logger.Warn("language model provider unreachable: %v", err)
		s.state = domain.RAGUnavailable
		return s.state
	}
	s.state = domain.RAGReady
	return s.state
}

// State returns the capability state decided at startup.
func (s *RAGService) State() domain.RAGState {
	return s.state
}

// IndexDocument chunks and embeds a document's content, replacing any
// previously stored chunks for it.
func (s *RAGService) IndexDocument(ctx context.Context, doc *domain.Document) error {
	if s.state != domain.RAGReady {
		return nil
	}

	chunks := s.chunks.Chunk(doc.ID, doc.Content)
	// Existing chunks go first: an edit can shrink the chunk count and
	// stale tails must not survive.
	if err := s.vectors.DeleteByDocumentID(ctx, doc.ID); err != nil {
		return fmt.Errorf("clearing stale chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.VectorRecord{
			Chunk:     c,
			Embedding: embeddings[i],
			FilePath:  doc.FilePath,
			FileName:  doc.FileName,
		}
	}
	return s.vectors.AddRecords(ctx, records)
}

// DeleteDocument removes a document's chunks from the vector store.
func (s *RAGService) DeleteDocument(ctx context.Context, documentID int64) error {
	if s.vectors == nil {
		return nil
	}
	return s.vectors.DeleteByDocumentID(ctx, documentID)
}

// VectorStats reports the vector store contents.
func (s *RAGService) VectorStats(ctx context.Context) (*domain.VectorStats, error) {
	if s.vectors == nil {
		return &domain.VectorStats{}, nil
	}
	return s.vectors.VectorStats(ctx)
}

// Ask retrieves relevant chunks and generates a grounded answer. A
// non-empty pathFilter restricts retrieval to one file.
func (s *RAGService) Ask(ctx context.Context, question, pathFilter string) (*domain.Answer, error) {
	prompt, sources, err := s.prepare(ctx, question, pathFilter)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return &domain.Answer{ID: uuid.NewString(), Text: noContextAnswer}, nil
	}

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		SystemPrompt: ragSystemPrompt,
		MaxTokens:    s.answerMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	return &domain.Answer{ID: uuid.NewString(), Text: strings.TrimSpace(text), Sources: sources}, nil
}

// AskStream is Ask with incremental output. Tokens arrive on the first
// channel, the grounding sources on the second, and at most one error
// on the third; all three close when the answer is complete.
func (s *RAGService) AskStream(ctx context.Context, question, pathFilter string) (<-chan string, <-chan []domain.RetrievalResult, <-chan error) {
	tokens := make(chan string)
	sourcesCh := make(chan []domain.RetrievalResult, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(tokens)
		defer close(sourcesCh)
		defer close(errCh)

		prompt, sources, err := s.prepare(ctx, question, pathFilter)
		if err != nil {
			errCh <- err
			return
		}
		sourcesCh <- sources
		if len(sources) == 0 {
			select {
			case tokens <- noContextAnswer:
			case <-ctx.Done():
			}
			return
		}

		stream, streamErr := s.llm.GenerateStream(ctx, prompt, driven.GenerateOptions{
			SystemPrompt: ragSystemPrompt,
			MaxTokens:    s.answerMaxTokens,
		})
		for tok := range stream {
			select {
			case tokens <- tok:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if err := <-streamErr; err != nil {
			errCh <- fmt.Errorf("generating answer: %w", err)
		}
	}()

	return tokens, sourcesCh, errCh
}

// SummarizeResults condenses a set of retrieved passages on a topic.
func (s *RAGService) SummarizeResults(ctx context.Context, topic string, results []domain.RetrievalResult) (string, error) {
	if err := s.requireReady(); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return noContextAnswer, nil
	}

	prompt := fmt.Sprintf(ragSummaryPrompt, topic, s.formatContext(results))
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		SystemPrompt: ragSystemPrompt,
		MaxTokens:    s.answerMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summarising: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// prepare retrieves context for a question and renders the prompt.
func (s *RAGService) prepare(ctx context.Context, question, pathFilter string) (string, []domain.RetrievalResult, error) {
	if err := s.requireReady(); err != nil {
		return "", nil, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil, domain.ErrEmptyQuery
	}

	results, err := s.retriever.Retrieve(ctx, question, pathFilter)
	if err != nil {
		return "", nil, fmt.Errorf("retrieving context: %w", err)
	}
	if len(results) == 0 {
		return "", nil, nil
	}
	return fmt.Sprintf(ragQuestionPrompt, s.formatContext(results), question), results, nil
}

func (s *RAGService) requireReady() error {
	switch s.state {
	case domain.RAGReady:
		return nil
	case domain.RAGUnavailable:
		return fmt.Errorf("%w: configured provider is unreachable", domain.ErrLLMUnavailable)
	default:
		return fmt.Errorf("%w: no AI provider configured", domain.ErrLLMUnavailable)
	}
}

// formatContext renders retrieved passages for a prompt, stopping
// before the context budget is exceeded. The budget is approximate,
// counted at four characters per token.
func (s *RAGService) formatContext(results []domain.RetrievalResult) string {
	budget := s.maxContextTokens * chunker.CharsPerToken

	var b strings.Builder
	for i, res := range results {
		passage := fmt.Sprintf("[%d] %s:\n%s\n\n", i+1, res.FileName, res.Content)
		if b.Len() > 0 && b.Len()+len(passage) > budget {
			break
		}
		b.WriteString(passage)
	}
	return strings.TrimSpace(b.String())
}
