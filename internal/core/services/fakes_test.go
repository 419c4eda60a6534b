package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// In-memory fakes for the driven ports. Each fake implements only what
// the services exercise and is safe for concurrent use.

type fakeDocStore struct {
	mu     sync.Mutex
	nextID int64
	byPath map[string]*domain.Document
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{byPath: make(map[string]*domain.Document)}
}

func (f *fakeDocStore) UpsertDocument(_ context.Context, doc *domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byPath[doc.FilePath]; ok {
		doc.ID = existing.ID
	} else {
		f.nextID++
		doc.ID = f.nextID
	}
	clone := *doc
	f.byPath[doc.FilePath] = &clone
	return nil
}

func (f *fakeDocStore) GetDocumentByPath(_ context.Context, filePath string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.byPath[filePath]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *doc
	return &clone, nil
}

func (f *fakeDocStore) DeleteDocumentByPath(_ context.Context, filePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byPath, filePath)
	return nil
}

func (f *fakeDocStore) ListFilePaths(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, 0, len(f.byPath))
	for p := range f.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (f *fakeDocStore) DocumentStats(_ context.Context) (*domain.DocumentStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.DocumentStats{ByFileType: make(map[string]int)}
	for _, doc := range f.byPath {
		stats.TotalDocuments++
		stats.ByFileType[doc.FileType]++
	}
	return stats, nil
}

type fakeChangeStore struct {
	mu     sync.Mutex
	byPath map[string]*domain.FileChangeRecord
}

func newFakeChangeStore() *fakeChangeStore {
	return &fakeChangeStore{byPath: make(map[string]*domain.FileChangeRecord)}
}

func (f *fakeChangeStore) UpsertFileChange(_ context.Context, rec *domain.FileChangeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *rec
	f.byPath[rec.FilePath] = &clone
	return nil
}

func (f *fakeChangeStore) GetFileChange(_ context.Context, filePath string) (*domain.FileChangeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byPath[filePath]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeChangeStore) DeleteFileChange(_ context.Context, filePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byPath, filePath)
	return nil
}

func (f *fakeChangeStore) CountFileChangesByStatus(_ context.Context) (map[domain.FileChangeStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.FileChangeStatus]int)
	for _, rec := range f.byPath {
		counts[rec.Status]++
	}
	return counts, nil
}

type fakeJobStore struct {
	driven.JobStore
	stats domain.QueueStats
}

func (f *fakeJobStore) QueueStats(_ context.Context) (*domain.QueueStats, error) {
	stats := f.stats
	return &stats, nil
}

// fakeSearchStore replays canned hits and records the queries it saw.
type fakeSearchStore struct {
	mu      sync.Mutex
	hits    []domain.SearchHit
	names   []string
	err     error
	queries []domain.ParsedQuery
}

func (f *fakeSearchStore) SearchDocuments(_ context.Context, q domain.ParsedQuery, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	hits := f.hits
	if opts.PageSize > 0 && len(hits) > opts.PageSize {
		hits = hits[:opts.PageSize]
	}
	out := make([]domain.SearchHit, len(hits))
	copy(out, hits)
	return out, nil
}

func (f *fakeSearchStore) CountDocuments(_ context.Context, _ domain.ParsedQuery) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.hits), nil
}

func (f *fakeSearchStore) SuggestFileNames(_ context.Context, prefix string, limit int) ([]string, error) {
	var out []string
	for _, name := range f.names {
		if strings.HasPrefix(name, prefix) && len(out) < limit {
			out = append(out, name)
		}
	}
	return out, nil
}

// fakeVectorStore keeps records in memory and replays canned search
// results.
type fakeVectorStore struct {
	mu         sync.Mutex
	records    map[string]domain.VectorRecord
	results    []domain.RetrievalResult
	searchErr  error
	deleted    []int64
	lastFilter string
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{records: make(map[string]domain.VectorRecord)}
}

func (f *fakeVectorStore) AddRecords(_ context.Context, records []domain.VectorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range records {
		f.records[rec.Chunk.ID] = rec
	}
	return nil
}

func (f *fakeVectorStore) SearchSimilar(_ context.Context, _ []float32, topK int, filePath string) ([]domain.RetrievalResult, error) {
	f.mu.Lock()
	f.lastFilter = filePath
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	results := f.results
	if len(results) > topK {
		results = results[:topK]
	}
	out := make([]domain.RetrievalResult, len(results))
	copy(out, results)
	return out, nil
}

func (f *fakeVectorStore) DeleteByDocumentID(_ context.Context, documentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, documentID)
	for id, rec := range f.records {
		if rec.Chunk.DocumentID == documentID {
			delete(f.records, id)
		}
	}
	return nil
}

func (f *fakeVectorStore) ClearVectors(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = make(map[string]domain.VectorRecord)
	return nil
}

func (f *fakeVectorStore) VectorStats(_ context.Context) (*domain.VectorStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := make(map[int64]bool)
	for _, rec := range f.records {
		docs[rec.Chunk.DocumentID] = true
	}
	return &domain.VectorStats{TotalChunks: len(f.records), TotalDocuments: len(docs)}, nil
}

type fakeEmbedder struct {
	err   error
	pings error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return f.pings }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeLLM replays a canned reply and records the prompts it saw.
type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	pings   error
	prompts []string
	systems []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.systems = append(f.systems, opts.SystemPrompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) GenerateStream(ctx context.Context, prompt string, opts driven.GenerateOptions) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(tokens)
		defer close(errCh)
		text, err := f.Generate(ctx, prompt, opts)
		if err != nil {
			errCh <- err
			return
		}
		for _, word := range strings.Fields(text) {
			select {
			case tokens <- word + " ":
			case <-ctx.Done():
				return
			}
		}
	}()
	return tokens, errCh
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return f.pings }
func (f *fakeLLM) Close() error                 { return nil }

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// fakeRegistry accepts a fixed extension set, replays canned
// extraction results per path, and counts extractions.
type fakeRegistry struct {
	mu          sync.Mutex
	exts        map[string]bool
	results     map[string]*driven.ExtractedText
	errs        map[string]error
	extractions int
}

func newFakeRegistry(exts ...string) *fakeRegistry {
	r := &fakeRegistry{
		exts:    make(map[string]bool),
		results: make(map[string]*driven.ExtractedText),
		errs:    make(map[string]error),
	}
	for _, e := range exts {
		r.exts[e] = true
	}
	return r
}

func (f *fakeRegistry) ExtractorFor(filePath string) (driven.Extractor, error) {
	if !f.CanExtract(filePath) {
		return nil, domain.ErrUnsupportedType
	}
	return &fakeExtractor{reg: f}, nil
}

func (f *fakeRegistry) CanExtract(filePath string) bool {
	return f.exts[strings.ToLower(filepath.Ext(filePath))]
}

func (f *fakeRegistry) SupportedExtensions() []string {
	exts := make([]string, 0, len(f.exts))
	for e := range f.exts {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}

type fakeExtractor struct {
	reg *fakeRegistry
}

func (e *fakeExtractor) Name() string         { return "fake" }
func (e *fakeExtractor) Extensions() []string { return e.reg.SupportedExtensions() }

func (e *fakeExtractor) Extract(_ context.Context, filePath string) (*driven.ExtractedText, error) {
	e.reg.mu.Lock()
	e.reg.extractions++
	e.reg.mu.Unlock()
	if err, ok := e.reg.errs[filePath]; ok {
		return nil, err
	}
	if res, ok := e.reg.results[filePath]; ok {
		return res, nil
	}
	stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return &driven.ExtractedText{Title: stem, Content: fmt.Sprintf("content of %s", filePath)}, nil
}

func (f *fakeRegistry) extractionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extractions
}

// fakeReranker reverses the candidates so tests can tell it ran.
type fakeReranker struct {
	available bool
	err       error
	calls     int
}

func (f *fakeReranker) Available(_ context.Context) bool { return f.available }

func (f *fakeReranker) Rerank(_ context.Context, _ string, candidates []domain.RetrievalResult, topK int) ([]domain.RetrievalResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.RetrievalResult, len(candidates))
	for i, c := range candidates {
		out[len(candidates)-1-i] = c
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

var errFakeBoom = errors.New("boom")
