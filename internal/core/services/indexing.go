package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch/internal/indexer"
	"github.com/custodia-labs/docsearch/internal/logger"
)

// DefaultMaxFileSize is the largest file the coordinator will extract.
const DefaultMaxFileSize int64 = 50 * 1024 * 1024

// DefaultReindexWorkers bounds the parallelism of a full reindex walk.
const DefaultReindexWorkers = 4

// IndexService coordinates a file's journey into the index: change
// detection, extraction, metadata mining, persistence and, when a RAG
// pipeline is attached, chunk embedding. It is the processor behind
// the worker pool.
type IndexService struct {
	docs    driven.DocumentStore
	changes driven.FileChangeStore
	jobs    driven.JobStore
	reg     driven.ExtractorRegistry

	// rag is optional; nil disables chunk embedding entirely.
	rag *RAGService

	maxFileSize    int64
	reindexWorkers int
	ignorePatterns []string
}

// IndexOption configures the index service.
type IndexOption func(*IndexService)

// WithMaxFileSize sets the extraction size cutoff in bytes.
func WithMaxFileSize(n int64) IndexOption {
	return func(s *IndexService) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithReindexWorkers sets the full-reindex parallelism.
func WithReindexWorkers(n int) IndexOption {
	return func(s *IndexService) {
		if n > 0 {
			s.reindexWorkers = n
		}
	}
}

// WithIgnorePatterns sets the glob patterns excluded from the bulk
// reindex walk, matched against file names and every ancestor
// directory name. Pass the same patterns the watcher uses so the
// corpus does not depend on how a file entered.
func WithIgnorePatterns(patterns []string) IndexOption {
	return func(s *IndexService) {
		s.ignorePatterns = patterns
	}
}

// WithRAG attaches the retrieval pipeline so indexed documents are
// chunked and embedded. Embedding failures never fail the index pass.
func WithRAG(rag *RAGService) IndexOption {
	return func(s *IndexService) {
		s.rag = rag
	}
}

// NewIndexService creates the coordinator over the given stores.
func NewIndexService(docs driven.DocumentStore, changes driven.FileChangeStore, jobs driven.JobStore, reg driven.ExtractorRegistry, opts ...IndexOption) *IndexService {
	s := &IndexService{
		docs:           docs,
		changes:        changes,
		jobs:           jobs,
		reg:            reg,
		maxFileSize:    DefaultMaxFileSize,
		reindexWorkers: DefaultReindexWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexFile indexes one file, skipping it when the stored content hash
// shows it unchanged since the last successful pass.
func (s *IndexService) IndexFile(ctx context.Context, path string) error {
	return s.indexFile(ctx, path, false)
}

// ReindexFile indexes one file unconditionally.
func (s *IndexService) ReindexFile(ctx context.Context, path string) error {
	return s.indexFile(ctx, path, true)
}

func (s *IndexService) indexFile(ctx context.Context, path string, force bool) error {
	info, err := os.Stat(path)
	if err != nil {
		// The file vanished between enqueue and claim; nothing to do.
		logger.Debug("skipping %s: %v", path, err)
		return nil
	}
	if info.IsDir() {
		return nil
	}
	if !s.reg.CanExtract(path) {
		logger.Debug("skipping %s: unsupported type", path)
		return nil
	}
	if info.Size() > s.maxFileSize {
		logger.Warn("skipping %s: %d bytes exceeds the %d byte limit", path, info.Size(), s.maxFileSize)
		return nil
	}

	hash, err := indexer.HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}

	prior, err := s.changes.GetFileChange(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("loading change record for %s: %w", path, err)
	}
	// A pending record still carries the hash of the last successful
	// pass, so a spurious event on an unchanged file is skipped too.
	if !force && prior != nil && prior.Status != domain.FileChangeFailed && prior.ContentHash == hash {
		logger.Debug("unchanged: %s", path)
		return nil
	}

	ext, err := s.reg.ExtractorFor(path)
	if err != nil {
		return err
	}
	extracted, err := ext.Extract(ctx, path)
	if err != nil {
		// Record the failure but keep the last successful hash so the
		// file is retried the next time it is seen.
		s.recordChange(ctx, path, info, prior, domain.FileChangeFailed, err.Error())
		return fmt.Errorf("extracting %s: %w", path, err)
	}

	doc := &domain.Document{
		FilePath:         path,
		FileName:         filepath.Base(path),
		FileType:         strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
		Title:            extracted.Title,
		Content:          extracted.Content,
		Author:           extracted.Author,
		FileSize:         info.Size(),
		FileModifiedAt:   info.ModTime(),
		CreatedDate:      extracted.CreatedAt,
		ModifiedDate:     extracted.ModifiedAt,
		PageCount:        extracted.PageCount,
		ExtractionMethod: ext.Name(),
		DetectedDates:    indexer.ExtractDates(extracted.Content),
	}
	if doc.CreatedDate.IsZero() {
		doc.CreatedDate = info.ModTime()
	}
	if doc.ModifiedDate.IsZero() {
		doc.ModifiedDate = info.ModTime()
	}
	if err := s.docs.UpsertDocument(ctx, doc); err != nil {
		return fmt.Errorf("storing %s: %w", path, err)
	}

	rec := &domain.FileChangeRecord{FilePath: path, ContentHash: hash}
	s.recordChange(ctx, path, info, rec, domain.FileChangeIndexed, "")

	if s.rag != nil {
		if err := s.rag.IndexDocument(ctx, doc); err != nil {
			logger.Warn("embedding %s: %v", path, err)
		}
	}

	logger.Info("indexed %s (%d bytes, %d dates)", path, info.Size(), len(doc.DetectedDates))
	return nil
}

// recordChange writes the change-detection ledger entry. The content
// hash carried in base is only set on success paths; failures reuse the
// prior hash. Ledger write errors are logged, not propagated: they do
// not undo a successful index pass.
func (s *IndexService) recordChange(ctx context.Context, path string, info fs.FileInfo, base *domain.FileChangeRecord, status domain.FileChangeStatus, msg string) {
	rec := &domain.FileChangeRecord{
		FilePath:     path,
		FileSize:     info.Size(),
		LastModified: info.ModTime(),
		Status:       status,
		ErrorMessage: msg,
		UpdatedAt:    time.Now().UTC(),
	}
	if base != nil {
		rec.ContentHash = base.ContentHash
		rec.LastIndexedAt = base.LastIndexedAt
	}
	if status == domain.FileChangeIndexed {
		rec.LastIndexedAt = rec.UpdatedAt
	}
	if err := s.changes.UpsertFileChange(ctx, rec); err != nil {
		logger.Warn("recording change for %s: %v", path, err)
	}
}

// NotePending marks a path as seen but not yet processed, typically
// when a watcher event is queued. The hash and last-indexed time of
// the last successful pass are preserved so the skip-unchanged check
// still holds.
func (s *IndexService) NotePending(ctx context.Context, path string) {
	rec := &domain.FileChangeRecord{
		FilePath:  path,
		Status:    domain.FileChangePending,
		UpdatedAt: time.Now().UTC(),
	}
	if prior, err := s.changes.GetFileChange(ctx, path); err == nil {
		rec.ContentHash = prior.ContentHash
		rec.LastIndexedAt = prior.LastIndexedAt
	}
	if info, err := os.Stat(path); err == nil {
		rec.FileSize = info.Size()
		rec.LastModified = info.ModTime()
	}
	if err := s.changes.UpsertFileChange(ctx, rec); err != nil {
		logger.Warn("recording pending change for %s: %v", path, err)
	}
}

// DeleteFile removes a file from every index surface: the document
// row (and with it the full-text entry), the change ledger, and any
// stored chunk embeddings. Deleting an unindexed path is not an error.
func (s *IndexService) DeleteFile(ctx context.Context, path string) error {
	doc, err := s.docs.GetDocumentByPath(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	if err := s.docs.DeleteDocumentByPath(ctx, path); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	if err := s.changes.DeleteFileChange(ctx, path); err != nil {
		logger.Warn("clearing change record for %s: %v", path, err)
	}
	if doc != nil && s.rag != nil {
		if err := s.rag.DeleteDocument(ctx, doc.ID); err != nil {
			logger.Warn("clearing embeddings for %s: %v", path, err)
		}
	}

	logger.Info("removed %s from the index", path)
	return nil
}

// ReindexAll walks the given roots and indexes every supported file,
// with bounded parallelism. Files whose stored hash is unchanged are
// skipped, so repeated runs over a quiet corpus cost only a hash per
// file. It also drops indexed documents whose source files no longer
// exist under any root. Returns the number of files indexed and the
// number that failed.
func (s *IndexService) ReindexAll(ctx context.Context, roots []string) (indexed, failed int, err error) {
	paths, err := s.collectFiles(roots)
	if err != nil {
		return 0, 0, err
	}

	var okCount, failCount atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.reindexWorkers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := s.indexFile(gctx, path, false); err != nil {
				logger.Warn("reindex %s: %v", path, err)
				failCount.Add(1)
				return nil
			}
			okCount.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(okCount.Load()), int(failCount.Load()), err
	}

	if err := s.pruneMissing(ctx, paths); err != nil {
		logger.Warn("pruning removed files: %v", err)
	}
	return int(okCount.Load()), int(failCount.Load()), nil
}

// collectFiles gathers every extractable file under the roots,
// applying the same ignore patterns the watcher applies.
func (s *IndexService) collectFiles(roots []string) ([]string, error) {
	var paths []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("walking %s: %v", path, err)
				return nil
			}
			if d.IsDir() {
				if path != root && indexer.IgnoredPath(path, s.ignorePatterns) {
					return filepath.SkipDir
				}
				return nil
			}
			if indexer.IgnoredPath(path, s.ignorePatterns) {
				return nil
			}
			if s.reg.CanExtract(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return paths, nil
}

// pruneMissing deletes indexed documents whose files were not seen in
// the latest full walk.
func (s *IndexService) pruneMissing(ctx context.Context, seen []string) error {
	current := make(map[string]bool, len(seen))
	for _, p := range seen {
		current[p] = true
	}

	indexed, err := s.docs.ListFilePaths(ctx)
	if err != nil {
		return err
	}
	for _, p := range indexed {
		if current[p] {
			continue
		}
		if _, statErr := os.Stat(p); statErr == nil {
			// Outside the walked roots but still on disk; leave it.
			continue
		}
		if err := s.DeleteFile(ctx, p); err != nil {
			logger.Warn("pruning %s: %v", p, err)
		}
	}
	return nil
}

// IndexStats aggregates the health of every index surface.
type IndexStats struct {
	Documents *domain.DocumentStats
	Changes   map[domain.FileChangeStatus]int
	Queue     *domain.QueueStats
	Vectors   *domain.VectorStats
	RAGState  domain.RAGState
}

// Stats reports corpus, ledger, queue and vector store counts.
func (s *IndexService) Stats(ctx context.Context) (*IndexStats, error) {
	docStats, err := s.docs.DocumentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}
	changeCounts, err := s.changes.CountFileChangesByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("change stats: %w", err)
	}
	queueStats, err := s.jobs.QueueStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}

	stats := &IndexStats{
		Documents: docStats,
		Changes:   changeCounts,
		Queue:     queueStats,
		RAGState:  domain.RAGNotConfigured,
	}
	if s.rag != nil {
		stats.RAGState = s.rag.State()
		if vs, err := s.rag.VectorStats(ctx); err == nil {
			stats.Vectors = vs
		}
	}
	return stats, nil
}
