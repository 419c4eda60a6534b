package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// UpsertDocument stores a document keyed by file path.
func (s *documentStore) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	if doc.FilePath == "" {
		return fmt.Errorf("%w: document file path required", domain.ErrInvalidInput)
	}

	datesJSON, err := json.Marshal(doc.DetectedDates)
	if err != nil {
		return fmt.Errorf("marshalling detected dates: %w", err)
	}

	now := time.Now().UTC()
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = now
	}
	doc.UpdatedAt = now

	// The insert branch keeps indexed_at; the update branch preserves
	// the original indexed_at of the existing row.
	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO documents (file_path, file_name, file_type, title, content,
			author, file_size, file_modified_at, created_date, modified_date,
			page_count, extraction_method, detected_dates, indexed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			file_name = excluded.file_name,
			file_type = excluded.file_type,
			title = excluded.title,
			content = excluded.content,
			author = excluded.author,
			file_size = excluded.file_size,
			file_modified_at = excluded.file_modified_at,
			created_date = excluded.created_date,
			modified_date = excluded.modified_date,
			page_count = excluded.page_count,
			extraction_method = excluded.extraction_method,
			detected_dates = excluded.detected_dates,
			updated_at = excluded.updated_at
		RETURNING id, indexed_at
	`, doc.FilePath, doc.FileName, doc.FileType, doc.Title, doc.Content,
		doc.Author, doc.FileSize, doc.FileModifiedAt.UTC(),
		nullableTime(doc.CreatedDate), nullableTime(doc.ModifiedDate),
		doc.PageCount, doc.ExtractionMethod, string(datesJSON),
		doc.IndexedAt, doc.UpdatedAt)

	var indexedAt sql.NullTime
	if err := row.Scan(&doc.ID, &indexedAt); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}
	return nil
}

// GetDocumentByPath retrieves a document by its file path.
func (s *documentStore) GetDocumentByPath(ctx context.Context, filePath string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, file_path, file_name, file_type, title, content, author,
			file_size, file_modified_at, created_date, modified_date,
			page_count, extraction_method, detected_dates, indexed_at, updated_at
		FROM documents WHERE file_path = ?
	`, filePath)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// DeleteDocumentByPath removes a document. The FTS triggers clean up
// the full-text entry.
func (s *documentStore) DeleteDocumentByPath(ctx context.Context, filePath string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM documents WHERE file_path = ?", filePath); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListFilePaths returns every indexed file path.
func (s *documentStore) ListFilePaths(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT file_path FROM documents ORDER BY file_path")
	if err != nil {
		return nil, fmt.Errorf("listing file paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning file path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DocumentStats summarises the corpus by file type.
func (s *documentStore) DocumentStats(ctx context.Context) (*domain.DocumentStats, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT file_type, COUNT(*) FROM documents GROUP BY file_type")
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	stats := &domain.DocumentStats{ByFileType: make(map[string]int)}
	for rows.Next() {
		var fileType string
		var count int
		if err := rows.Scan(&fileType, &count); err != nil {
			return nil, fmt.Errorf("scanning document stats: %w", err)
		}
		stats.ByFileType[fileType] = count
		stats.TotalDocuments += count
	}
	return stats, rows.Err()
}

// scanDocument scans a document row using the given scan function.
func scanDocument(scan func(...any) error) (*domain.Document, error) {
	var doc domain.Document
	var modifiedAt, createdDate, modifiedDate, indexedAt, updatedAt sql.NullTime
	var datesJSON string

	if err := scan(&doc.ID, &doc.FilePath, &doc.FileName, &doc.FileType,
		&doc.Title, &doc.Content, &doc.Author, &doc.FileSize,
		&modifiedAt, &createdDate, &modifiedDate, &doc.PageCount,
		&doc.ExtractionMethod, &datesJSON, &indexedAt, &updatedAt); err != nil {
		return nil, err
	}

	if datesJSON != "" && datesJSON != "null" {
		if err := json.Unmarshal([]byte(datesJSON), &doc.DetectedDates); err != nil {
			return nil, fmt.Errorf("unmarshalling detected dates: %w", err)
		}
	}
	if modifiedAt.Valid {
		doc.FileModifiedAt = modifiedAt.Time
	}
	if createdDate.Valid {
		doc.CreatedDate = createdDate.Time
	}
	if modifiedDate.Valid {
		doc.ModifiedDate = modifiedDate.Time
	}
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	return &doc, nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// ==================== File Change Store ====================

// fileChangeStore implements driven.FileChangeStore.
type fileChangeStore struct {
	store *Store
}

var _ driven.FileChangeStore = (*fileChangeStore)(nil)

// UpsertFileChange stores or updates the ledger entry for a file path.
func (s *fileChangeStore) UpsertFileChange(ctx context.Context, rec *domain.FileChangeRecord) error {
	if rec.FilePath == "" {
		return fmt.Errorf("%w: file path required", domain.ErrInvalidInput)
	}
	rec.UpdatedAt = time.Now().UTC()

	// COALESCE keeps the stored last_indexed_at when a pending or
	// failed pass carries none.
	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO file_changes (file_path, content_hash, file_size,
			last_modified, status, error_message, last_indexed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			content_hash = excluded.content_hash,
			file_size = excluded.file_size,
			last_modified = excluded.last_modified,
			status = excluded.status,
			error_message = excluded.error_message,
			last_indexed_at = COALESCE(excluded.last_indexed_at, file_changes.last_indexed_at),
			updated_at = excluded.updated_at
		RETURNING id
	`, rec.FilePath, rec.ContentHash, rec.FileSize, rec.LastModified.UTC(),
		string(rec.Status), rec.ErrorMessage, nullableTime(rec.LastIndexedAt),
		rec.UpdatedAt)

	if err := row.Scan(&rec.ID); err != nil {
		return fmt.Errorf("saving file change record: %w", err)
	}
	return nil
}

// GetFileChange retrieves the ledger entry for a file path.
func (s *fileChangeStore) GetFileChange(ctx context.Context, filePath string) (*domain.FileChangeRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, file_path, content_hash, file_size, last_modified,
			status, error_message, last_indexed_at, updated_at
		FROM file_changes WHERE file_path = ?
	`, filePath)

	var rec domain.FileChangeRecord
	var lastModified, lastIndexedAt, updatedAt sql.NullTime
	var status string
	if err := row.Scan(&rec.ID, &rec.FilePath, &rec.ContentHash, &rec.FileSize,
		&lastModified, &status, &rec.ErrorMessage, &lastIndexedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning file change record: %w", err)
	}

	rec.Status = domain.FileChangeStatus(status)
	if lastModified.Valid {
		rec.LastModified = lastModified.Time
	}
	if lastIndexedAt.Valid {
		rec.LastIndexedAt = lastIndexedAt.Time
	}
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}
	return &rec, nil
}

// DeleteFileChange removes the ledger entry for a file path.
func (s *fileChangeStore) DeleteFileChange(ctx context.Context, filePath string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM file_changes WHERE file_path = ?", filePath); err != nil {
		return fmt.Errorf("deleting file change record: %w", err)
	}
	return nil
}

// CountFileChangesByStatus counts ledger entries per status.
func (s *fileChangeStore) CountFileChangesByStatus(ctx context.Context) (map[domain.FileChangeStatus]int, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM file_changes GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting file changes: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.FileChangeStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning file change counts: %w", err)
		}
		counts[domain.FileChangeStatus(status)] = count
	}
	return counts, rows.Err()
}
