package sqlite

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// ==================== Vector Store ====================

// vectorStore implements driven.VectorStore. Similarity search is an
// exact scan: every stored embedding is compared with the query, which
// is the right trade at single-machine corpus sizes.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// AddRecords stores chunk embeddings, replacing existing chunk IDs.
func (s *vectorStore) AddRecords(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	dim := len(records[0].Embedding)
	for _, rec := range records {
		if len(rec.Embedding) != dim {
			return fmt.Errorf("%w: got %d and %d in one batch",
				domain.ErrDimensionMismatch, dim, len(rec.Embedding))
		}
	}
	if dim == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}

	storedDim, err := s.storedDimension(ctx)
	if err != nil {
		return err
	}
	if storedDim > 0 && storedDim != dim {
		return fmt.Errorf("%w: store holds %d-dimensional vectors, got %d",
			domain.ErrDimensionMismatch, storedDim, dim)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO vector_chunks (chunk_id, document_id,
			chunk_index, content, start_offset, end_offset,
			file_path, file_name, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Chunk.ID, rec.Chunk.DocumentID,
			rec.Chunk.Index, rec.Chunk.Content, rec.Chunk.StartOffset,
			rec.Chunk.EndOffset, rec.FilePath, rec.FileName,
			float32SliceToBytes(rec.Embedding)); err != nil {
			return fmt.Errorf("saving vector chunk %s: %w", rec.Chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SearchSimilar returns the topK most similar chunks by cosine similarity.
func (s *vectorStore) SearchSimilar(ctx context.Context, embedding []float32, topK int, filePath string) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	sqlQuery := `
		SELECT chunk_id, document_id, content, file_path, file_name, embedding
		FROM vector_chunks
	`
	var args []any
	if filePath != "" {
		sqlQuery += " WHERE file_path = ?"
		args = append(args, filePath)
	}

	rows, err := s.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("scanning vectors: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievalResult
	for rows.Next() {
		var r domain.RetrievalResult
		var blob []byte
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Content,
			&r.FilePath, &r.FileName, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector chunk: %w", err)
		}
		r.Score = CosineSimilarity(embedding, bytesToFloat32Slice(blob))
		r.Source = domain.RetrievalVector
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteByDocumentID removes all chunks of a document.
func (s *vectorStore) DeleteByDocumentID(ctx context.Context, documentID int64) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM vector_chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting vector chunks: %w", err)
	}
	return nil
}

// ClearVectors removes every stored chunk.
func (s *vectorStore) ClearVectors(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM vector_chunks"); err != nil {
		return fmt.Errorf("clearing vector chunks: %w", err)
	}
	return nil
}

// VectorStats summarises the store contents.
func (s *vectorStore) VectorStats(ctx context.Context) (*domain.VectorStats, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT document_id) FROM vector_chunks")

	var stats domain.VectorStats
	if err := row.Scan(&stats.TotalChunks, &stats.TotalDocuments); err != nil {
		return nil, fmt.Errorf("counting vector chunks: %w", err)
	}
	return &stats, nil
}

// storedDimension returns the embedding length currently stored, or 0
// when the store is empty.
func (s *vectorStore) storedDimension(ctx context.Context) (int, error) {
	var byteLen int
	row := s.store.db.QueryRowContext(ctx,
		"SELECT COALESCE((SELECT length(embedding) FROM vector_chunks LIMIT 1), 0)")
	if err := row.Scan(&byteLen); err != nil {
		return 0, fmt.Errorf("reading stored dimension: %w", err)
	}
	return byteLen / 4, nil
}

// CosineSimilarity returns the cosine similarity of two vectors.
// Mismatched lengths and zero vectors yield 0 rather than an error so a
// single bad embedding cannot poison a whole search.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
