package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// ==================== Job Store ====================

// jobStore implements driven.JobStore as a durable priority queue.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

// Enqueue adds a pending job, filling in kind defaults.
func (s *jobStore) Enqueue(ctx context.Context, job *domain.Job) error {
	if !job.Kind.IsValid() {
		return fmt.Errorf("%w: unknown job kind %q", domain.ErrInvalidInput, job.Kind)
	}
	if job.FilePath == "" {
		return fmt.Errorf("%w: job file path required", domain.ErrInvalidInput)
	}

	if job.Priority == 0 {
		job.Priority = job.Kind.DefaultPriority()
	}
	if job.MaxAttempts <= 0 {
		job.MaxAttempts = domain.DefaultMaxAttempts
	}
	job.Status = domain.JobPending
	job.Attempts = 0

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO jobs (kind, file_path, priority, status, attempts,
			max_attempts, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, '', ?, ?)
		RETURNING id
	`, string(job.Kind), job.FilePath, job.Priority, string(job.Status),
		job.MaxAttempts, job.CreatedAt, job.UpdatedAt)

	if err := row.Scan(&job.ID); err != nil {
		return fmt.Errorf("enqueueing job: %w", err)
	}
	return nil
}

// Dequeue atomically claims the next runnable job. The single UPDATE
// statement guarantees at most one caller wins a given job even with
// concurrent dequeuers.
func (s *jobStore) Dequeue(ctx context.Context) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx, `
		UPDATE jobs
		SET status = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = ? AND attempts < max_attempts
			ORDER BY priority DESC, created_at ASC, id ASC
			LIMIT 1
		) AND status = ?
		RETURNING id, kind, file_path, priority, status, attempts,
			max_attempts, error, created_at, updated_at
	`, string(domain.JobProcessing), time.Now().UTC(),
		string(domain.JobPending), string(domain.JobPending))

	job, err := scanJob(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQueueEmpty
		}
		return nil, fmt.Errorf("dequeueing job: %w", err)
	}
	return job, nil
}

// Complete marks a processing job completed.
func (s *jobStore) Complete(ctx context.Context, id int64) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = '', updated_at = ?
		WHERE id = ? AND status = ?
	`, string(domain.JobCompleted), time.Now().UTC(), id, string(domain.JobProcessing))
	if err != nil {
		return fmt.Errorf("completing job: %w", err)
	}
	return requireRow(res, id)
}

// Fail records a failure. The job returns to pending while attempts
// remain, and becomes terminally failed once they are exhausted. The
// retried job keeps its identity and attempt count.
func (s *jobStore) Fail(ctx context.Context, id int64, message string) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = CASE WHEN attempts >= max_attempts THEN ? ELSE ? END,
			error = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(domain.JobFailed), string(domain.JobPending),
		message, time.Now().UTC(), id, string(domain.JobProcessing))
	if err != nil {
		return fmt.Errorf("failing job: %w", err)
	}
	return requireRow(res, id)
}

// QueueStats counts jobs by status.
func (s *jobStore) QueueStats(ctx context.Context) (*domain.QueueStats, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting jobs: %w", err)
	}
	defer rows.Close()

	var stats domain.QueueStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning job counts: %w", err)
		}
		switch domain.JobStatus(status) {
		case domain.JobPending:
			stats.Pending = count
		case domain.JobProcessing:
			stats.Processing = count
		case domain.JobCompleted:
			stats.Completed = count
		case domain.JobFailed:
			stats.Failed = count
		}
	}
	return &stats, rows.Err()
}

// ClearCompleted removes completed jobs.
func (s *jobStore) ClearCompleted(ctx context.Context) (int, error) {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM jobs WHERE status = ?", string(domain.JobCompleted))
	if err != nil {
		return 0, fmt.Errorf("clearing completed jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ClearAll removes every job.
func (s *jobStore) ClearAll(ctx context.Context) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM jobs")
	if err != nil {
		return 0, fmt.Errorf("clearing jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// requireRow translates a zero-row update into ErrNotFound so callers
// notice completion or failure of a job they no longer hold.
func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// scanJob scans a job row using the given scan function.
func scanJob(scan func(...any) error) (*domain.Job, error) {
	var job domain.Job
	var kind, status string
	var createdAt, updatedAt sql.NullTime

	if err := scan(&job.ID, &kind, &job.FilePath, &job.Priority, &status,
		&job.Attempts, &job.MaxAttempts, &job.Error, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	job.Kind = domain.JobKind(kind)
	job.Status = domain.JobStatus(status)
	if createdAt.Valid {
		job.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		job.UpdatedAt = updatedAt.Time
	}
	return &job, nil
}
