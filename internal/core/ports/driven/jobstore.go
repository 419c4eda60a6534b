package driven

import (
	"context"

	"github.com/custodia-labs/docsearch/internal/core/domain"
)

// JobStore is the durable priority job queue.
// Backed by SQLite so queued work survives restarts.
type JobStore interface {
	// Enqueue adds a pending job. Kind and file path are required;
	// priority and max attempts take kind defaults when zero.
	// The job ID is populated on return.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Dequeue atomically claims the next runnable job: highest priority
	// first, oldest first within a priority. The claimed job moves to
	// processing and its attempt count is incremented. Returns
	// domain.ErrQueueEmpty when nothing is claimable. At most one
	// caller can claim a given job.
	Dequeue(ctx context.Context) (*domain.Job, error)

	// Complete marks a processing job completed.
	Complete(ctx context.Context, id int64) error

	// Fail records a failure for a processing job. If attempts remain,
	// the job returns to pending for a later retry; otherwise it is
	// marked failed with the message retained.
	Fail(ctx context.Context, id int64, message string) error

	// QueueStats counts jobs by status.
	QueueStats(ctx context.Context) (*domain.QueueStats, error)

	// ClearCompleted removes completed jobs, returning how many.
	ClearCompleted(ctx context.Context) (int, error)

	// ClearAll removes every job regardless of status, returning how many.
	ClearAll(ctx context.Context) (int, error)
}
