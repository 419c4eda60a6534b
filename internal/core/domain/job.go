package domain

import "time"

// JobKind identifies the operation a queued job performs.
type JobKind string

// Available job kinds.
const (
	// JobIndex indexes or re-indexes a single file.
	JobIndex JobKind = "index"

	// JobReindex forces re-extraction of a single file even when the
	// content hash is unchanged.
	JobReindex JobKind = "reindex"

	// JobDelete removes a file from the index.
	JobDelete JobKind = "delete"
)

// IsValid returns true if the job kind is recognised.
func (k JobKind) IsValid() bool {
	switch k {
	case JobIndex, JobReindex, JobDelete:
		return true
	default:
		return false
	}
}

// DefaultPriority returns the queue priority for this kind. Deletes beat
// reindexes beat plain indexing so removals are never stuck behind a
// long backlog.
func (k JobKind) DefaultPriority() int {
	switch k {
	case JobDelete:
		return 100
	case JobReindex:
		return 50
	default:
		return 0
	}
}

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

// Job lifecycle states.
const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// DefaultMaxAttempts bounds retries for a single job.
const DefaultMaxAttempts = 3

// Job is a durable unit of indexing work.
type Job struct {
	ID       int64
	Kind     JobKind
	FilePath string

	// Priority orders dequeue; higher runs first. Ties break on
	// CreatedAt, oldest first.
	Priority int

	Status JobStatus

	// Attempts counts claims, including the current one.
	Attempts    int
	MaxAttempts int

	// Error holds the most recent failure message.
	Error string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Exhausted reports whether the job has used all its attempts.
func (j *Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

// QueueStats counts jobs by status.
type QueueStats struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Total returns the total number of jobs in the queue.
func (s QueueStats) Total() int {
	return s.Pending + s.Processing + s.Completed + s.Failed
}
