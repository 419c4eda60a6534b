package domain

import "time"

// FileChangeStatus records the outcome of the most recent index attempt
// for a file path.
type FileChangeStatus string

const (
	// FileChangePending means the file has been seen (queued for
	// indexing) but not yet processed.
	FileChangePending FileChangeStatus = "pending"

	// FileChangeIndexed means the last extraction and upsert succeeded.
	FileChangeIndexed FileChangeStatus = "indexed"

	// FileChangeFailed means the last extraction failed. The stored
	// content hash is not updated on failure, so the file is retried
	// the next time it is seen.
	FileChangeFailed FileChangeStatus = "failed"
)

// FileChangeRecord is the change-detection ledger entry for one file path.
// It exists independently of Document: a failed file has a record but may
// have no document.
type FileChangeRecord struct {
	ID int64

	// FilePath is the absolute path. Unique per record.
	FilePath string

	// ContentHash is the hex SHA-256 of the file contents at the last
	// successful index. Empty until the first success.
	ContentHash string

	// FileSize and LastModified describe the file as last seen.
	FileSize     int64
	LastModified time.Time

	Status FileChangeStatus

	// ErrorMessage holds the extraction error when Status is failed.
	ErrorMessage string

	// LastIndexedAt is when the file was last successfully indexed.
	// Zero until the first success; preserved across pending and
	// failed passes.
	LastIndexedAt time.Time

	UpdatedAt time.Time
}
