package model

import "time"

// ExportJob status values.  A job is created pending by the HTTP trigger,
// moved to running by the queue worker, and finishes completed or failed.
const (
	ExportPending   = "pending"
	ExportRunning   = "running"
	ExportCompleted = "completed"
	ExportFailed    = "failed"
)

// ExportJob tracks one asynchronous CSV export of a user's parking history.
// The row outlives the process so status polling keeps working across
// restarts.  ID is a UUID string generated when the export is requested.
type ExportJob struct {
	ID        string    // export_jobs.id
	UserID    uint64    // export_jobs.user_id
	Status    string    // export_jobs.status
	Filename  *string   // export_jobs.filename (nullable until completed)
	Error     *string   // export_jobs.error (nullable, set on failure)
	CreatedAt time.Time // export_jobs.created_at
	UpdatedAt time.Time // export_jobs.updated_at
}
