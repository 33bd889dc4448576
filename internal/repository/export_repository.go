package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
)

// ExportRepo persists CSV export jobs.  The HTTP trigger inserts a pending
// row, the queue worker advances it, and the status endpoint polls it.
// Keeping the state in the database rather than in worker memory means a
// poll keeps answering after a restart.
type ExportRepo struct{ db *sql.DB }

func NewExportRepo(db *sql.DB) *ExportRepo { return &ExportRepo{db: db} }

// Create inserts a pending job with the given UUID.
func (r *ExportRepo) Create(ctx context.Context, id string, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO export_jobs (id, user_id, status) VALUES (?,?,?)",
		id, userID, model.ExportPending)
	return err
}

// GetForUser fetches a job and enforces ownership: polling another user's
// job returns ErrForbidden, a missing id returns ErrNotFound.
func (r *ExportRepo) GetForUser(ctx context.Context, id string, userID uint64) (model.ExportJob, error) {
	job, err := r.get(ctx, id)
	if err != nil {
		return model.ExportJob{}, err
	}
	if job.UserID != userID {
		return model.ExportJob{}, ErrForbidden
	}
	return job, nil
}

// MarkRunning moves a pending job to running.
func (r *ExportRepo) MarkRunning(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE export_jobs SET status=? WHERE id=?", model.ExportRunning, id)
	return err
}

// MarkCompleted records the generated filename and completes the job.
func (r *ExportRepo) MarkCompleted(ctx context.Context, id, filename string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE export_jobs SET status=?, filename=? WHERE id=?",
		model.ExportCompleted, filename, id)
	return err
}

// MarkFailed records the failure reason.
func (r *ExportRepo) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE export_jobs SET status=?, error=? WHERE id=?",
		model.ExportFailed, reason, id)
	return err
}

// FileBelongsToUser reports whether a completed export with the given
// filename belongs to the user.  Guards the download endpoint so one user
// cannot fetch another's history by guessing filenames.
func (r *ExportRepo) FileBelongsToUser(ctx context.Context, filename string, userID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM export_jobs WHERE filename=? AND user_id=? AND status=?",
		filename, userID, model.ExportCompleted).Scan(&n)
	return n > 0, err
}

func (r *ExportRepo) get(ctx context.Context, id string) (model.ExportJob, error) {
	var job model.ExportJob
	var filename, errMsg sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, status, filename, error, created_at, updated_at
		 FROM export_jobs WHERE id=? LIMIT 1`, id).
		Scan(&job.ID, &job.UserID, &job.Status, &filename, &errMsg, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.ExportJob{}, ErrNotFound
	}
	if err != nil {
		return model.ExportJob{}, err
	}
	assignString(&job.Filename, filename)
	assignString(&job.Error, errMsg)
	return job, nil
}
