package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
)

func exportRows(id string, userID uint64, status string, filename interface{}) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "status", "filename", "error", "created_at", "updated_at"}).
		AddRow(id, userID, status, filename, nil, now, now)
}

func TestGetForUserEnforcesOwnership(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, status, filename, error").
		WithArgs("job-1").
		WillReturnRows(exportRows("job-1", 9, model.ExportCompleted, "out.csv"))

	_, err = NewExportRepo(db).GetForUser(context.Background(), "job-1", 3)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUserMissingJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, status, filename, error").
		WithArgs("job-x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "filename", "error", "created_at", "updated_at"}))

	_, err = NewExportRepo(db).GetForUser(context.Background(), "job-x", 3)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUserReturnsJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, status, filename, error").
		WithArgs("job-1").
		WillReturnRows(exportRows("job-1", 3, model.ExportCompleted, "out.csv"))

	job, err := NewExportRepo(db).GetForUser(context.Background(), "job-1", 3)
	require.NoError(t, err)
	assert.Equal(t, model.ExportCompleted, job.Status)
	require.NotNil(t, job.Filename)
	assert.Equal(t, "out.csv", *job.Filename)
	assert.Nil(t, job.Error)
}

func TestFileBelongsToUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("out.csv", uint64(3), model.ExportCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("other.csv", uint64(3), model.ExportCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	repo := NewExportRepo(db)
	owned, err := repo.FileBelongsToUser(context.Background(), "out.csv", 3)
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = repo.FileBelongsToUser(context.Background(), "other.csv", 3)
	require.NoError(t, err)
	assert.False(t, owned)
	require.NoError(t, mock.ExpectationsWereMet())
}
