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

func spotColumns() []string {
	return []string{"id", "lot_id", "spot_number", "status", "created_at", "updated_at"}
}

func TestClaimNextAvailableTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, lot_id, spot_number, status, created_at, updated_at").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(spotColumns()).
			AddRow(5, 1, 2, "A", now, now))
	mock.ExpectExec("UPDATE parking_spots SET status='O'").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	repo := NewSpotRepo(db)
	spot, err := repo.ClaimNextAvailableTx(context.Background(), tx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), spot.ID)
	assert.Equal(t, uint32(2), spot.SpotNumber)
	assert.Equal(t, model.SpotOccupied, spot.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimNextAvailableTxFullLot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, lot_id, spot_number, status, created_at, updated_at").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(spotColumns()))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = NewSpotRepo(db).ClaimNextAvailableTx(context.Background(), tx, 1)
	assert.ErrorIs(t, err, ErrNoSpotAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimNextAvailableTxLostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, lot_id, spot_number, status, created_at, updated_at").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(spotColumns()).
			AddRow(5, 1, 2, "A", now, now))
	// another transaction flipped the spot between select and update
	mock.ExpectExec("UPDATE parking_spots SET status='O'").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = NewSpotRepo(db).ClaimNextAvailableTx(context.Background(), tx, 1)
	assert.ErrorIs(t, err, ErrNoSpotAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRangeTxBuildsBulkInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO parking_spots").
		WithArgs(uint64(3), uint32(1), uint64(3), uint32(2), uint64(3), uint32(3)).
		WillReturnResult(sqlmock.NewResult(1, 3))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, NewSpotRepo(db).CreateRangeTx(context.Background(), tx, 3, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRangeTxZeroIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, NewSpotRepo(db).CreateRangeTx(context.Background(), tx, 3, 0))
	require.NoError(t, mock.ExpectationsWereMet())
}
