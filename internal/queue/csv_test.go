package queue

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
)

func TestExportFilename(t *testing.T) {
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "parking_history_alice_20260831T120000.csv", ExportFilename("alice", at))
}

func sampleHistory() []repository.ReservationDetail {
	parked := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	left := parked.Add(90 * time.Minute)
	vehicle := "KA01AB1234"

	completed := repository.ReservationDetail{
		Reservation: model.Reservation{
			ID:               11,
			SpotID:           5,
			UserID:           3,
			ParkingTimestamp: parked,
			LeavingTimestamp: &left,
			ParkingCost:      20,
			HourlyRate:       10,
			VehicleNumber:    &vehicle,
			Status:           model.ReservationCompleted,
		},
		SpotNumber: 2,
		LotID:      1,
		LotName:    "Downtown",
	}
	active := repository.ReservationDetail{
		Reservation: model.Reservation{
			ID:               12,
			SpotID:           6,
			UserID:           3,
			ParkingTimestamp: parked.Add(48 * time.Hour),
			HourlyRate:       10,
			Status:           model.ReservationActive,
		},
		SpotNumber: 3,
		LotID:      1,
		LotName:    "Downtown",
	}
	return []repository.ReservationDetail{completed, active}
}

func TestWriteHistoryCSV(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	require.NoError(t, WriteHistoryCSV(dir, "out.csv", sampleHistory(), now))

	f, err := os.Open(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, historyHeader, records[0])

	completed := records[1]
	assert.Equal(t, "11", completed[0])
	assert.Equal(t, "Downtown", completed[4])
	assert.Equal(t, "KA01AB1234", completed[5])
	assert.Equal(t, "2026-08-01T11:30:00Z", completed[7])
	assert.Equal(t, "1h 30m", completed[8])
	assert.Equal(t, "20.00", completed[9])
	assert.Equal(t, "completed", completed[10])

	active := records[2]
	assert.Equal(t, "12", active[0])
	assert.Empty(t, active[7])
	assert.Contains(t, active[8], "(ongoing)")
	assert.Equal(t, "0.00", active[9])
	assert.Equal(t, "active", active[10])
}

func TestWriteHistoryCSVEmptyHistory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteHistoryCSV(dir, "empty.csv", nil, time.Now()))

	f, err := os.Open(filepath.Join(dir, "empty.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, historyHeader, records[0])
}

func TestWriteHistoryCSVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteHistoryCSV(dir, "a.csv", sampleHistory(), time.Now()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.csv", entries[0].Name())
}
