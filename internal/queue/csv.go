package queue

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/iliyamo/vehicle-parking-system/internal/repository"
)

// historyHeader is the column layout of an exported parking history file.
var historyHeader = []string{
	"reservation_id", "lot_id", "spot_id", "spot_number", "lot_name",
	"vehicle_number", "parking_timestamp", "leaving_timestamp",
	"duration", "cost", "status", "remarks",
}

// ExportFilename builds the canonical export name for a user, e.g.
// "parking_history_alice_20260831T120000.csv". The timestamp keeps repeated
// exports from overwriting each other.
func ExportFilename(username string, at time.Time) string {
	return fmt.Sprintf("parking_history_%s_%s.csv", username, at.UTC().Format("20060102T150405"))
}

// historyRecord flattens one reservation into CSV fields.
func historyRecord(d *repository.ReservationDetail, now time.Time) []string {
	vehicle, leaving, remarks := "", "", ""
	if d.VehicleNumber != nil {
		vehicle = *d.VehicleNumber
	}
	if d.LeavingTimestamp != nil {
		leaving = d.LeavingTimestamp.UTC().Format(time.RFC3339)
	}
	if d.Remarks != nil {
		remarks = *d.Remarks
	}
	return []string{
		strconv.FormatUint(d.ID, 10),
		strconv.FormatUint(d.LotID, 10),
		strconv.FormatUint(d.SpotID, 10),
		strconv.FormatUint(uint64(d.SpotNumber), 10),
		d.LotName,
		vehicle,
		d.ParkingTimestamp.UTC().Format(time.RFC3339),
		leaving,
		d.DurationString(now),
		strconv.FormatFloat(d.ParkingCost, 'f', 2, 64),
		d.Status,
		remarks,
	}
}

// WriteHistoryCSV writes the user's reservation history to dir/filename.
// The file is written atomically via a temp file so a crashed worker never
// leaves a half-written export behind.
func WriteHistoryCSV(dir, filename string, details []repository.ReservationDetail, now time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir export dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filename+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(historyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range details {
		if err := w.Write(historyRecord(&details[i], now)); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, filename)); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}
