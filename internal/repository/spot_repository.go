package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
)

// SpotRepo encapsulates database operations for parking_spots.  Spot rows
// are only ever created and deleted in bulk alongside their lot, and their
// status column is flipped exclusively by the booking/release transitions.
type SpotRepo struct{ db *sql.DB }

func NewSpotRepo(db *sql.DB) *SpotRepo { return &SpotRepo{db: db} }

// DB exposes the handle so handlers can open transactions that span spot
// and reservation mutations.
func (r *SpotRepo) DB() *sql.DB { return r.db }

// CreateRangeTx inserts spots numbered 1..count for a lot in a single
// statement, all available.
func (r *SpotRepo) CreateRangeTx(ctx context.Context, tx *sql.Tx, lotID uint64, count uint32) error {
	if count == 0 {
		return nil
	}
	query := "INSERT INTO parking_spots (lot_id, spot_number, status) VALUES "
	args := make([]interface{}, 0, count*2)
	for i := uint32(1); i <= count; i++ {
		if i > 1 {
			query += ","
		}
		query += "(?, ?, 'A')"
		args = append(args, lotID, i)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteByLotTx removes every spot of a lot.  Used when the lot's spot
// count changes: the whole set is deleted and recreated.
func (r *SpotRepo) DeleteByLotTx(ctx context.Context, tx *sql.Tx, lotID uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM parking_spots WHERE lot_id=?", lotID)
	return err
}

// ClaimNextAvailableTx selects the lowest-numbered available spot in the
// lot and marks it occupied, all inside the caller's transaction.  The row
// is locked with FOR UPDATE and the flip is conditional on the status still
// being 'A', so two concurrent bookings can never claim the same spot: the
// second either locks a different row or sees zero rows affected.  Returns
// ErrNoSpotAvailable when the lot is full.
func (r *SpotRepo) ClaimNextAvailableTx(ctx context.Context, tx *sql.Tx, lotID uint64) (model.ParkingSpot, error) {
	var s model.ParkingSpot
	err := tx.QueryRowContext(ctx,
		`SELECT id, lot_id, spot_number, status, created_at, updated_at
		 FROM parking_spots
		 WHERE lot_id=? AND status='A'
		 ORDER BY id
		 LIMIT 1
		 FOR UPDATE`, lotID).
		Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.ParkingSpot{}, ErrNoSpotAvailable
	}
	if err != nil {
		return model.ParkingSpot{}, err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE parking_spots SET status='O' WHERE id=? AND status='A'", s.ID)
	if err != nil {
		return model.ParkingSpot{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.ParkingSpot{}, err
	}
	if n == 0 {
		// lost the race despite the lock; treat as full
		return model.ParkingSpot{}, ErrNoSpotAvailable
	}
	s.Status = model.SpotOccupied
	return s, nil
}

// ReleaseTx flips a spot back to available inside the caller's transaction.
func (r *SpotRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, spotID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE parking_spots SET status='A' WHERE id=?", spotID)
	return err
}

// ListByLot returns every spot of a lot ordered by spot number.
func (r *SpotRepo) ListByLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, lot_id, spot_number, status, created_at, updated_at
		 FROM parking_spots WHERE lot_id=? ORDER BY spot_number`, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	spots := make([]model.ParkingSpot, 0)
	for rows.Next() {
		var s model.ParkingSpot
		if err := rows.Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

// OccupiedCountTx counts occupied spots in a lot while holding the caller's
// transaction.  Gates lot deletion and spot-count changes.
func (r *SpotRepo) OccupiedCountTx(ctx context.Context, tx *sql.Tx, lotID uint64) (uint32, error) {
	var n uint32
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM parking_spots WHERE lot_id=? AND status='O'", lotID).Scan(&n)
	return n, err
}
