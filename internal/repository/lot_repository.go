package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
)

const lotColumns = `id, prime_location_name, address, pin_code, number_of_spots, price,
	is_active, description, operating_hours_start, operating_hours_end, created_at, updated_at`

// LotRepo provides CRUD operations for parking lots plus the derived
// availability counters.  Mutations that touch the spot set (create, update
// with a new spot count, delete) run inside a transaction together with the
// spot changes.
type LotRepo struct {
	db    *sql.DB
	spots *SpotRepo
}

func NewLotRepo(db *sql.DB, spots *SpotRepo) *LotRepo { return &LotRepo{db: db, spots: spots} }

// DB exposes the handle for handler-scoped transactions.
func (r *LotRepo) DB() *sql.DB { return r.db }

// LotUpdate carries the optional fields of a partial lot update.  Nil
// pointers leave the column untouched.
type LotUpdate struct {
	PrimeLocationName   *string
	Address             *string
	PinCode             *string
	NumberOfSpots       *uint32
	Price               *float64
	IsActive            *bool
	Description         *string
	OperatingHoursStart *string
	OperatingHoursEnd   *string
}

// Create inserts a lot and its 1..N spot rows in one transaction.  The
// populated lot is read back so defaults and timestamps are returned.
func (r *LotRepo) Create(ctx context.Context, lot *model.ParkingLot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO parking_lots
		 (prime_location_name, address, pin_code, number_of_spots, price, is_active,
		  description, operating_hours_start, operating_hours_end)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		lot.PrimeLocationName, lot.Address, lot.PinCode, lot.NumberOfSpots, lot.Price,
		lot.IsActive, lot.Description, lot.OperatingHoursStart, lot.OperatingHoursEnd)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	lot.ID = uint64(id)
	if err := r.spots.CreateRangeTx(ctx, tx, lot.ID, lot.NumberOfSpots); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	got, err := r.GetByID(ctx, lot.ID)
	if err != nil {
		return err
	}
	*lot = got
	return nil
}

// GetByID fetches a lot.  Returns ErrNotFound for a missing id.
func (r *LotRepo) GetByID(ctx context.Context, id uint64) (model.ParkingLot, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+lotColumns+" FROM parking_lots WHERE id=? LIMIT 1", id)
	lot, err := scanLot(row.Scan)
	if err == sql.ErrNoRows {
		return model.ParkingLot{}, ErrNotFound
	}
	return lot, err
}

// List returns all lots ordered by creation time.
func (r *LotRepo) List(ctx context.Context) ([]model.ParkingLot, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+lotColumns+" FROM parking_lots ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lots := make([]model.ParkingLot, 0)
	for rows.Next() {
		lot, err := scanLot(rows.Scan)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// CreatedSince returns lots created at or after the given instant.  Feeds
// the "new parking lots available" reminder.
func (r *LotRepo) CreatedSince(ctx context.Context, since time.Time) ([]model.ParkingLot, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+lotColumns+" FROM parking_lots WHERE created_at >= ? ORDER BY created_at DESC", since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lots := make([]model.ParkingLot, 0)
	for rows.Next() {
		lot, err := scanLot(rows.Scan)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// Update applies a partial update.  When the spot count changes, the lot's
// spots are deleted and recreated 1..N inside the same transaction; that is
// rejected with ErrLotOccupied while any spot is occupied, since dropping
// an occupied spot would orphan its active reservation.
func (r *LotRepo) Update(ctx context.Context, id uint64, upd LotUpdate) (model.ParkingLot, error) {
	lot, err := r.GetByID(ctx, id)
	if err != nil {
		return model.ParkingLot{}, err
	}
	spotsChanged := upd.NumberOfSpots != nil && *upd.NumberOfSpots != lot.NumberOfSpots

	apply(&lot.PrimeLocationName, upd.PrimeLocationName)
	apply(&lot.Address, upd.Address)
	apply(&lot.PinCode, upd.PinCode)
	apply(&lot.NumberOfSpots, upd.NumberOfSpots)
	apply(&lot.Price, upd.Price)
	apply(&lot.IsActive, upd.IsActive)
	if upd.Description != nil {
		lot.Description = upd.Description
	}
	if upd.OperatingHoursStart != nil {
		lot.OperatingHoursStart = upd.OperatingHoursStart
	}
	if upd.OperatingHoursEnd != nil {
		lot.OperatingHoursEnd = upd.OperatingHoursEnd
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ParkingLot{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if spotsChanged {
		occupied, err := r.spots.OccupiedCountTx(ctx, tx, id)
		if err != nil {
			return model.ParkingLot{}, err
		}
		if occupied > 0 {
			return model.ParkingLot{}, ErrLotOccupied
		}
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE parking_lots SET prime_location_name=?, address=?, pin_code=?,
		 number_of_spots=?, price=?, is_active=?, description=?,
		 operating_hours_start=?, operating_hours_end=? WHERE id=?`,
		lot.PrimeLocationName, lot.Address, lot.PinCode, lot.NumberOfSpots, lot.Price,
		lot.IsActive, lot.Description, lot.OperatingHoursStart, lot.OperatingHoursEnd, id)
	if err != nil {
		return model.ParkingLot{}, err
	}
	if spotsChanged {
		if err := r.spots.DeleteByLotTx(ctx, tx, id); err != nil {
			return model.ParkingLot{}, err
		}
		if err := r.spots.CreateRangeTx(ctx, tx, id, lot.NumberOfSpots); err != nil {
			return model.ParkingLot{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.ParkingLot{}, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// Delete removes a lot when no spot is occupied.  The spot and reservation
// rows go with it via the schema's cascading foreign keys.
func (r *LotRepo) Delete(ctx context.Context, id uint64) (model.ParkingLot, error) {
	lot, err := r.GetByID(ctx, id)
	if err != nil {
		return model.ParkingLot{}, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ParkingLot{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	occupied, err := r.spots.OccupiedCountTx(ctx, tx, id)
	if err != nil {
		return model.ParkingLot{}, err
	}
	if occupied > 0 {
		return model.ParkingLot{}, ErrLotOccupied
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM parking_lots WHERE id=?", id); err != nil {
		return model.ParkingLot{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.ParkingLot{}, err
	}
	committed = true
	return lot, nil
}

// Availability computes the derived spot counters for a lot with a single
// aggregate query.
func (r *LotRepo) Availability(ctx context.Context, lotID uint64) (model.LotAvailability, error) {
	var a model.LotAvailability
	err := r.db.QueryRowContext(ctx,
		`SELECT
		   COALESCE(SUM(status='A'), 0),
		   COALESCE(SUM(status='O'), 0)
		 FROM parking_spots WHERE lot_id=?`, lotID).
		Scan(&a.Available, &a.Occupied)
	return a, err
}

func scanLot(scan func(dest ...interface{}) error) (model.ParkingLot, error) {
	var lot model.ParkingLot
	var desc, ohStart, ohEnd sql.NullString
	err := scan(&lot.ID, &lot.PrimeLocationName, &lot.Address, &lot.PinCode,
		&lot.NumberOfSpots, &lot.Price, &lot.IsActive, &desc, &ohStart, &ohEnd,
		&lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		return model.ParkingLot{}, err
	}
	if desc.Valid {
		v := desc.String
		lot.Description = &v
	}
	if ohStart.Valid {
		v := ohStart.String
		lot.OperatingHoursStart = &v
	}
	if ohEnd.Valid {
		v := ohEnd.String
		lot.OperatingHoursEnd = &v
	}
	return lot, nil
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
