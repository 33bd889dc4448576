package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
)

// ReservationRepo provides persistence for the booking lifecycle.  A
// reservation row is inserted at booking time and mutated exactly once, at
// release or cancellation; both mutations happen inside the same
// transaction that flips the spot status, so a reservation and its spot can
// never disagree.
type ReservationRepo struct{ db *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the handle so handlers can open transactions spanning the
// reservation and spot repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new active reservation within the caller's transaction
// and reads the row back to populate defaults and timestamps.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations
		 (spot_id, user_id, parking_timestamp, expected_leaving_time, hourly_rate,
		  vehicle_number, vehicle_model, vehicle_color, status, remarks)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		res.SpotID, res.UserID, res.ParkingTimestamp, res.ExpectedLeavingTime, res.HourlyRate,
		res.VehicleNumber, res.VehicleModel, res.VehicleColor, res.Status, res.Remarks)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	row := tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=?", res.ID)
	got, err := scanReservation(row.Scan)
	if err != nil {
		return err
	}
	*res = got
	return nil
}

// GetActiveByUserTx locks and returns the caller's single active
// reservation.  The design allows at most one active reservation per user;
// the lookup takes the oldest if that assumption is ever violated.  Returns
// ErrNoActiveReservation when none exists.
func (r *ReservationRepo) GetActiveByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.Reservation, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+` FROM reservations
		 WHERE user_id=? AND status='active'
		 ORDER BY id
		 LIMIT 1
		 FOR UPDATE`, userID)
	res, err := scanReservation(row.Scan)
	if err == sql.ErrNoRows {
		return model.Reservation{}, ErrNoActiveReservation
	}
	return res, err
}

// FinishTx persists the terminal state of a reservation (completed or
// cancelled) within the caller's transaction.
func (r *ReservationRepo) FinishTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE reservations SET leaving_timestamp=?, parking_cost=?, status=? WHERE id=?",
		res.LeavingTimestamp, res.ParkingCost, res.Status, res.ID)
	return err
}

// ReservationDetail is a reservation joined with its spot and lot for
// display: booking lists, monthly reports and the CSV export all consume
// this shape.
type ReservationDetail struct {
	model.Reservation
	SpotNumber uint32
	LotID      uint64
	LotName    string
}

// SpotIdentifier renders the human-readable spot label, e.g. "Downtown-7".
func (d ReservationDetail) SpotIdentifier() string {
	s := model.ParkingSpot{SpotNumber: d.SpotNumber}
	return s.Identifier(d.LotName)
}

// ListByUser returns the user's reservations, newest parking time first,
// with spot and lot context attached.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	return r.queryDetails(ctx,
		detailQuery+" WHERE r.user_id=? ORDER BY r.parking_timestamp DESC", userID)
}

// ListByUserBetween returns the user's reservations whose parking time
// falls inside [start, end).  Feeds the monthly report job.
func (r *ReservationRepo) ListByUserBetween(ctx context.Context, userID uint64, start, end time.Time) ([]ReservationDetail, error) {
	return r.queryDetails(ctx,
		detailQuery+` WHERE r.user_id=? AND r.parking_timestamp >= ? AND r.parking_timestamp < ?
		ORDER BY r.parking_timestamp DESC`, userID, start, end)
}

// LastCreatedAt returns the creation time of the user's most recent
// reservation, or nil when the user never booked.  Feeds the reminder job.
func (r *ReservationRepo) LastCreatedAt(ctx context.Context, userID uint64) (*time.Time, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT created_at FROM reservations WHERE user_id=? ORDER BY created_at DESC LIMIT 1",
		userID).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const reservationColumns = `id, spot_id, user_id, parking_timestamp, leaving_timestamp,
	expected_leaving_time, parking_cost, hourly_rate, vehicle_number, vehicle_model,
	vehicle_color, status, remarks, created_at, updated_at`

const detailQuery = `SELECT r.id, r.spot_id, r.user_id, r.parking_timestamp, r.leaving_timestamp,
	r.expected_leaving_time, r.parking_cost, r.hourly_rate, r.vehicle_number, r.vehicle_model,
	r.vehicle_color, r.status, r.remarks, r.created_at, r.updated_at,
	s.spot_number, l.id, l.prime_location_name
	FROM reservations r
	JOIN parking_spots s ON s.id = r.spot_id
	JOIN parking_lots l ON l.id = s.lot_id`

func (r *ReservationRepo) queryDetails(ctx context.Context, query string, args ...interface{}) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var leaving, expected sql.NullTime
		var vehicleNum, vehicleModel, vehicleColor, remarks sql.NullString
		if err := rows.Scan(&d.ID, &d.SpotID, &d.UserID, &d.ParkingTimestamp, &leaving,
			&expected, &d.ParkingCost, &d.HourlyRate, &vehicleNum, &vehicleModel,
			&vehicleColor, &d.Status, &remarks, &d.CreatedAt, &d.UpdatedAt,
			&d.SpotNumber, &d.LotID, &d.LotName); err != nil {
			return nil, err
		}
		assignTime(&d.LeavingTimestamp, leaving)
		assignTime(&d.ExpectedLeavingTime, expected)
		assignString(&d.VehicleNumber, vehicleNum)
		assignString(&d.VehicleModel, vehicleModel)
		assignString(&d.VehicleColor, vehicleColor)
		assignString(&d.Remarks, remarks)
		details = append(details, d)
	}
	return details, rows.Err()
}

func scanReservation(scan func(dest ...interface{}) error) (model.Reservation, error) {
	var res model.Reservation
	var leaving, expected sql.NullTime
	var vehicleNum, vehicleModel, vehicleColor, remarks sql.NullString
	err := scan(&res.ID, &res.SpotID, &res.UserID, &res.ParkingTimestamp, &leaving,
		&expected, &res.ParkingCost, &res.HourlyRate, &vehicleNum, &vehicleModel,
		&vehicleColor, &res.Status, &remarks, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	assignTime(&res.LeavingTimestamp, leaving)
	assignTime(&res.ExpectedLeavingTime, expected)
	assignString(&res.VehicleNumber, vehicleNum)
	assignString(&res.VehicleModel, vehicleModel)
	assignString(&res.VehicleColor, vehicleColor)
	assignString(&res.Remarks, remarks)
	return res, nil
}

func assignTime(dst **time.Time, v sql.NullTime) {
	if v.Valid {
		t := v.Time
		*dst = &t
	}
}

func assignString(dst **string, v sql.NullString) {
	if v.Valid {
		s := v.String
		*dst = &s
	}
}
