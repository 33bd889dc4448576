package model

import (
	"fmt"
	"math"
	"time"
)

// Reservation status values.  A reservation starts active and transitions
// exactly once, to completed (normal release, cost computed) or cancelled
// (spot freed, no charge).  It never returns to active.
const (
	ReservationActive    = "active"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
)

// Reservation records one booking of a spot by a user.  HourlyRate is a
// snapshot of the lot price at booking time and is immutable afterwards.
// LeavingTimestamp stays null while the reservation is active; ParkingCost
// stays 0 until release, when it is computed from the hourly rate and the
// billed duration.
//
// Fields:
//
//	ID                  – primary key identifier.
//	SpotID              – spot being occupied.
//	UserID              – user who booked.
//	ParkingTimestamp    – start of occupancy.
//	LeavingTimestamp    – end of occupancy (nullable while active).
//	ExpectedLeavingTime – optional estimate given by the user.
//	ParkingCost         – final cost, 0 until completed.
//	HourlyRate          – rate snapshotted from the lot at booking (>= 0).
//	VehicleNumber       – registration plate.
//	VehicleModel        – optional model description.
//	VehicleColor        – optional colour.
//	Status              – active | completed | cancelled.
//	Remarks             – free-form note set by the system.
//	CreatedAt           – creation timestamp.
//	UpdatedAt           – last update timestamp.
type Reservation struct {
	ID                  uint64     // reservations.id
	SpotID              uint64     // reservations.spot_id
	UserID              uint64     // reservations.user_id
	ParkingTimestamp    time.Time  // reservations.parking_timestamp
	LeavingTimestamp    *time.Time // reservations.leaving_timestamp (nullable)
	ExpectedLeavingTime *time.Time // reservations.expected_leaving_time (nullable)
	ParkingCost         float64    // reservations.parking_cost
	HourlyRate          float64    // reservations.hourly_rate
	VehicleNumber       *string    // reservations.vehicle_number (nullable)
	VehicleModel        *string    // reservations.vehicle_model (nullable)
	VehicleColor        *string    // reservations.vehicle_color (nullable)
	Status              string     // reservations.status
	Remarks             *string    // reservations.remarks (nullable)
	CreatedAt           time.Time  // reservations.created_at
	UpdatedAt           time.Time  // reservations.updated_at
}

// IsActive reports whether the reservation is still open.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive && r.LeavingTimestamp == nil
}

// IsCompleted reports whether the reservation was released normally.
func (r *Reservation) IsCompleted() bool {
	return r.Status == ReservationCompleted && r.LeavingTimestamp != nil
}

// DurationHours returns the billable duration in hours.  The minimum
// billable duration is one hour.  An open reservation has no duration yet
// and returns 0.
func (r *Reservation) DurationHours() float64 {
	if r.LeavingTimestamp == nil {
		return 0
	}
	hours := r.LeavingTimestamp.Sub(r.ParkingTimestamp).Seconds() / 3600
	return math.Max(1, hours)
}

// Cost computes the parking charge: hourly rate times the billed duration
// rounded up to the next whole hour.  Cost is never computed against "now";
// an open reservation is frozen at 0 until release.
func (r *Reservation) Cost() float64 {
	if r.LeavingTimestamp == nil {
		return 0
	}
	return r.HourlyRate * math.Ceil(r.DurationHours())
}

// Complete closes an active reservation at the given instant: the leaving
// timestamp is recorded, the final cost computed and the status flipped to
// completed.  It returns false when the reservation is not active; the
// caller is responsible for freeing the spot in the same transaction.
//
// The leaving time is clamped to at least one second after parking so that
// a release within the booking second still satisfies the table constraint
// requiring leaving to be strictly after parking (DATETIME columns truncate
// to whole seconds).
func (r *Reservation) Complete(now time.Time) bool {
	if !r.IsActive() {
		return false
	}
	t := now.UTC()
	if min := r.ParkingTimestamp.UTC().Add(time.Second); t.Before(min) {
		t = min
	}
	r.LeavingTimestamp = &t
	r.ParkingCost = r.Cost()
	r.Status = ReservationCompleted
	return true
}

// Cancel voids an active reservation without charging.  Like Complete it is
// only valid from the active state and leaves spot handling to the caller.
func (r *Reservation) Cancel() bool {
	if !r.IsActive() {
		return false
	}
	r.Status = ReservationCancelled
	return true
}

// DurationString renders the occupancy span for display, e.g. "2h 13m".
// Active reservations measure against the given clock and are marked
// ongoing; reservations without a start render as "N/A".
func (r *Reservation) DurationString(now time.Time) string {
	switch {
	case r.LeavingTimestamp != nil:
		return formatSpan(r.LeavingTimestamp.Sub(r.ParkingTimestamp))
	case r.IsActive():
		return formatSpan(now.Sub(r.ParkingTimestamp)) + " (ongoing)"
	default:
		return "N/A"
	}
}

// IsOverdue reports whether an active reservation has run past the user's
// expected leaving time.
func (r *Reservation) IsOverdue(now time.Time) bool {
	return r.IsActive() && r.ExpectedLeavingTime != nil && now.After(*r.ExpectedLeavingTime)
}

func formatSpan(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
}
