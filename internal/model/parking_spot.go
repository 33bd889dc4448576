package model

import (
	"fmt"
	"time"
)

// ParkingSpot status codes.  A spot is exactly one of available or occupied,
// and the flag is flipped only by the booking/release transitions, never
// directly by a client.
const (
	SpotAvailable = "A"
	SpotOccupied  = "O"
)

// ParkingSpot is one physical slot within a lot, identified by its spot
// number which is unique per lot.
//
// Fields:
//
//	ID         – primary key identifier.
//	LotID      – lot to which this spot belongs.
//	SpotNumber – 1-based position within the lot.
//	Status     – "A" (available) or "O" (occupied).
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type ParkingSpot struct {
	ID         uint64    // parking_spots.id
	LotID      uint64    // parking_spots.lot_id
	SpotNumber uint32    // parking_spots.spot_number
	Status     string    // parking_spots.status
	CreatedAt  time.Time // parking_spots.created_at
	UpdatedAt  time.Time // parking_spots.updated_at
}

// IsAvailable reports whether the spot can be booked.
func (s *ParkingSpot) IsAvailable() bool { return s.Status == SpotAvailable }

// IsOccupied reports whether the spot holds an active reservation.
func (s *ParkingSpot) IsOccupied() bool { return s.Status == SpotOccupied }

// Identifier renders the human-readable spot label used in responses and
// CSV exports, e.g. "Downtown-7".
func (s *ParkingSpot) Identifier(lotName string) string {
	return fmt.Sprintf("%s-%d", lotName, s.SpotNumber)
}
