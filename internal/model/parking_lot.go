package model

import "time"

// ParkingLot describes one physical facility.  A lot owns NumberOfSpots
// parking spots, created as rows 1..N when the lot is created and recreated
// en masse when the count changes.  Price is the hourly rate charged for a
// spot; it is snapshotted onto each reservation at booking time, so later
// price changes never affect open bookings.
//
// Fields:
//
//	ID                  – primary key identifier.
//	PrimeLocationName   – display name of the facility.
//	Address             – street address.
//	PinCode             – postal code.
//	NumberOfSpots       – total spots in the lot (> 0).
//	Price               – hourly price (>= 0).
//	IsActive            – whether the lot is open for business.
//	Description         – optional free-form text.
//	OperatingHoursStart – optional opening time ("HH:MM").
//	OperatingHoursEnd   – optional closing time ("HH:MM").
//	CreatedAt           – creation timestamp.
//	UpdatedAt           – last update timestamp.
type ParkingLot struct {
	ID                  uint64    // parking_lots.id
	PrimeLocationName   string    // parking_lots.prime_location_name
	Address             string    // parking_lots.address
	PinCode             string    // parking_lots.pin_code
	NumberOfSpots       uint32    // parking_lots.number_of_spots
	Price               float64   // parking_lots.price
	IsActive            bool      // parking_lots.is_active
	Description         *string   // parking_lots.description (nullable)
	OperatingHoursStart *string   // parking_lots.operating_hours_start (nullable)
	OperatingHoursEnd   *string   // parking_lots.operating_hours_end (nullable)
	CreatedAt           time.Time // parking_lots.created_at
	UpdatedAt           time.Time // parking_lots.updated_at
}

// LotAvailability carries the derived spot counters for a lot.  The counts
// are computed by the repository with aggregate queries rather than loading
// every spot row.
type LotAvailability struct {
	Available uint32
	Occupied  uint32
}

// HasAvailable reports whether at least one spot can be booked.
func (a LotAvailability) HasAvailable() bool { return a.Available > 0 }

// IsEmpty reports whether no spot is occupied.  An empty lot is the only
// kind that may be deleted.
func (a LotAvailability) IsEmpty() bool { return a.Occupied == 0 }
