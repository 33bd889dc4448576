package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeReservation(rate float64, parkedAt time.Time) Reservation {
	return Reservation{
		ID:               1,
		SpotID:           7,
		UserID:           3,
		ParkingTimestamp: parkedAt,
		HourlyRate:       rate,
		Status:           ReservationActive,
	}
}

func TestCostRoundsUpToWholeHours(t *testing.T) {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		minutes int
		rate    float64
		want    float64
	}{
		{"ninety minutes bills two hours", 90, 10, 20},
		{"ten minutes bills the one hour minimum", 10, 10, 10},
		{"exactly one hour bills one hour", 60, 10, 10},
		{"exactly two hours bills two hours", 120, 12.5, 25},
		{"just over two hours bills three", 121, 10, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := activeReservation(tc.rate, start)
			leave := start.Add(time.Duration(tc.minutes) * time.Minute)
			require.True(t, r.Complete(leave))
			assert.Equal(t, tc.want, r.ParkingCost)
		})
	}
}

func TestOpenReservationHasNoCost(t *testing.T) {
	r := activeReservation(10, time.Now().Add(-5*time.Hour))
	assert.Equal(t, float64(0), r.Cost())
	assert.Equal(t, float64(0), r.DurationHours())
}

func TestCompleteTransitionsExactlyOnce(t *testing.T) {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	r := activeReservation(10, start)

	require.True(t, r.Complete(start.Add(30*time.Minute)))
	assert.Equal(t, ReservationCompleted, r.Status)
	require.NotNil(t, r.LeavingTimestamp)
	assert.Equal(t, float64(10), r.ParkingCost)

	// completed reservations reject further transitions
	assert.False(t, r.Complete(start.Add(time.Hour)))
	assert.False(t, r.Cancel())
}

func TestCompleteInSameSecondClampsLeavingForward(t *testing.T) {
	start := time.Date(2026, 8, 1, 10, 0, 0, 500_000_000, time.UTC)
	r := activeReservation(10, start)

	// releasing within the booking second must still yield a leaving
	// time strictly after parking once both truncate to whole seconds
	require.True(t, r.Complete(start.Add(200*time.Millisecond)))
	require.NotNil(t, r.LeavingTimestamp)
	assert.True(t, r.LeavingTimestamp.After(start))
	assert.GreaterOrEqual(t, r.LeavingTimestamp.Sub(start), time.Second)
	assert.Equal(t, float64(10), r.ParkingCost)
}

func TestCancelFreesWithoutCharging(t *testing.T) {
	r := activeReservation(10, time.Now())
	require.True(t, r.Cancel())
	assert.Equal(t, ReservationCancelled, r.Status)
	assert.Nil(t, r.LeavingTimestamp)
	assert.Equal(t, float64(0), r.ParkingCost)

	assert.False(t, r.Cancel())
	assert.False(t, r.Complete(time.Now()))
}

func TestDurationString(t *testing.T) {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	r := activeReservation(10, start)
	assert.Equal(t, "2h 13m (ongoing)", r.DurationString(start.Add(2*time.Hour+13*time.Minute)))

	require.True(t, r.Complete(start.Add(45*time.Minute)))
	assert.Equal(t, "0h 45m", r.DurationString(start.Add(24*time.Hour)))

	cancelled := activeReservation(10, start)
	require.True(t, cancelled.Cancel())
	assert.Equal(t, "N/A", cancelled.DurationString(start))
}

func TestIsOverdue(t *testing.T) {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	expected := start.Add(2 * time.Hour)

	r := activeReservation(10, start)
	r.ExpectedLeavingTime = &expected

	assert.False(t, r.IsOverdue(expected.Add(-time.Minute)))
	assert.True(t, r.IsOverdue(expected.Add(time.Minute)))

	require.True(t, r.Complete(expected.Add(time.Hour)))
	assert.False(t, r.IsOverdue(expected.Add(2*time.Hour)))
}

func TestSpotIdentifier(t *testing.T) {
	s := ParkingSpot{ID: 9, LotID: 2, SpotNumber: 7, Status: SpotAvailable}
	assert.Equal(t, "Downtown-7", s.Identifier("Downtown"))
	assert.True(t, s.IsAvailable())
	assert.False(t, s.IsOccupied())
}

func TestLotAvailability(t *testing.T) {
	assert.True(t, LotAvailability{Available: 1, Occupied: 0}.HasAvailable())
	assert.False(t, LotAvailability{Available: 0, Occupied: 5}.HasAvailable())
	assert.True(t, LotAvailability{Available: 5}.IsEmpty())
	assert.False(t, LotAvailability{Available: 4, Occupied: 1}.IsEmpty())
}
