package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
)

func userDTO(u *model.User) echo.Map {
	m := echo.Map{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"role":       u.Role,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339),
	}
	if u.Phone != nil {
		m["phone"] = *u.Phone
	}
	if u.LastLogin != nil {
		m["last_login"] = u.LastLogin.UTC().Format(time.RFC3339)
	}
	return m
}

func lotDTO(l *model.ParkingLot, avail *model.LotAvailability) echo.Map {
	m := echo.Map{
		"id":              l.ID,
		"prime_location":  l.PrimeLocationName,
		"address":         l.Address,
		"pin_code":        l.PinCode,
		"price":           l.Price,
		"number_of_spots": l.NumberOfSpots,
		"created_at":      l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.Description != nil {
		m["description"] = *l.Description
	}
	if l.OperatingHoursStart != nil {
		m["operating_hours_start"] = *l.OperatingHoursStart
	}
	if l.OperatingHoursEnd != nil {
		m["operating_hours_end"] = *l.OperatingHoursEnd
	}
	if avail != nil {
		m["available_spots"] = avail.Available
		m["occupied_spots"] = avail.Occupied
	}
	return m
}

func spotDTO(s *model.ParkingSpot, lotName string) echo.Map {
	return echo.Map{
		"id":          s.ID,
		"lot_id":      s.LotID,
		"spot_number": s.SpotNumber,
		"status":      s.Status,
		"identifier":  s.Identifier(lotName),
	}
}

func reservationDTO(r *repository.ReservationDetail, now time.Time) echo.Map {
	m := echo.Map{
		"id":                r.ID,
		"spot_id":           r.SpotID,
		"spot_number":       r.SpotNumber,
		"spot_identifier":   r.SpotIdentifier(),
		"lot_id":            r.LotID,
		"lot_name":          r.LotName,
		"status":            r.Status,
		"hourly_rate":       r.HourlyRate,
		"parking_cost":      r.ParkingCost,
		"parking_timestamp": r.ParkingTimestamp.UTC().Format(time.RFC3339),
		"duration":          r.DurationString(now),
	}
	if r.VehicleNumber != nil {
		m["vehicle_number"] = *r.VehicleNumber
	}
	if r.VehicleModel != nil {
		m["vehicle_model"] = *r.VehicleModel
	}
	if r.VehicleColor != nil {
		m["vehicle_color"] = *r.VehicleColor
	}
	if r.LeavingTimestamp != nil {
		m["leaving_timestamp"] = r.LeavingTimestamp.UTC().Format(time.RFC3339)
	}
	if r.ExpectedLeavingTime != nil {
		m["expected_leaving_time"] = r.ExpectedLeavingTime.UTC().Format(time.RFC3339)
	}
	if r.Remarks != nil {
		m["remarks"] = *r.Remarks
	}
	return m
}
