package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
)

// UserHandler serves the user-facing surface: profile, lot browsing and the
// booking lifecycle. Booking and release each run inside one transaction so
// the spot flag and the reservation row can never drift apart.
type UserHandler struct {
	users        *repository.UserRepo
	lots         *repository.LotRepo
	spots        *repository.SpotRepo
	reservations *repository.ReservationRepo
	log          *logrus.Logger
}

func NewUserHandler(users *repository.UserRepo, lots *repository.LotRepo, spots *repository.SpotRepo, reservations *repository.ReservationRepo, log *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, lots: lots, spots: spots, reservations: reservations, log: log}
}

// Profile returns the caller's account record.
func (h *UserHandler) Profile(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	user, err := h.users.GetByID(ctx, cl.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return respondErr(c, http.StatusNotFound, "user not found")
	}
	if err != nil {
		h.log.WithError(err).Error("profile: lookup user")
		return respondInternal(c)
	}
	return respondOK(c, http.StatusOK, "profile", userDTO(&user))
}

type profileUpdateRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
}

// UpdateProfile changes username, email and phone. Uniqueness violations
// map to the same field-specific errors as registration.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}
	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" {
		return respondErr(c, http.StatusBadRequest, "username and email are required")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.users.UpdateProfile(ctx, cl.ID, req.Username, req.Email, req.Phone)
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return respondErr(c, http.StatusConflict, "username already taken")
	case errors.Is(err, repository.ErrEmailExists):
		return respondErr(c, http.StatusConflict, "email already registered")
	case err != nil:
		h.log.WithError(err).WithField("user_id", cl.ID).Error("profile: update")
		return respondInternal(c)
	}

	user, err := h.users.GetByID(ctx, cl.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", cl.ID).Error("profile: read back")
		return respondInternal(c)
	}
	return respondOK(c, http.StatusOK, "profile updated", userDTO(&user))
}

// ListLots returns the active lots with availability, the user's browsing
// view for picking where to park.
func (h *UserHandler) ListLots(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	lots, err := h.lots.List(ctx)
	if err != nil {
		h.log.WithError(err).Error("user: list lots")
		return respondInternal(c)
	}
	out := make([]echo.Map, 0, len(lots))
	for i := range lots {
		if !lots[i].IsActive {
			continue
		}
		avail, err := h.lots.Availability(ctx, lots[i].ID)
		if err != nil {
			h.log.WithError(err).WithField("lot_id", lots[i].ID).Error("user: lot availability")
			return respondInternal(c)
		}
		out = append(out, lotDTO(&lots[i], &avail))
	}
	return respondOK(c, http.StatusOK, "parking lots", out)
}

type bookRequest struct {
	VehicleNumber       string  `json:"vehicle_number"`
	VehicleModel        *string `json:"vehicle_model"`
	VehicleColor        *string `json:"vehicle_color"`
	ExpectedLeavingTime *string `json:"expected_leaving_time"`
}

// Book claims the lowest-numbered available spot in the lot and opens a
// reservation against it. The claim locks the spot row, so two concurrent
// bookings of the last spot resolve to one winner and one "no spot
// available" answer. A user holds at most one active reservation.
func (h *UserHandler) Book(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}
	lotID, ok := pathID(c, "lot_id")
	if !ok {
		return respondErr(c, http.StatusBadRequest, "invalid lot id")
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid request body")
	}
	req.VehicleNumber = strings.ToUpper(strings.TrimSpace(req.VehicleNumber))
	if req.VehicleNumber == "" {
		return respondErr(c, http.StatusBadRequest, "vehicle_number is required")
	}

	var expected *time.Time
	if req.ExpectedLeavingTime != nil && *req.ExpectedLeavingTime != "" {
		t, err := time.Parse(time.RFC3339, *req.ExpectedLeavingTime)
		if err != nil {
			return respondErr(c, http.StatusBadRequest, "expected_leaving_time must be RFC 3339")
		}
		u := t.UTC()
		expected = &u
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	lot, err := h.lots.GetByID(ctx, lotID)
	if errors.Is(err, repository.ErrNotFound) {
		return respondErr(c, http.StatusNotFound, "parking lot not found")
	}
	if err != nil {
		h.log.WithError(err).WithField("lot_id", lotID).Error("book: get lot")
		return respondInternal(c)
	}
	if !lot.IsActive {
		return respondErr(c, http.StatusConflict, "parking lot is closed")
	}

	tx, err := h.reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		h.log.WithError(err).Error("book: begin tx")
		return respondInternal(c)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.reservations.GetActiveByUserTx(ctx, tx, cl.ID); err == nil {
		return respondErr(c, http.StatusConflict, "an active reservation already exists")
	} else if !errors.Is(err, repository.ErrNoActiveReservation) {
		h.log.WithError(err).WithField("user_id", cl.ID).Error("book: check active reservation")
		return respondInternal(c)
	}

	spot, err := h.spots.ClaimNextAvailableTx(ctx, tx, lotID)
	if errors.Is(err, repository.ErrNoSpotAvailable) {
		return respondErr(c, http.StatusConflict, "no spot available in this lot")
	}
	if err != nil {
		h.log.WithError(err).WithField("lot_id", lotID).Error("book: claim spot")
		return respondInternal(c)
	}

	res := model.Reservation{
		SpotID:              spot.ID,
		UserID:              cl.ID,
		ParkingTimestamp:    time.Now().UTC(),
		ExpectedLeavingTime: expected,
		HourlyRate:          lot.Price,
		VehicleNumber:       &req.VehicleNumber,
		VehicleModel:        req.VehicleModel,
		VehicleColor:        req.VehicleColor,
		Status:              model.ReservationActive,
	}
	if err := h.reservations.CreateTx(ctx, tx, &res); err != nil {
		h.log.WithError(err).WithField("user_id", cl.ID).Error("book: create reservation")
		return respondInternal(c)
	}
	if err := tx.Commit(); err != nil {
		h.log.WithError(err).Error("book: commit")
		return respondInternal(c)
	}
	committed = true

	detail := repository.ReservationDetail{
		Reservation: res,
		SpotNumber:  spot.SpotNumber,
		LotID:       lot.ID,
		LotName:     lot.PrimeLocationName,
	}
	return respondOK(c, http.StatusCreated, "spot booked", reservationDTO(&detail, time.Now().UTC()))
}

// Release closes the caller's active reservation: the leaving time is
// stamped, the cost computed from the snapshotted hourly rate, and the spot
// freed, all in one transaction.
func (h *UserHandler) Release(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	tx, err := h.reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		h.log.WithError(err).Error("release: begin tx")
		return respondInternal(c)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.reservations.GetActiveByUserTx(ctx, tx, cl.ID)
	if errors.Is(err, repository.ErrNoActiveReservation) {
		return respondErr(c, http.StatusNotFound, "no active reservation")
	}
	if err != nil {
		h.log.WithError(err).WithField("user_id", cl.ID).Error("release: find reservation")
		return respondInternal(c)
	}

	if !res.Complete(time.Now()) {
		return respondErr(c, http.StatusConflict, "reservation is not active")
	}
	if err := h.reservations.FinishTx(ctx, tx, &res); err != nil {
		h.log.WithError(err).WithField("reservation_id", res.ID).Error("release: finish reservation")
		return respondInternal(c)
	}
	if err := h.spots.ReleaseTx(ctx, tx, res.SpotID); err != nil {
		h.log.WithError(err).WithField("spot_id", res.SpotID).Error("release: free spot")
		return respondInternal(c)
	}
	if err := tx.Commit(); err != nil {
		h.log.WithError(err).Error("release: commit")
		return respondInternal(c)
	}
	committed = true

	return respondOK(c, http.StatusOK, "spot released", echo.Map{
		"reservation_id":    res.ID,
		"spot_id":           res.SpotID,
		"parking_timestamp": res.ParkingTimestamp.UTC().Format(time.RFC3339),
		"leaving_timestamp": res.LeavingTimestamp.UTC().Format(time.RFC3339),
		"duration":          res.DurationString(time.Now()),
		"parking_cost":      res.ParkingCost,
	})
}

// Bookings lists the caller's reservation history, newest first.
func (h *UserHandler) Bookings(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	details, err := h.reservations.ListByUser(ctx, cl.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", cl.ID).Error("bookings: list")
		return respondInternal(c)
	}
	now := time.Now().UTC()
	out := make([]echo.Map, 0, len(details))
	for i := range details {
		out = append(out, reservationDTO(&details[i], now))
	}
	return respondOK(c, http.StatusOK, "bookings", out)
}
