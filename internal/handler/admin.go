package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
)

// AdminHandler serves the admin-only management surface: the user directory
// and the parking-lot CRUD. Spots are never managed directly; they are
// created and resized as a side effect of lot writes.
type AdminHandler struct {
	users *repository.UserRepo
	lots  *repository.LotRepo
	spots *repository.SpotRepo
	log   *logrus.Logger
}

func NewAdminHandler(users *repository.UserRepo, lots *repository.LotRepo, spots *repository.SpotRepo, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{users: users, lots: lots, spots: spots, log: log}
}

// ListUsers returns every registered account.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		h.log.WithError(err).Error("admin: list users")
		return respondInternal(c)
	}
	out := make([]echo.Map, 0, len(users))
	for i := range users {
		out = append(out, userDTO(&users[i]))
	}
	return respondOK(c, http.StatusOK, "users", out)
}

type lotCreateRequest struct {
	PrimeLocationName   string  `json:"prime_location_name"`
	Address             string  `json:"address"`
	PinCode             string  `json:"pin_code"`
	Price               float64 `json:"price"`
	NumberOfSpots       uint32  `json:"number_of_spots"`
	Description         *string `json:"description"`
	OperatingHoursStart *string `json:"operating_hours_start"`
	OperatingHoursEnd   *string `json:"operating_hours_end"`
}

// CreateLot inserts a lot together with its spot rows 1..N.
func (h *AdminHandler) CreateLot(c echo.Context) error {
	var req lotCreateRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid request body")
	}
	req.PrimeLocationName = strings.TrimSpace(req.PrimeLocationName)
	req.Address = strings.TrimSpace(req.Address)
	req.PinCode = strings.TrimSpace(req.PinCode)

	switch {
	case req.PrimeLocationName == "" || req.Address == "" || req.PinCode == "":
		return respondErr(c, http.StatusBadRequest, "prime_location_name, address and pin_code are required")
	case req.NumberOfSpots == 0:
		return respondErr(c, http.StatusBadRequest, "number_of_spots must be greater than zero")
	case req.Price < 0:
		return respondErr(c, http.StatusBadRequest, "price must not be negative")
	}

	lot := model.ParkingLot{
		PrimeLocationName:   req.PrimeLocationName,
		Address:             req.Address,
		PinCode:             req.PinCode,
		Price:               req.Price,
		NumberOfSpots:       req.NumberOfSpots,
		IsActive:            true,
		Description:         req.Description,
		OperatingHoursStart: req.OperatingHoursStart,
		OperatingHoursEnd:   req.OperatingHoursEnd,
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.lots.Create(ctx, &lot); err != nil {
		h.log.WithError(err).Error("admin: create lot")
		return respondInternal(c)
	}
	avail := model.LotAvailability{Available: lot.NumberOfSpots}
	return respondOK(c, http.StatusCreated, "parking lot created", lotDTO(&lot, &avail))
}

type lotUpdateRequest struct {
	PrimeLocationName   *string  `json:"prime_location_name"`
	Address             *string  `json:"address"`
	PinCode             *string  `json:"pin_code"`
	Price               *float64 `json:"price"`
	NumberOfSpots       *uint32  `json:"number_of_spots"`
	IsActive            *bool    `json:"is_active"`
	Description         *string  `json:"description"`
	OperatingHoursStart *string  `json:"operating_hours_start"`
	OperatingHoursEnd   *string  `json:"operating_hours_end"`
}

// UpdateLot applies a partial update. Changing the spot count rebuilds the
// spot rows and is refused while any spot is occupied.
func (h *AdminHandler) UpdateLot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return respondErr(c, http.StatusBadRequest, "invalid lot id")
	}
	var req lotUpdateRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid request body")
	}
	if req.NumberOfSpots != nil && *req.NumberOfSpots == 0 {
		return respondErr(c, http.StatusBadRequest, "number_of_spots must be greater than zero")
	}
	if req.Price != nil && *req.Price < 0 {
		return respondErr(c, http.StatusBadRequest, "price must not be negative")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	lot, err := h.lots.Update(ctx, id, repository.LotUpdate{
		PrimeLocationName:   req.PrimeLocationName,
		Address:             req.Address,
		PinCode:             req.PinCode,
		NumberOfSpots:       req.NumberOfSpots,
		Price:               req.Price,
		IsActive:            req.IsActive,
		Description:         req.Description,
		OperatingHoursStart: req.OperatingHoursStart,
		OperatingHoursEnd:   req.OperatingHoursEnd,
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return respondErr(c, http.StatusNotFound, "parking lot not found")
	case errors.Is(err, repository.ErrLotOccupied):
		return respondErr(c, http.StatusConflict, "cannot resize lot while spots are occupied")
	case err != nil:
		h.log.WithError(err).WithField("lot_id", id).Error("admin: update lot")
		return respondInternal(c)
	}

	avail, err := h.lots.Availability(ctx, lot.ID)
	if err != nil {
		h.log.WithError(err).WithField("lot_id", id).Error("admin: lot availability")
		return respondInternal(c)
	}
	return respondOK(c, http.StatusOK, "parking lot updated", lotDTO(&lot, &avail))
}

// DeleteLot removes an empty lot; its spot rows go with it. A lot with any
// occupied spot cannot be deleted.
func (h *AdminHandler) DeleteLot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return respondErr(c, http.StatusBadRequest, "invalid lot id")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	lot, err := h.lots.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return respondErr(c, http.StatusNotFound, "parking lot not found")
	case errors.Is(err, repository.ErrLotOccupied):
		return respondErr(c, http.StatusConflict, "cannot delete lot while spots are occupied")
	case err != nil:
		h.log.WithError(err).WithField("lot_id", id).Error("admin: delete lot")
		return respondInternal(c)
	}
	return respondOK(c, http.StatusOK, "parking lot deleted", lotDTO(&lot, nil))
}

// GetLot returns one lot with its live availability counters.
func (h *AdminHandler) GetLot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return respondErr(c, http.StatusBadRequest, "invalid lot id")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	lot, err := h.lots.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return respondErr(c, http.StatusNotFound, "parking lot not found")
	}
	if err != nil {
		h.log.WithError(err).WithField("lot_id", id).Error("admin: get lot")
		return respondInternal(c)
	}
	avail, err := h.lots.Availability(ctx, id)
	if err != nil {
		h.log.WithError(err).WithField("lot_id", id).Error("admin: lot availability")
		return respondInternal(c)
	}
	return respondOK(c, http.StatusOK, "parking lot", lotDTO(&lot, &avail))
}

// ListLots returns every lot with availability counters.
func (h *AdminHandler) ListLots(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	lots, err := h.lots.List(ctx)
	if err != nil {
		h.log.WithError(err).Error("admin: list lots")
		return respondInternal(c)
	}
	out := make([]echo.Map, 0, len(lots))
	for i := range lots {
		avail, err := h.lots.Availability(ctx, lots[i].ID)
		if err != nil {
			h.log.WithError(err).WithField("lot_id", lots[i].ID).Error("admin: lot availability")
			return respondInternal(c)
		}
		out = append(out, lotDTO(&lots[i], &avail))
	}
	return respondOK(c, http.StatusOK, "parking lots", out)
}

// ListSpots returns the spot rows of one lot, ordered by spot number.
func (h *AdminHandler) ListSpots(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return respondErr(c, http.StatusBadRequest, "invalid lot id")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	lot, err := h.lots.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return respondErr(c, http.StatusNotFound, "parking lot not found")
	}
	if err != nil {
		h.log.WithError(err).WithField("lot_id", id).Error("admin: get lot")
		return respondInternal(c)
	}

	spots, err := h.spots.ListByLot(ctx, id)
	if err != nil {
		h.log.WithError(err).WithField("lot_id", id).Error("admin: list spots")
		return respondInternal(c)
	}
	out := make([]echo.Map, 0, len(spots))
	for i := range spots {
		out = append(out, spotDTO(&spots[i], lot.PrimeLocationName))
	}
	return respondOK(c, http.StatusOK, "parking spots", out)
}
