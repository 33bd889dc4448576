// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow handlers to distinguish
// failure scenarios: validation conflicts on registration, business-rule
// violations in the booking lifecycle, and ownership problems on exports.
// Handlers translate each sentinel to a fixed HTTP status and the uniform
// JSON envelope.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrUsernameExists is returned when a write collides with an existing
// username.  Mapped to HTTP 409 with a field-specific message.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when a write collides with an existing
// (case-folded) email.  Mapped to HTTP 409 with a field-specific message.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a requested entity does not exist.  Mapped
// to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrNoSpotAvailable is returned by the booking transition when every spot
// in the lot is occupied.  Mapped to HTTP 409.
var ErrNoSpotAvailable = errors.New("no available spots")

// ErrNoActiveReservation is returned by the release transition when the
// caller has no open reservation.  Mapped to HTTP 404.
var ErrNoActiveReservation = errors.New("no active reservation")

// ErrLotOccupied is returned when a delete or a spot-count change cannot
// proceed because the lot still has occupied spots.  Mapped to HTTP 409.
var ErrLotOccupied = errors.New("parking lot is not empty")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as polling another user's export job.
// Mapped to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062) on the named unique key.
func isDuplicateKey(err error, key string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return false
	}
	return strings.Contains(strings.ToLower(me.Message), strings.ToLower(key))
}
