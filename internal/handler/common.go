package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-parking-system/internal/utils"
)

const requestTimeout = 5 * time.Second

// reqContext bounds database work for a single request.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// caller describes the authenticated principal stored by the JWT middleware.
// The admin is synthetic (credentials come from config, not the users table)
// so ID is only meaningful when IsAdmin is false.
type caller struct {
	Subject  string
	ID       uint64
	Role     string
	Username string
	Email    string
	JTI      string
	TokenExp time.Time
	IsAdmin  bool
}

func callerFrom(c echo.Context) (caller, bool) {
	sub, _ := c.Get("user_id").(string)
	if sub == "" {
		return caller{}, false
	}
	out := caller{Subject: sub}
	out.Role, _ = c.Get("role").(string)
	out.Username, _ = c.Get("username").(string)
	out.Email, _ = c.Get("email").(string)
	out.JTI, _ = c.Get("jti").(string)
	if exp, ok := c.Get("token_exp").(time.Time); ok {
		out.TokenExp = exp
	}
	if sub == utils.AdminSubject {
		out.IsAdmin = true
		return out, true
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return caller{}, false
	}
	out.ID = id
	return out, true
}

// pathID parses a numeric route parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
