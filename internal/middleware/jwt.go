package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-parking-system/internal/repository"
	"github.com/iliyamo/vehicle-parking-system/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token,
// rejects revoked token IDs, and injects the caller's identity claims into
// the request context.  Handlers read the identity via c.Get("user_id"),
// c.Get("role"), c.Get("username") and c.Get("email"); c.Get("user_id")
// holds the decimal user ID or "admin" for the synthetic admin identity.
// Refresh tokens (typ=refresh) are rejected here: they are only accepted by
// the refresh endpoint itself.
func JWTAuth(secret string, tokens *repository.TokenRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			parsed, err := utils.ParseToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid or expired token"})
			}
			if parsed.Type != utils.TokenTypeAccess {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "access token required"})
			}
			// A blacklisted jti means the caller logged this token out.
			revoked, err := tokens.IsRevoked(c.Request().Context(), parsed.JTI)
			if err != nil || revoked {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "token has been revoked"})
			}

			c.Set("user_id", parsed.Subject)
			c.Set("role", parsed.Role)
			c.Set("username", parsed.Username)
			c.Set("email", parsed.Email)
			c.Set("jti", parsed.JTI)
			c.Set("token_exp", parsed.Exp)
			return next(c)
		}
	}
}
