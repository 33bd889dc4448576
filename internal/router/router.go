// Package router wires the HTTP surface: public auth endpoints, the
// admin-only lot management group and the user-facing booking group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-parking-system/internal/handler"
	"github.com/iliyamo/vehicle-parking-system/internal/middleware"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
)

// RegisterHealth exposes the dependency-aware health probe. No auth, so
// load balancers and monitors can hit it directly.
func RegisterHealth(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Check)
}

// RegisterAuth mounts the token lifecycle under /api/auth. Register, login
// and refresh are public; logout and me require a valid access token so
// the middleware can extract the token id and identity.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, tokens *repository.TokenRepo) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	authed := e.Group("/api/auth")
	authed.Use(middleware.JWTAuth(jwtSecret, tokens))
	authed.POST("/logout", a.Logout)
	authed.GET("/me", a.Me)
}

// RegisterAdmin mounts the management surface under /api/admin. Every
// route requires an admin access token; the read endpoints sit behind the
// lot cache.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, tokens *repository.TokenRepo, lotCache echo.MiddlewareFunc) {
	g := e.Group("/api/admin")
	g.Use(middleware.JWTAuth(jwtSecret, tokens))
	g.Use(middleware.RequireRole("admin"))

	g.GET("/users", a.ListUsers)

	g.POST("/pkl/create", a.CreateLot)
	g.POST("/pkl/update/:id", a.UpdateLot)
	g.DELETE("/pkl/delete/:id", a.DeleteLot)
	g.GET("/pkl/list", a.ListLots, lotCache)
	g.GET("/pkl/:id", a.GetLot, lotCache)
	g.GET("/pkl/:id/spots", a.ListSpots, lotCache)
}

// RegisterUser mounts the booking surface under /api/user. Every route
// requires a user access token. The lot browse endpoint is cached; the
// booking endpoints are not, they must see live spot state.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, x *handler.ExportHandler, jwtSecret string, tokens *repository.TokenRepo, spotCache echo.MiddlewareFunc) {
	g := e.Group("/api/user")
	g.Use(middleware.JWTAuth(jwtSecret, tokens))
	g.Use(middleware.RequireRole("user"))

	g.GET("/profile", u.Profile)
	g.POST("/profile/update", u.UpdateProfile)

	g.GET("/pkl/list", u.ListLots, spotCache)
	g.POST("/pkl/book/:lot_id", u.Book)
	g.POST("/pkl/release", u.Release)
	g.GET("/pkl/book/list", u.Bookings)

	g.POST("/export-csv", x.Trigger)
	g.GET("/export-status/:id", x.Status)
	g.GET("/download-csv/:file", x.Download)
}

// RegisterRateLimit applies the global token-bucket limiter. Separate from
// the groups so it runs before auth and covers the public endpoints too.
func RegisterRateLimit(e *echo.Echo, limiter echo.MiddlewareFunc) {
	e.Use(limiter)
}
