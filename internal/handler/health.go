package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness of the process and its dependencies.
type HealthHandler struct {
	DB  *sql.DB
	RDB *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, RDB: rdb}
}

func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	deps := echo.Map{"database": "up", "redis": "up"}
	status := http.StatusOK

	if err := h.DB.PingContext(ctx); err != nil {
		deps["database"] = "down"
		status = http.StatusServiceUnavailable
	}
	if h.RDB == nil {
		deps["redis"] = "disabled"
	} else if err := h.RDB.Ping(ctx).Err(); err != nil {
		deps["redis"] = "down"
	}

	if status != http.StatusOK {
		return respondErr(c, status, "degraded")
	}
	return respondOK(c, http.StatusOK, "ok", deps)
}
