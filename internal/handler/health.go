package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports service liveness plus the state of its backends.
type HealthHandler struct {
	DB    *sql.DB
	Redis *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, Redis: rdb}
}

// Check handles GET /healthz. The database is required; Redis is optional
// and only reported, never failed on.
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	overall := "ok"
	dbState := "ok"
	if err := h.DB.PingContext(ctx); err != nil {
		dbState = "down"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	redisState := "disabled"
	if h.Redis != nil {
		redisState = "ok"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			redisState = "down"
		}
	}

	return c.JSON(status, echo.Map{
		"status": overall,
		"db":     dbState,
		"redis":  redisState,
	})
}
