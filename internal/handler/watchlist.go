package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/moviemaster/catalog/internal/catalog"
	"github.com/moviemaster/catalog/internal/middleware"
	"github.com/moviemaster/catalog/internal/model"
	"github.com/moviemaster/catalog/internal/queue"
	"github.com/moviemaster/catalog/internal/repository"
	queue_publisher "github.com/moviemaster/catalog/internal/service"
)

// WatchlistHandler serves the per-user watchlist routes. Every route is
// authenticated; emails supplied in paths or query strings must match the
// verified identity.
type WatchlistHandler struct {
	catalog *catalog.Service
	cache   *redis.Client
	prefix  string
}

// NewWatchlistHandler wires the handler. cache may be nil.
func NewWatchlistHandler(svc *catalog.Service, cache *redis.Client, cachePrefix string) *WatchlistHandler {
	return &WatchlistHandler{catalog: svc, cache: cache, prefix: cachePrefix}
}

// addRequest is the POST /watchlist body.
type addRequest struct {
	UserEmail string `json:"userEmail"`
	MovieID   int64  `json:"movieId"`
}

// List handles GET /watchlist/:email and GET /watchlist?email=, returning
// the caller's watchlist as full movie records.
func (h *WatchlistHandler) List(c echo.Context) error {
	identity, err := userEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	email := c.Param("email")
	if email == "" {
		email = c.QueryParam("email")
	}
	if email == "" {
		email = identity
	}
	if !sameIdentity(email, identity) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "email does not match authenticated user"})
	}

	movies, err := h.catalog.ListWatchlist(c.Request().Context(), identity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list watchlist"})
	}
	return c.JSON(http.StatusOK, movies)
}

// Add handles POST /watchlist. A first-time pair answers 201; adding the
// same movie again answers 409 so clients can distinguish the outcomes.
func (h *WatchlistHandler) Add(c echo.Context) error {
	identity, err := userEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MovieID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movieId is required"})
	}
	if req.UserEmail != "" && !sameIdentity(req.UserEmail, identity) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "userEmail does not match authenticated user"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), mutationTimeout)
	defer cancel()

	err = h.catalog.AddToWatchlist(ctx, identity, req.MovieID)
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error()})
	case errors.Is(err, repository.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, repository.ErrAlreadyInWatchlist):
		return c.JSON(http.StatusConflict, echo.Map{"error": "movie already in watchlist"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add to watchlist"})
	}

	h.publishAdded(req.MovieID, identity)
	return c.JSON(http.StatusCreated, echo.Map{"userEmail": identity, "movieId": req.MovieID})
}

// Remove handles DELETE /watchlist/:movieId?email=. Removing an absent pair
// is a success with deletedCount zero.
func (h *WatchlistHandler) Remove(c echo.Context) error {
	identity, err := userEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := movieID(c.Param("movieId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	if email := c.QueryParam("email"); email != "" && !sameIdentity(email, identity) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "email does not match authenticated user"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), mutationTimeout)
	defer cancel()

	count, err := h.catalog.RemoveFromWatchlist(ctx, identity, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove from watchlist"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deletedCount": count})
}

// Contains handles GET /watchlist/contains/:movieId, letting clients render
// the add/remove toggle without fetching the whole list.
func (h *WatchlistHandler) Contains(c echo.Context) error {
	identity, err := userEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := movieID(c.Param("movieId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	member, err := h.catalog.InWatchlist(c.Request().Context(), identity, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check watchlist"})
	}
	return c.JSON(http.StatusOK, echo.Map{"inWatchlist": member})
}

func (h *WatchlistHandler) publishAdded(movieID int64, actor string) {
	ev := queue.MovieEvent{
		Type:       queue.EventWatchlistAdded,
		MovieID:    movieID,
		Actor:      actor,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		_ = queue_publisher.PublishMovieEvent(ctx, ev)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
	defer cancel()
	middleware.FlushCache(ctx, h.cache, h.prefix)
}
