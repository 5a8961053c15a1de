package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
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

// MovieHandler serves the movie catalog routes. Reads are public; create,
// update and delete require an authenticated identity. After every
// successful mutation it publishes an event and flushes the listing cache.
type MovieHandler struct {
	catalog     *catalog.Service
	cache       *redis.Client
	cachePrefix string
}

// NewMovieHandler wires the handler. cache may be nil when Redis is absent;
// flushing then becomes a no-op.
func NewMovieHandler(svc *catalog.Service, cache *redis.Client, cachePrefix string) *MovieHandler {
	return &MovieHandler{catalog: svc, cache: cache, cachePrefix: cachePrefix}
}

// List handles GET /movies. Query parameters: title (substring, case
// insensitive), genres (comma separated, any-match), ratingMin, ratingMax.
// Absent parameters leave the corresponding constraint open.
func (h *MovieHandler) List(c echo.Context) error {
	q := model.DefaultFilterQuery()
	q.TitleContains = c.QueryParam("title")

	if raw := c.QueryParam("genres"); raw != "" {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				q.Genres = append(q.Genres, g)
			}
		}
	}
	if raw := c.QueryParam("ratingMin"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ratingMin must be a number"})
		}
		q.RatingMin = v
	}
	if raw := c.QueryParam("ratingMax"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ratingMax must be a number"})
		}
		q.RatingMax = v
	}
	if q.RatingMin > q.RatingMax {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ratingMin must not exceed ratingMax"})
	}

	movies, err := h.catalog.ListMovies(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list movies"})
	}
	return c.JSON(http.StatusOK, movies)
}

// TopRated handles GET /movies/top-rated?limit= and defaults to the five
// highest rated titles.
func (h *MovieHandler) TopRated(c echo.Context) error {
	n := limitParam(c, catalog.DefaultTopRatedCount)
	movies, err := h.catalog.TopRated(c.Request().Context(), n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list movies"})
	}
	return c.JSON(http.StatusOK, movies)
}

// RecentlyAdded handles GET /movies/recently-added?limit= and defaults to
// the six newest releases.
func (h *MovieHandler) RecentlyAdded(c echo.Context) error {
	n := limitParam(c, catalog.DefaultRecentlyAddedCount)
	movies, err := h.catalog.RecentlyAdded(c.Request().Context(), n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list movies"})
	}
	return c.JSON(http.StatusOK, movies)
}

// Get handles GET /movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := movieID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, err := h.catalog.GetMovie(c.Request().Context(), id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch movie"})
	}
	return c.JSON(http.StatusOK, m)
}

// ByOwner handles GET /movies-by-email?email=. The email must match the
// authenticated identity; callers cannot enumerate other users' uploads.
func (h *MovieHandler) ByOwner(c echo.Context) error {
	identity, err := userEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	email := c.QueryParam("email")
	if email == "" {
		email = identity
	}
	if !sameIdentity(email, identity) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "email does not match authenticated user"})
	}
	movies, err := h.catalog.MoviesByOwner(c.Request().Context(), identity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list movies"})
	}
	return c.JSON(http.StatusOK, movies)
}

// Create handles POST /movies. The authenticated identity becomes the
// record's owner regardless of anything in the body.
func (h *MovieHandler) Create(c echo.Context) error {
	identity, err := userEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in model.MovieInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), mutationTimeout)
	defer cancel()

	id, err := h.catalog.AddMovie(ctx, identity, in)
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create movie"})
	}

	h.afterMutation(queue.EventMovieCreated, id, in.Title, identity)
	return c.JSON(http.StatusCreated, echo.Map{"insertedId": id})
}

// Update handles PUT /movies/:id with full-replace semantics.
func (h *MovieHandler) Update(c echo.Context) error {
	identity, err := userEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := movieID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var in model.MovieInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), mutationTimeout)
	defer cancel()

	err = h.catalog.UpdateMovie(ctx, identity, id, in)
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error()})
	case errors.Is(err, repository.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner may modify this movie"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update movie"})
	}

	h.afterMutation(queue.EventMovieUpdated, id, in.Title, identity)
	return c.JSON(http.StatusOK, echo.Map{"modifiedCount": 1})
}

// Delete handles DELETE /movies/:id. Watchlist entries referencing the
// movie are removed in the same transaction as the record itself.
func (h *MovieHandler) Delete(c echo.Context) error {
	identity, err := userEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := movieID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), mutationTimeout)
	defer cancel()

	count, err := h.catalog.DeleteMovie(ctx, identity, id)
	switch {
	case errors.Is(err, repository.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner may delete this movie"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete movie"})
	}

	h.afterMutation(queue.EventMovieDeleted, id, "", identity)
	return c.JSON(http.StatusOK, echo.Map{"deletedCount": count})
}

// afterMutation publishes a catalog event and invalidates cached listings.
// Both are best effort; the mutation already committed.
func (h *MovieHandler) afterMutation(eventType string, id int64, title, actor string) {
	ev := queue.MovieEvent{
		Type:       eventType,
		MovieID:    id,
		Title:      title,
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
	middleware.FlushCache(ctx, h.cache, h.cachePrefix)
}

// limitParam reads ?limit= with a positive default and a sane upper bound.
func limitParam(c echo.Context, def int) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > 100 {
		n = 100
	}
	return n
}
