// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/moviemaster/catalog/internal/handler"
	"github.com/moviemaster/catalog/internal/middleware"
)

// RegisterHealth exposes the liveness probe.
func RegisterHealth(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Check)
}

// RegisterAuth mounts the authentication routes. /auth/me sits behind the
// JWT middleware; the rest are reachable without a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	e.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterCatalog mounts the movie and watchlist routes. Public reads go
// through the response cache; everything that mutates or is user-scoped
// requires a valid token.
func RegisterCatalog(e *echo.Echo, m *handler.MovieHandler, w *handler.WatchlistHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	auth := middleware.JWTAuth(jwtSecret)

	public := e.Group("", cache)
	public.GET("/movies", m.List)
	public.GET("/movies/top-rated", m.TopRated)
	public.GET("/movies/recently-added", m.RecentlyAdded)
	public.GET("/movies/:id", m.Get)

	e.POST("/movies", m.Create, auth)
	e.PUT("/movies/:id", m.Update, auth)
	e.DELETE("/movies/:id", m.Delete, auth)
	e.GET("/movies-by-email", m.ByOwner, auth)

	e.GET("/watchlist", w.List, auth)
	e.GET("/watchlist/:email", w.List, auth)
	e.GET("/watchlist/contains/:movieId", w.Contains, auth)
	e.POST("/watchlist", w.Add, auth)
	e.DELETE("/watchlist/:movieId", w.Remove, auth)
}
