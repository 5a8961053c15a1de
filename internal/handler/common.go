// Package handler exposes the HTTP surface of the catalog service. Public
// routes serve reads; authenticated routes mutate the catalog and the
// caller's watchlist. Handlers validate transport-level input, delegate to
// the catalog service with an explicit identity and map sentinel errors to
// status codes.
package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// mutationTimeout bounds every storage mutation triggered by a request.
const mutationTimeout = 5 * time.Second

// userEmail extracts the authenticated identity injected by the JWT
// middleware. Handlers must never fall back to a guest identity; a missing
// value is an error.
func userEmail(c echo.Context) (string, error) {
	if v, ok := c.Get("user_email").(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("no authenticated identity in context")
}

// movieID parses a movie id path or query value.
func movieID(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

// sameIdentity compares a client-supplied email against the authenticated
// one. Emails in paths and query strings are accepted for boundary
// compatibility but must match the verified identity.
func sameIdentity(claimed, authenticated string) bool {
	return strings.EqualFold(strings.TrimSpace(claimed), authenticated)
}
