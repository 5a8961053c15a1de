// Package repository contains the data access layer, separated from the
// HTTP handlers and the catalog service. This file defines sentinel error
// values shared across repositories so higher layers can distinguish
// failure scenarios: a missing movie is not the same as a movie owned by
// someone else, and a duplicate watchlist entry is a reportable conflict,
// not a success.
package repository

import "errors"

// ErrMovieNotFound is returned when a movie id does not resolve to a row.
// Handlers translate this into an HTTP 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// ErrForbidden is returned when the caller attempts to mutate a movie they
// do not own. Handlers translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyInWatchlist is returned when a (user, movie) pair is already a
// member of the watchlist. It is a normal outcome of the conditional
// insert, reported to the caller as HTTP 409.
var ErrAlreadyInWatchlist = errors.New("movie already in watchlist")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")
