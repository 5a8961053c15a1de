// Package model defines the records exchanged between the repository,
// catalog and handler layers. Movie is the canonical catalog record; the
// input and query types carry client-supplied data after validation. The
// json tags mirror the field names the MovieMaster web client already uses,
// including the legacy "_id" identifier key.
package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Rating bounds of the catalog domain. Absent query bounds default to these
// extremes so an omitted bound never excludes a record.
const (
	RatingMin = 0.0
	RatingMax = 10.0
)

// firstFilmYear is the lowest accepted release year (Roundhay Garden Scene).
const firstFilmYear = 1888

// Movie is a catalog record. ID is assigned by the store on insert and is
// stable for the record's lifetime. AddedBy holds the creating user's email
// and is the ownership key; it is stamped once at creation and never
// accepted from client input.
type Movie struct {
	ID          int64     `json:"_id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	ReleaseYear int       `json:"releaseYear"`
	Rating      float64   `json:"rating"`
	Duration    int       `json:"duration"`
	Director    string    `json:"director"`
	Cast        string    `json:"cast"`
	PlotSummary string    `json:"plotSummary"`
	PosterURL   string    `json:"posterUrl"`
	Language    string    `json:"language"`
	Country     string    `json:"country"`
	AddedBy     string    `json:"addedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MovieInput carries the client-suppliable fields of a movie. It
// deliberately has no id and no addedBy field: identity comes from the
// authenticated caller, never from the request body.
type MovieInput struct {
	Title       string  `json:"title"`
	Genre       string  `json:"genre"`
	ReleaseYear int     `json:"releaseYear"`
	Rating      float64 `json:"rating"`
	Duration    int     `json:"duration"`
	Director    string  `json:"director"`
	Cast        string  `json:"cast"`
	PlotSummary string  `json:"plotSummary"`
	PosterURL   string  `json:"posterUrl"`
	Language    string  `json:"language"`
	Country     string  `json:"country"`
}

// ValidationError reports a malformed or missing input field. Requests that
// produce one are rejected before any storage call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the input against the catalog domain rules. The first
// violation found is returned as a *ValidationError.
func (in *MovieInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Genre) == "" {
		return &ValidationError{Field: "genre", Reason: "must not be empty"}
	}
	if in.ReleaseYear < firstFilmYear || in.ReleaseYear > time.Now().Year()+1 {
		return &ValidationError{Field: "releaseYear", Reason: "out of range"}
	}
	if in.Rating < RatingMin || in.Rating > RatingMax {
		return &ValidationError{Field: "rating", Reason: "must be between 0 and 10"}
	}
	if in.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be a positive number of minutes"}
	}
	if strings.TrimSpace(in.PosterURL) == "" {
		return &ValidationError{Field: "posterUrl", Reason: "must not be empty"}
	}
	if u, err := url.Parse(in.PosterURL); err != nil || !u.IsAbs() {
		return &ValidationError{Field: "posterUrl", Reason: "must be an absolute URL"}
	}
	return nil
}

// Apply copies the input fields onto a movie record, leaving ID, AddedBy
// and CreatedAt untouched. Used by create (on a zero Movie) and by update
// (full replace of the client-suppliable fields).
func (in *MovieInput) Apply(m *Movie) {
	m.Title = strings.TrimSpace(in.Title)
	m.Genre = strings.TrimSpace(in.Genre)
	m.ReleaseYear = in.ReleaseYear
	m.Rating = in.Rating
	m.Duration = in.Duration
	m.Director = strings.TrimSpace(in.Director)
	m.Cast = strings.TrimSpace(in.Cast)
	m.PlotSummary = strings.TrimSpace(in.PlotSummary)
	m.PosterURL = strings.TrimSpace(in.PosterURL)
	m.Language = strings.TrimSpace(in.Language)
	m.Country = strings.TrimSpace(in.Country)
}

// FilterQuery is the caller-supplied predicate for listing movies. All
// fields are optional and combined with logical AND. An empty Genres set
// matches every genre.
type FilterQuery struct {
	TitleContains string
	Genres        []string
	RatingMin     float64
	RatingMax     float64
}

// DefaultFilterQuery returns a query that matches every record.
func DefaultFilterQuery() FilterQuery {
	return FilterQuery{RatingMin: RatingMin, RatingMax: RatingMax}
}
