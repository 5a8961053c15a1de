// Package catalog implements the core of the movie service: the filter
// engine, the ownership guard and the service composing them over the
// storage layer. Everything in this file is a pure function of its inputs;
// no hidden state, no storage access.
package catalog

import (
	"sort"
	"strings"

	"github.com/moviemaster/catalog/internal/model"
)

// Default sizes of the home-page presentation views.
const (
	DefaultTopRatedCount      = 5
	DefaultRecentlyAddedCount = 6
)

// Filter evaluates the query against the records and returns the matches in
// their original order. Query fields combine with logical AND; an absent
// field never excludes a record.
func Filter(movies []model.Movie, q model.FilterQuery) []model.Movie {
	title := strings.ToLower(strings.TrimSpace(q.TitleContains))
	genres := genreSet(q.Genres)

	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if title != "" && !strings.Contains(strings.ToLower(m.Title), title) {
			continue
		}
		if len(genres) > 0 && !genres[strings.ToLower(m.Genre)] {
			continue
		}
		if m.Rating < q.RatingMin || m.Rating > q.RatingMax {
			continue
		}
		out = append(out, m)
	}
	return out
}

// TopRated returns at most n movies ordered by rating descending, ties
// broken by original order. The input slice is not modified.
func TopRated(movies []model.Movie, n int) []model.Movie {
	sorted := make([]model.Movie, len(movies))
	copy(sorted, movies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})
	return truncate(sorted, n)
}

// RecentlyAdded returns at most n movies ordered by release year
// descending, ties broken by original order. The shipped web client derives
// this view from the release year rather than the creation timestamp, so
// the server keeps that ordering for compatibility.
func RecentlyAdded(movies []model.Movie, n int) []model.Movie {
	sorted := make([]model.Movie, len(movies))
	copy(sorted, movies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReleaseYear > sorted[j].ReleaseYear
	})
	return truncate(sorted, n)
}

func truncate(movies []model.Movie, n int) []model.Movie {
	if n < 0 {
		n = 0
	}
	if len(movies) > n {
		movies = movies[:n]
	}
	return movies
}

func genreSet(genres []string) map[string]bool {
	set := make(map[string]bool, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			set[g] = true
		}
	}
	return set
}
