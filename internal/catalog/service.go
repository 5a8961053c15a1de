package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/moviemaster/catalog/internal/model"
	"github.com/moviemaster/catalog/internal/repository"
)

// MovieStore is the canonical movie record storage. Implemented by
// repository.MovieRepo; tests substitute an in-memory implementation.
type MovieStore interface {
	Insert(ctx context.Context, m *model.Movie) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Movie, error)
	Replace(ctx context.Context, id int64, m *model.Movie) error
	// Delete removes the movie and every watchlist entry referencing it,
	// returning the number of movie records removed (0 or 1).
	Delete(ctx context.Context, id int64) (int64, error)
	ListAll(ctx context.Context) ([]model.Movie, error)
	ListByOwner(ctx context.Context, email string) ([]model.Movie, error)
}

// WatchlistLedger maps (user identity, movie id) pairs to membership.
// Implemented by repository.WatchlistRepo. Add must be an atomic
// conditional insert: concurrent adds for the same pair must not both
// succeed.
type WatchlistLedger interface {
	Add(ctx context.Context, email string, movieID int64) error
	Remove(ctx context.Context, email string, movieID int64) (int64, error)
	ListFor(ctx context.Context, email string) ([]int64, error)
	IsMember(ctx context.Context, email string, movieID int64) (bool, error)
}

// Service composes the movie store, filter engine, ownership guard and
// watchlist ledger into the externally callable catalog operations. Every
// method takes the caller identity explicitly; nothing is read from ambient
// state.
type Service struct {
	movies    MovieStore
	watchlist WatchlistLedger
}

// NewService constructs a Service and panics if a dependency is nil.
func NewService(movies MovieStore, watchlist WatchlistLedger) *Service {
	if movies == nil || watchlist == nil {
		panic("nil dependency passed to catalog.NewService")
	}
	return &Service{movies: movies, watchlist: watchlist}
}

// ListMovies applies the filter query over the full collection. An empty
// result is a valid outcome, never an error.
func (s *Service) ListMovies(ctx context.Context, q model.FilterQuery) ([]model.Movie, error) {
	all, err := s.movies.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, q), nil
}

// TopRated returns the n highest-rated movies of the whole collection.
func (s *Service) TopRated(ctx context.Context, n int) ([]model.Movie, error) {
	all, err := s.movies.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return TopRated(all, n), nil
}

// RecentlyAdded returns the n most recently released movies.
func (s *Service) RecentlyAdded(ctx context.Context, n int) ([]model.Movie, error) {
	all, err := s.movies.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return RecentlyAdded(all, n), nil
}

// GetMovie fetches a single record by id.
func (s *Service) GetMovie(ctx context.Context, id int64) (*model.Movie, error) {
	return s.movies.GetByID(ctx, id)
}

// MoviesByOwner lists the movies created by the given identity.
func (s *Service) MoviesByOwner(ctx context.Context, email string) ([]model.Movie, error) {
	return s.movies.ListByOwner(ctx, normalizeIdentity(email))
}

// AddMovie validates the input, stamps AddedBy from the authenticated
// identity and inserts the record. Any addedBy value the client may have
// smuggled into the body never reaches this method: MovieInput has no such
// field.
func (s *Service) AddMovie(ctx context.Context, identity string, in model.MovieInput) (int64, error) {
	identity = normalizeIdentity(identity)
	if identity == "" {
		return 0, &model.ValidationError{Field: "identity", Reason: "must not be empty"}
	}
	if err := in.Validate(); err != nil {
		return 0, err
	}
	var m model.Movie
	in.Apply(&m)
	m.AddedBy = identity
	return s.movies.Insert(ctx, &m)
}

// UpdateMovie replaces every client-suppliable field of an existing movie.
// The sequence is fixed: missing movie reports not found, non-owner reports
// forbidden, and only then is the replace applied. The id and AddedBy are
// immutable.
func (s *Service) UpdateMovie(ctx context.Context, identity string, id int64, in model.MovieInput) error {
	identity = normalizeIdentity(identity)
	if err := in.Validate(); err != nil {
		return err
	}
	current, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(identity, *current) {
		return repository.ErrForbidden
	}
	updated := *current
	in.Apply(&updated)
	return s.movies.Replace(ctx, id, &updated)
}

// DeleteMovie removes a movie after the same not-found/forbidden sequence
// as UpdateMovie. The store cascades watchlist entries, so no user's
// materialized watchlist can resurrect the record.
func (s *Service) DeleteMovie(ctx context.Context, identity string, id int64) (int64, error) {
	identity = normalizeIdentity(identity)
	current, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !CanMutate(identity, *current) {
		return 0, repository.ErrForbidden
	}
	return s.movies.Delete(ctx, id)
}

// AddToWatchlist records membership for the caller and the movie. The
// movie must exist (a watchlist entry for a nonexistent movie is
// meaningless); an already-present pair reports ErrAlreadyInWatchlist.
func (s *Service) AddToWatchlist(ctx context.Context, identity string, movieID int64) error {
	identity = normalizeIdentity(identity)
	if identity == "" {
		return &model.ValidationError{Field: "userEmail", Reason: "must not be empty"}
	}
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		return err
	}
	return s.watchlist.Add(ctx, identity, movieID)
}

// RemoveFromWatchlist deletes the pair and returns the removed count.
// Removing an absent pair yields zero, not an error.
func (s *Service) RemoveFromWatchlist(ctx context.Context, identity string, movieID int64) (int64, error) {
	return s.watchlist.Remove(ctx, normalizeIdentity(identity), movieID)
}

// ListWatchlist materializes the caller's watchlist into full movie
// records. Entries whose movie no longer resolves are dropped silently;
// they are dangling facts, not errors.
func (s *Service) ListWatchlist(ctx context.Context, identity string) ([]model.Movie, error) {
	ids, err := s.watchlist.ListFor(ctx, normalizeIdentity(identity))
	if err != nil {
		return nil, err
	}
	out := make([]model.Movie, 0, len(ids))
	for _, id := range ids {
		m, err := s.movies.GetByID(ctx, id)
		if errors.Is(err, repository.ErrMovieNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// InWatchlist reports whether the movie is on the caller's watchlist.
func (s *Service) InWatchlist(ctx context.Context, identity string, movieID int64) (bool, error) {
	return s.watchlist.IsMember(ctx, normalizeIdentity(identity), movieID)
}

// normalizeIdentity lower-cases and trims an email so ownership comparisons
// match the normalization applied at registration.
func normalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
