package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviemaster/catalog/internal/model"
	"github.com/moviemaster/catalog/internal/repository"
)

// memStore is an in-memory MovieStore. Ids count up and are never reused,
// matching the storage contract.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Movie
	ledger *memLedger // for the delete cascade
}

func newMemStore(ledger *memLedger) *memStore {
	return &memStore{rows: make(map[int64]model.Movie), ledger: ledger}
}

func (s *memStore) Insert(_ context.Context, m *model.Movie) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.rows[m.ID] = *m
	return m.ID, nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &m, nil
}

func (s *memStore) Replace(_ context.Context, id int64, m *model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrMovieNotFound
	}
	cp := *m
	cp.ID = id
	s.rows[id] = cp
	return nil
}

func (s *memStore) Delete(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	delete(s.rows, id)
	if s.ledger != nil {
		s.ledger.dropMovie(id)
	}
	return 1, nil
}

func (s *memStore) ListAll(_ context.Context) ([]model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Movie, 0, len(s.rows))
	for id := int64(1); id <= s.nextID; id++ {
		if m, ok := s.rows[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) ListByOwner(_ context.Context, email string) ([]model.Movie, error) {
	all, _ := s.ListAll(context.Background())
	out := make([]model.Movie, 0)
	for _, m := range all {
		if m.AddedBy == email {
			out = append(out, m)
		}
	}
	return out, nil
}

// memLedger is an in-memory WatchlistLedger with the atomic conditional
// insert contract.
type memLedger struct {
	mu    sync.Mutex
	pairs map[string]map[int64]bool
}

func newMemLedger() *memLedger {
	return &memLedger{pairs: make(map[string]map[int64]bool)}
}

func (l *memLedger) Add(_ context.Context, email string, movieID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pairs[email] == nil {
		l.pairs[email] = make(map[int64]bool)
	}
	if l.pairs[email][movieID] {
		return repository.ErrAlreadyInWatchlist
	}
	l.pairs[email][movieID] = true
	return nil
}

func (l *memLedger) Remove(_ context.Context, email string, movieID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pairs[email] == nil || !l.pairs[email][movieID] {
		return 0, nil
	}
	delete(l.pairs[email], movieID)
	return 1, nil
}

func (l *memLedger) ListFor(_ context.Context, email string) ([]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int64, 0)
	for id := range l.pairs[email] {
		out = append(out, id)
	}
	return out, nil
}

func (l *memLedger) IsMember(_ context.Context, email string, movieID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pairs[email] != nil && l.pairs[email][movieID], nil
}

func (l *memLedger) dropMovie(movieID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, set := range l.pairs {
		delete(set, movieID)
	}
}

func newTestService() (*Service, *memStore, *memLedger) {
	ledger := newMemLedger()
	store := newMemStore(ledger)
	return NewService(store, ledger), store, ledger
}

func input(title string) model.MovieInput {
	return model.MovieInput{
		Title:       title,
		Genre:       "Sci-Fi",
		ReleaseYear: 2010,
		Rating:      8.8,
		Duration:    148,
		PosterURL:   "https://example.com/poster.jpg",
	}
}

func TestAddMovieStampsOwner(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	id, err := svc.AddMovie(ctx, "Alice@Example.COM", input("Inception"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	m, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", m.AddedBy, "owner email is normalized")
}

func TestAddMovieRejectsMissingIdentity(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddMovie(context.Background(), "  ", input("Inception"))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "identity", verr.Field)
}

func TestAddMovieRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService()

	in := input("Inception")
	in.Rating = 42
	_, err := svc.AddMovie(context.Background(), "alice@example.com", in)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rating", verr.Field)
}

func TestUpdateMovieOwnership(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	id, err := svc.AddMovie(ctx, "alice@example.com", input("Inception"))
	require.NoError(t, err)

	// Non-owner is forbidden, and the record is untouched.
	in := input("Hijacked")
	err = svc.UpdateMovie(ctx, "mallory@example.com", id, in)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	m, _ := store.GetByID(ctx, id)
	assert.Equal(t, "Inception", m.Title)

	// Owner may replace; id and owner stay fixed.
	in = input("Inception (Director's Cut)")
	in.Rating = 9.0
	require.NoError(t, svc.UpdateMovie(ctx, "alice@example.com", id, in))
	m, _ = store.GetByID(ctx, id)
	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, "alice@example.com", m.AddedBy)
	assert.Equal(t, "Inception (Director's Cut)", m.Title)
	assert.Equal(t, 9.0, m.Rating)
}

func TestUpdateMovieNotFoundBeforeForbidden(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.UpdateMovie(context.Background(), "anyone@example.com", 99, input("Ghost"))
	assert.ErrorIs(t, err, repository.ErrMovieNotFound)
}

func TestDeleteMovieCascadesWatchlists(t *testing.T) {
	svc, _, ledger := newTestService()
	ctx := context.Background()

	id, err := svc.AddMovie(ctx, "alice@example.com", input("Inception"))
	require.NoError(t, err)
	require.NoError(t, svc.AddToWatchlist(ctx, "bob@example.com", id))

	// Only the owner can delete.
	_, err = svc.DeleteMovie(ctx, "bob@example.com", id)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	count, err := svc.DeleteMovie(ctx, "alice@example.com", id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Bob's watchlist entry went with the movie.
	member, err := ledger.IsMember(ctx, "bob@example.com", id)
	require.NoError(t, err)
	assert.False(t, member)

	movies, err := svc.ListWatchlist(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestWatchlistAddConflictOnSecondInsert(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	id, err := svc.AddMovie(ctx, "alice@example.com", input("Inception"))
	require.NoError(t, err)

	require.NoError(t, svc.AddToWatchlist(ctx, "bob@example.com", id))
	err = svc.AddToWatchlist(ctx, "bob@example.com", id)
	assert.ErrorIs(t, err, repository.ErrAlreadyInWatchlist)
}

func TestWatchlistConcurrentAddsSingleWinner(t *testing.T) {
	svc, _, ledger := newTestService()
	ctx := context.Background()

	id, err := svc.AddMovie(ctx, "alice@example.com", input("Inception"))
	require.NoError(t, err)

	// Racing adds for the same pair: exactly one may observe the created
	// outcome, every other must see the conflict.
	const racers = 16
	results := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ledger.Add(ctx, "bob@example.com", id)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, res := range results {
		switch {
		case res == nil:
			created++
		case errors.Is(res, repository.ErrAlreadyInWatchlist):
		default:
			t.Fatalf("unexpected add error: %v", res)
		}
	}
	assert.Equal(t, 1, created)

	member, err := ledger.IsMember(ctx, "bob@example.com", id)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestWatchlistAddRequiresExistingMovie(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.AddToWatchlist(context.Background(), "bob@example.com", 404)
	assert.ErrorIs(t, err, repository.ErrMovieNotFound)
}

func TestWatchlistRemoveIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	id, err := svc.AddMovie(ctx, "alice@example.com", input("Inception"))
	require.NoError(t, err)
	require.NoError(t, svc.AddToWatchlist(ctx, "bob@example.com", id))

	count, err := svc.RemoveFromWatchlist(ctx, "bob@example.com", id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.RemoveFromWatchlist(ctx, "bob@example.com", id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "removing an absent pair succeeds with zero")
}

func TestWatchlistsAreIndependentPerUser(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	id, err := svc.AddMovie(ctx, "alice@example.com", input("Inception"))
	require.NoError(t, err)

	require.NoError(t, svc.AddToWatchlist(ctx, "bob@example.com", id))
	require.NoError(t, svc.AddToWatchlist(ctx, "carol@example.com", id))

	_, err = svc.RemoveFromWatchlist(ctx, "bob@example.com", id)
	require.NoError(t, err)

	member, err := svc.InWatchlist(ctx, "carol@example.com", id)
	require.NoError(t, err)
	assert.True(t, member, "carol's entry survives bob's removal")
}

func TestListMoviesAppliesFilter(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddMovie(ctx, "alice@example.com", input("Inception"))
	require.NoError(t, err)
	in := input("The Godfather")
	in.Genre = "Crime"
	in.Rating = 9.2
	_, err = svc.AddMovie(ctx, "alice@example.com", in)
	require.NoError(t, err)

	q := model.DefaultFilterQuery()
	q.Genres = []string{"crime"}
	movies, err := svc.ListMovies(ctx, q)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "The Godfather", movies[0].Title)
}

func TestMoviesByOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddMovie(ctx, "alice@example.com", input("Inception"))
	require.NoError(t, err)
	_, err = svc.AddMovie(ctx, "bob@example.com", input("Tenet"))
	require.NoError(t, err)

	movies, err := svc.MoviesByOwner(ctx, "Alice@Example.com")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Inception", movies[0].Title)
}
