package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/moviemaster/catalog/internal/catalog"
	"github.com/moviemaster/catalog/internal/model"
	"github.com/moviemaster/catalog/internal/repository"
)

// In-memory stand-ins for the MySQL repositories, honoring the same error
// contracts so handler status mapping can be exercised without a database.

type stubStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Movie
	ledger *stubLedger
}

func (s *stubStore) Insert(_ context.Context, m *model.Movie) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.rows[m.ID] = *m
	return m.ID, nil
}

func (s *stubStore) GetByID(_ context.Context, id int64) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &m, nil
}

func (s *stubStore) Replace(_ context.Context, id int64, m *model.Movie) error {
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

func (s *stubStore) Delete(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	delete(s.rows, id)
	s.ledger.dropMovie(id)
	return 1, nil
}

func (s *stubStore) ListAll(_ context.Context) ([]model.Movie, error) {
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

func (s *stubStore) ListByOwner(_ context.Context, email string) ([]model.Movie, error) {
	all, _ := s.ListAll(context.Background())
	out := make([]model.Movie, 0)
	for _, m := range all {
		if m.AddedBy == email {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubLedger struct {
	mu    sync.Mutex
	pairs map[string]map[int64]bool
}

func (l *stubLedger) Add(_ context.Context, email string, movieID int64) error {
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

func (l *stubLedger) Remove(_ context.Context, email string, movieID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pairs[email] == nil || !l.pairs[email][movieID] {
		return 0, nil
	}
	delete(l.pairs[email], movieID)
	return 1, nil
}

func (l *stubLedger) ListFor(_ context.Context, email string) ([]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int64, 0)
	for id := range l.pairs[email] {
		out = append(out, id)
	}
	return out, nil
}

func (l *stubLedger) IsMember(_ context.Context, email string, movieID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pairs[email] != nil && l.pairs[email][movieID], nil
}

func (l *stubLedger) dropMovie(movieID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, set := range l.pairs {
		delete(set, movieID)
	}
}

type fixture struct {
	svc    *catalog.Service
	movies *MovieHandler
	watch  *WatchlistHandler
	echo   *echo.Echo
}

func newFixture() *fixture {
	ledger := &stubLedger{pairs: make(map[string]map[int64]bool)}
	store := &stubStore{rows: make(map[int64]model.Movie), ledger: ledger}
	svc := catalog.NewService(store, ledger)
	return &fixture{
		svc:    svc,
		movies: NewMovieHandler(svc, nil, "test"),
		watch:  NewWatchlistHandler(svc, nil, "test"),
		echo:   echo.New(),
	}
}

// seed inserts a movie owned by the given email and returns its id.
func (f *fixture) seed(t *testing.T, owner, title string) int64 {
	t.Helper()
	id, err := f.svc.AddMovie(context.Background(), owner, model.MovieInput{
		Title:       title,
		Genre:       "Sci-Fi",
		ReleaseYear: 2010,
		Rating:      8.8,
		Duration:    148,
		PosterURL:   "https://example.com/poster.jpg",
	})
	require.NoError(t, err)
	return id
}

type ctxOpt func(echo.Context)

func asUser(email string) ctxOpt {
	return func(c echo.Context) { c.Set("user_email", email) }
}

func withPathParam(name, value string) ctxOpt {
	return func(c echo.Context) {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
}

// doJSON runs a handler against a synthetic request and returns the recorder.
func (f *fixture) doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, opts ...ctxOpt) *httptest.ResponseRecorder {
	t.Helper()
	var req = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	for _, opt := range opts {
		opt(c)
	}
	require.NoError(t, h(c))
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeMovies(t *testing.T, rec *httptest.ResponseRecorder) []model.Movie {
	t.Helper()
	var out []model.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
