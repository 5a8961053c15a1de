// This file implements the movie store on MySQL. Identifiers are
// AUTO_INCREMENT and therefore never reused after deletion, so a deleted
// movie's id can never resolve to an unrelated later record. Replace never
// creates; Delete cascades the watchlist rows referencing the movie inside
// a single transaction.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moviemaster/catalog/internal/model"
)

const movieColumns = "id, title, genre, release_year, rating, duration, director, `cast`, plot_summary, poster_url, language, country, added_by, created_at"

// MovieRepo encapsulates all database queries for movie records. It depends
// on a sql.DB connection configured at startup.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Insert stores a new movie and returns its generated id. CreatedAt is
// populated from the inserted row so callers receive a full record.
func (r *MovieRepo) Insert(ctx context.Context, m *model.Movie) (int64, error) {
	const q = "INSERT INTO movies (title, genre, release_year, rating, duration, director, `cast`, plot_summary, poster_url, language, country, added_by) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q,
		m.Title, m.Genre, m.ReleaseYear, m.Rating, m.Duration,
		m.Director, m.Cast, m.PlotSummary, m.PosterURL,
		m.Language, m.Country, m.AddedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	m.ID = id

	// Follow-up SELECT to populate the DB-assigned creation timestamp.
	const qSelect = "SELECT created_at FROM movies WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, qSelect, id).Scan(&m.CreatedAt); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID fetches a movie by id. It returns ErrMovieNotFound when no row
// exists.
func (r *MovieRepo) GetByID(ctx context.Context, id int64) (*model.Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies WHERE id = ?"
	var m model.Movie
	if err := scanMovie(r.db.QueryRowContext(ctx, q, id), &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Replace overwrites every client-suppliable field of an existing movie.
// The id, added_by and created_at columns are not part of the statement and
// therefore survive the replace. ErrMovieNotFound is reported when the id
// does not exist; Replace never creates.
func (r *MovieRepo) Replace(ctx context.Context, id int64, m *model.Movie) error {
	const q = "UPDATE movies SET title=?, genre=?, release_year=?, rating=?, duration=?, director=?, `cast`=?, plot_summary=?, poster_url=?, language=?, country=?, updated_at=CURRENT_TIMESTAMP WHERE id=?"
	res, err := r.db.ExecContext(ctx, q,
		m.Title, m.Genre, m.ReleaseYear, m.Rating, m.Duration,
		m.Director, m.Cast, m.PlotSummary, m.PosterURL,
		m.Language, m.Country, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also 0 when the update is a no-op on an existing
		// row, so confirm absence before reporting not found.
		var exists int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM movies WHERE id = ?", id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a movie and all watchlist rows referencing it within one
// transaction, returning the number of movie rows removed (0 or 1). The
// cascade guarantees no ledger entry survives to resurrect a deleted movie.
func (r *MovieRepo) Delete(ctx context.Context, id int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM watchlist WHERE movie_id = ?", id); err != nil {
		return 0, err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ListAll returns every movie in insertion order.
func (r *MovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies ORDER BY id"
	return r.queryMovies(ctx, q)
}

// ListByOwner returns the movies created by the given identity, in
// insertion order.
func (r *MovieRepo) ListByOwner(ctx context.Context, email string) ([]model.Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies WHERE added_by = ? ORDER BY id"
	return r.queryMovies(ctx, q, email)
}

func (r *MovieRepo) queryMovies(ctx context.Context, q string, args ...any) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Movie
	for rows.Next() {
		var m model.Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner, m *model.Movie) error {
	return row.Scan(
		&m.ID, &m.Title, &m.Genre, &m.ReleaseYear, &m.Rating, &m.Duration,
		&m.Director, &m.Cast, &m.PlotSummary, &m.PosterURL,
		&m.Language, &m.Country, &m.AddedBy, &m.CreatedAt)
}
