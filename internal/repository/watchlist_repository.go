// This file implements the watchlist ledger on MySQL. Membership is a fact
// per (user_email, movie_id) pair with no payload of its own. The composite
// primary key makes Add an atomic conditional insert: two concurrent adds
// for the same pair cannot both succeed, which closes the classic
// check-then-insert race without any application-level locking.
package repository

import (
	"context"
	"database/sql"
)

// WatchlistRepo encapsulates all database queries for watchlist membership.
type WatchlistRepo struct {
	db *sql.DB
}

// NewWatchlistRepo constructs a WatchlistRepo with the provided DB handle.
func NewWatchlistRepo(db *sql.DB) *WatchlistRepo {
	return &WatchlistRepo{db: db}
}

// Add records membership for the pair. INSERT IGNORE relies on the primary
// key, so an already-present pair affects zero rows and is reported as
// ErrAlreadyInWatchlist rather than duplicated or silently accepted.
func (r *WatchlistRepo) Add(ctx context.Context, email string, movieID int64) error {
	const q = "INSERT IGNORE INTO watchlist (user_email, movie_id) VALUES (?, ?)"
	res, err := r.db.ExecContext(ctx, q, email, movieID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyInWatchlist
	}
	return nil
}

// Remove deletes the pair and returns the number of rows removed (0 or 1).
// Removing an absent pair is not an error; the zero count tells the caller.
func (r *WatchlistRepo) Remove(ctx context.Context, email string, movieID int64) (int64, error) {
	const q = "DELETE FROM watchlist WHERE user_email = ? AND movie_id = ?"
	res, err := r.db.ExecContext(ctx, q, email, movieID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListFor returns the movie ids on a user's watchlist in the order they
// were added. Ids pointing at deleted movies may still appear here; the
// catalog service drops them during materialization.
func (r *WatchlistRepo) ListFor(ctx context.Context, email string) ([]int64, error) {
	const q = "SELECT movie_id FROM watchlist WHERE user_email = ? ORDER BY created_at, movie_id"
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// IsMember reports whether the pair is currently on the watchlist.
func (r *WatchlistRepo) IsMember(ctx context.Context, email string, movieID int64) (bool, error) {
	const q = "SELECT 1 FROM watchlist WHERE user_email = ? AND movie_id = ? LIMIT 1"
	var one int
	err := r.db.QueryRowContext(ctx, q, email, movieID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
