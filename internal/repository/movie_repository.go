// Package repository contains the raw-SQL data access layer. Each repo
// wraps a *sql.DB; methods with a Tx suffix run against a caller-owned
// transaction and never commit or roll back themselves. Missing rows
// surface as sql.ErrNoRows so the service layer can map them onto its
// coded errors.
package repository

import (
	"context"
	"database/sql"

	"github.com/cinematrix/cinematrix/internal/model"
)

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories.
func (r *MovieRepo) DB() *sql.DB { return r.db }

// Insert persists a new movie. The caller supplies the ID and CreatedAt.
func (r *MovieRepo) Insert(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (id, title, description, image_url, is_deleted, created_at)
	           VALUES (?, ?, ?, ?, 0, ?)`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.Title, m.Description, m.ImageURL, m.CreatedAt)
	return err
}

// GetByID fetches a movie by id regardless of its deletion flag, so
// views that reference older movies still resolve. Returns
// sql.ErrNoRows when no row exists at all.
func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	const q = `SELECT id, title, description, image_url, is_deleted, created_at
	           FROM movies WHERE id = ?`
	var m model.Movie
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Title, &m.Description, &m.ImageURL, &m.IsDeleted, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ExistsActive reports whether a live (non-deleted) movie with the id exists.
func (r *MovieRepo) ExistsActive(ctx context.Context, id string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM movies WHERE id = ? AND is_deleted = 0)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsActiveTitle reports whether a live movie already carries the
// title. The comparison is case-insensitive.
func (r *MovieRepo) ExistsActiveTitle(ctx context.Context, title string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM movies WHERE LOWER(title) = LOWER(?) AND is_deleted = 0)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, title).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListActive returns all live movies ordered by title ascending.
func (r *MovieRepo) ListActive(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, description, image_url, is_deleted, created_at
	           FROM movies WHERE is_deleted = 0 ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.ImageURL, &m.IsDeleted, &m.CreatedAt); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// LockActiveTx loads a live movie inside the transaction and locks its
// row, serializing concurrent cascade deletes of the same movie.
// Returns sql.ErrNoRows when the movie is missing or already deleted.
func (r *MovieRepo) LockActiveTx(ctx context.Context, tx *sql.Tx, id string) (*model.Movie, error) {
	const q = `SELECT id, title, description, image_url, is_deleted, created_at
	           FROM movies WHERE id = ? AND is_deleted = 0 FOR UPDATE`
	var m model.Movie
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Title, &m.Description, &m.ImageURL, &m.IsDeleted, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkDeletedTx flips the soft-delete flag on a movie within the
// caller's transaction.
func (r *MovieRepo) MarkDeletedTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `UPDATE movies SET is_deleted = 1 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
