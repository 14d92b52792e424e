package repository

import (
	"context"
	"database/sql"

	"github.com/cinematrix/cinematrix/internal/model"
)

// ShowtimeRepo manages persistence for showtimes. Date and time columns
// hold the formatted strings the service validated ("YYYY-MM-DD",
// "HH:MM") and are compared as plain strings.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// Insert persists a new showtime. The caller supplies the ID and CreatedAt.
func (r *ShowtimeRepo) Insert(ctx context.Context, st *model.Showtime) error {
	const q = `INSERT INTO showtimes (id, movie_id, show_date, show_time, is_deleted, created_at)
	           VALUES (?, ?, ?, ?, 0, ?)`
	_, err := r.db.ExecContext(ctx, q, st.ID, st.MovieID, st.Date, st.Time, st.CreatedAt)
	return err
}

// Exists reports whether any showtime, deleted or not, occupies the
// (movie, date, time) slot. Deleted rows still block the slot so a
// recreated movie cannot silently shadow an old schedule entry.
func (r *ShowtimeRepo) Exists(ctx context.Context, movieID, date, timeOfDay string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM showtimes WHERE movie_id = ? AND show_date = ? AND show_time = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, movieID, date, timeOfDay).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsActive reports whether a live showtime with the id exists.
func (r *ShowtimeRepo) ExistsActive(ctx context.Context, id string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM showtimes WHERE id = ? AND is_deleted = 0)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetByMovieAndSlot returns the showtime for a live movie matching the
// exact date and time strings, with the movie populated. Returns
// sql.ErrNoRows when there is no match.
func (r *ShowtimeRepo) GetByMovieAndSlot(ctx context.Context, movieID, date, timeOfDay string) (*model.Showtime, error) {
	const q = `SELECT st.id, st.movie_id, st.show_date, st.show_time, st.is_deleted, st.created_at,
	                  m.id, m.title, m.description, m.image_url, m.is_deleted, m.created_at
	           FROM showtimes st
	           JOIN movies m ON m.id = st.movie_id
	           WHERE st.movie_id = ? AND st.show_date = ? AND st.show_time = ? AND m.is_deleted = 0`
	var st model.Showtime
	var m model.Movie
	err := r.db.QueryRowContext(ctx, q, movieID, date, timeOfDay).Scan(
		&st.ID, &st.MovieID, &st.Date, &st.Time, &st.IsDeleted, &st.CreatedAt,
		&m.ID, &m.Title, &m.Description, &m.ImageURL, &m.IsDeleted, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	st.Movie = &m
	return &st, nil
}

// ListByDate returns all showtimes on the given date whose movie is
// live, each with its movie populated, ordered by time of day.
func (r *ShowtimeRepo) ListByDate(ctx context.Context, date string) ([]model.Showtime, error) {
	const q = `SELECT st.id, st.movie_id, st.show_date, st.show_time, st.is_deleted, st.created_at,
	                  m.id, m.title, m.description, m.image_url, m.is_deleted, m.created_at
	           FROM showtimes st
	           JOIN movies m ON m.id = st.movie_id
	           WHERE st.show_date = ? AND m.is_deleted = 0
	           ORDER BY st.show_time ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	showtimes := make([]model.Showtime, 0)
	for rows.Next() {
		var st model.Showtime
		var m model.Movie
		if err := rows.Scan(
			&st.ID, &st.MovieID, &st.Date, &st.Time, &st.IsDeleted, &st.CreatedAt,
			&m.ID, &m.Title, &m.Description, &m.ImageURL, &m.IsDeleted, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		st.Movie = &m
		showtimes = append(showtimes, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return showtimes, nil
}

// ListActiveIDsByMovieTx returns the ids of the movie's live showtimes
// inside the transaction, locking them against concurrent bookings
// while a cascade delete decides whether it is safe to proceed.
func (r *ShowtimeRepo) ListActiveIDsByMovieTx(ctx context.Context, tx *sql.Tx, movieID string) ([]string, error) {
	const q = `SELECT id FROM showtimes WHERE movie_id = ? AND is_deleted = 0 FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// MarkDeletedByMovieTx flips the soft-delete flag on all of the movie's
// live showtimes within the caller's transaction.
func (r *ShowtimeRepo) MarkDeletedByMovieTx(ctx context.Context, tx *sql.Tx, movieID string) error {
	const q = `UPDATE showtimes SET is_deleted = 1 WHERE movie_id = ? AND is_deleted = 0`
	_, err := tx.ExecContext(ctx, q, movieID)
	return err
}
