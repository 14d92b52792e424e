package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/cinematrix/cinematrix/internal/model"
)

// ReservationRepo manages persistence for reservations and their seats.
// A reservation and its reserved_seats rows are always written together
// inside one transaction; the reserved_seats table carries
// UNIQUE KEY (showtime_id, seat_number), which is the storage-level
// backstop against double-booking a seat.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// UserReservation is one row of a user's booking history: the
// reservation joined with its showtime slot and movie title.
type UserReservation struct {
	ID         string
	Cost       int
	CreatedAt  time.Time
	Date       string
	Time       string
	MovieTitle string
}

// IsDuplicateSeat reports whether err is the MySQL duplicate-entry
// error (1062) raised by the unique key on (showtime_id, seat_number).
// A racing insert that slipped past the in-transaction read check
// surfaces here instead of silently double-booking.
func IsDuplicateSeat(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// IsDeadlock reports whether err is the MySQL deadlock error (1213).
// Two transactions booking a fresh showtime lock the same empty index
// range with compatible gap locks; when both then insert, InnoDB rolls
// one back with 1213. The victim's transaction is already rolled back
// and is safe to retry.
func IsDeadlock(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1213
}

// SeatNumbersForShowtime returns every reserved seat number for the
// showtime, in no particular order. Callers normalize and sort.
func (r *ReservationRepo) SeatNumbersForShowtime(ctx context.Context, showtimeID string) ([]string, error) {
	const q = `SELECT seat_number FROM reserved_seats WHERE showtime_id = ?`
	return r.scanSeatNumbers(r.db.QueryContext(ctx, q, showtimeID))
}

// SeatNumbersForShowtimeTx reads the showtime's reserved seat numbers
// inside the transaction with FOR UPDATE, locking the index range so
// concurrent bookings for the same showtime serialize on it.
func (r *ReservationRepo) SeatNumbersForShowtimeTx(ctx context.Context, tx *sql.Tx, showtimeID string) ([]string, error) {
	const q = `SELECT seat_number FROM reserved_seats WHERE showtime_id = ? FOR UPDATE`
	return r.scanSeatNumbers(tx.QueryContext(ctx, q, showtimeID))
}

func (r *ReservationRepo) scanSeatNumbers(rows *sql.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// AnySeatForShowtimesTx reports whether at least one reserved seat
// exists for any of the given showtimes. An empty id list yields false
// without touching the database.
func (r *ReservationRepo) AnySeatForShowtimesTx(ctx context.Context, tx *sql.Tx, showtimeIDs []string) (bool, error) {
	if len(showtimeIDs) == 0 {
		return false, nil
	}
	placeholders := make([]string, 0, len(showtimeIDs))
	args := make([]interface{}, 0, len(showtimeIDs))
	for _, id := range showtimeIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT EXISTS(SELECT 1 FROM reserved_seats WHERE showtime_id IN (` +
		strings.Join(placeholders, ",") + `))`
	var exists bool
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateTx inserts the reservation row within the caller's transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (id, user_id, showtime_id, cost, created_at)
	           VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, res.ID, res.UserID, res.ShowtimeID, res.Cost, res.CreatedAt)
	return err
}

// CreateSeatsBulkTx inserts all reserved_seats rows in a single
// statement within the caller's transaction. Passing an empty slice has
// no effect and returns nil.
func (r *ReservationRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []model.ReservedSeat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO reserved_seats (id, showtime_id, reservation_id, seat_number, created_at) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, s.ID, s.ShowtimeID, s.ReservationID, s.SeatNumber, s.CreatedAt)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListByUser returns the user's reservations joined with showtime and
// movie, newest first. When the user has none, an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]UserReservation, error) {
	const q = `SELECT r.id, r.cost, r.created_at, st.show_date, st.show_time, m.title
	           FROM reservations r
	           JOIN showtimes st ON st.id = r.showtime_id
	           JOIN movies m ON m.id = st.movie_id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reservations := make([]UserReservation, 0)
	for rows.Next() {
		var ur UserReservation
		if err := rows.Scan(&ur.ID, &ur.Cost, &ur.CreatedAt, &ur.Date, &ur.Time, &ur.MovieTitle); err != nil {
			return nil, err
		}
		reservations = append(reservations, ur)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

// SeatNumbersByReservationIDs batch-loads seat numbers for the given
// reservations in a single IN query and groups them by reservation id.
// Reservations without seats simply have no entry in the result map.
func (r *ReservationRepo) SeatNumbersByReservationIDs(ctx context.Context, ids []string) (map[string][]string, error) {
	grouped := make(map[string][]string)
	if len(ids) == 0 {
		return grouped, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT reservation_id, seat_number FROM reserved_seats
	      WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY reservation_id, seat_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var resID, seat string
		if err := rows.Scan(&resID, &seat); err != nil {
			return nil, err
		}
		grouped[resID] = append(grouped[resID], seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grouped, nil
}
