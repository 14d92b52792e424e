package model

import "time"

// Reservation is a user's booking against a showtime. It is immutable
// once written; there is no update or cancellation path. Cost is the
// total in minor currency units for all seats booked together.
type Reservation struct {
	ID         string    `json:"id"`          // reservations.id (UUID string)
	UserID     string    `json:"user_id"`     // reservations.user_id (opaque identity subject)
	ShowtimeID string    `json:"showtime_id"` // reservations.showtime_id
	Cost       int       `json:"cost"`        // reservations.cost in minor units
	CreatedAt  time.Time `json:"created_at"`  // reservations.created_at
}

// ReservedSeat pins one normalized seat label (e.g. "A1", "B12") to a
// reservation. Rows are only ever written together with their parent
// reservation and share its CreatedAt. The database enforces
// UNIQUE (showtime_id, seat_number) so a seat can be booked at most once
// per showtime.
type ReservedSeat struct {
	ID            string    `json:"id"`             // reserved_seats.id (UUID string)
	ShowtimeID    string    `json:"showtime_id"`    // reserved_seats.showtime_id
	ReservationID string    `json:"reservation_id"` // reserved_seats.reservation_id
	SeatNumber    string    `json:"seat_number"`    // reserved_seats.seat_number, uppercase
	CreatedAt     time.Time `json:"created_at"`     // reserved_seats.created_at
}

// ReservationView is the user-facing shape for an active reservation,
// joining the reservation with its showtime and movie.
type ReservationView struct {
	ReservationID string   `json:"reservation_id"`
	MovieTitle    string   `json:"movie_title"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	TotalCost     int      `json:"total_cost"`
	Seats         []string `json:"seats"`
}
