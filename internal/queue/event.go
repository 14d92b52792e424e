// Package queue defines the message payloads exchanged over the broker
// plus the publisher and background consumer for them.
package queue

// ReservationCreatedEvent is published after a reservation commits. It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type ReservationCreatedEvent struct {
	ReservationID  string   `json:"reservation_id"`
	UserID         string   `json:"user_id"`
	ShowtimeID     string   `json:"showtime_id"`
	Seats          []string `json:"seats"`
	TotalCostCents int      `json:"total_cost_cents"`
	CreatedAt      string   `json:"created_at"`
}
