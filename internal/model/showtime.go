package model

import "time"

// Showtime is a scheduled screening of a movie. Date and Time are kept
// as the formatted strings they were validated against ("YYYY-MM-DD" and
// 24h "HH:MM"); lookups compare them as plain strings. (movie, date, time)
// is unique among live showtimes. A showtime is soft-deleted only as part
// of its movie's cascade delete.
type Showtime struct {
	ID        string    `json:"id"`         // showtimes.id (UUID string)
	MovieID   string    `json:"movie_id"`   // showtimes.movie_id
	Date      string    `json:"date"`       // showtimes.show_date
	Time      string    `json:"time"`       // showtimes.show_time
	IsDeleted bool      `json:"-"`          // showtimes.is_deleted
	CreatedAt time.Time `json:"created_at"` // showtimes.created_at

	// Movie is populated by queries that join the movies table
	// (date-indexed listing and instant lookup). Nil elsewhere.
	Movie *Movie `json:"movie,omitempty"`
}
