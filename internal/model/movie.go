package model

import "time"

// Movie is a catalog entry. Movies are never removed from the database;
// deletion flips IsDeleted so that historical reservations keep a valid
// reference to the title they were booked for.
type Movie struct {
	ID          string    `json:"id"`          // movies.id (UUID string)
	Title       string    `json:"title"`       // movies.title, unique among live movies (case-insensitive)
	Description string    `json:"description"` // movies.description
	ImageURL    string    `json:"image_url"`   // movies.image_url
	IsDeleted   bool      `json:"-"`           // movies.is_deleted soft-delete flag
	CreatedAt   time.Time `json:"created_at"`  // movies.created_at
}
