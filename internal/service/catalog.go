// Package service implements the business core: the movie catalog, the
// showtime schedule, the seat reservation engine and the reservation
// query views. Services validate input, map missing rows onto coded
// errors and own every transaction boundary; repositories stay free of
// business rules.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cinematrix/cinematrix/internal/apperr"
	"github.com/cinematrix/cinematrix/internal/model"
	"github.com/cinematrix/cinematrix/internal/repository"
)

// CatalogService manages the movie catalog, including the cascade
// soft-delete of a movie together with its showtimes.
type CatalogService struct {
	db           *sql.DB
	movies       *repository.MovieRepo
	showtimes    *repository.ShowtimeRepo
	reservations *repository.ReservationRepo
	now          func() time.Time
}

// NewCatalogService constructs a CatalogService. All dependencies must
// be non-nil.
func NewCatalogService(movies *repository.MovieRepo, showtimes *repository.ShowtimeRepo, reservations *repository.ReservationRepo) *CatalogService {
	if movies == nil || showtimes == nil || reservations == nil {
		panic("nil repository passed to NewCatalogService")
	}
	return &CatalogService{
		db:           movies.DB(),
		movies:       movies,
		showtimes:    showtimes,
		reservations: reservations,
		now:          time.Now,
	}
}

// AddMovie validates the fields, rejects a title already carried by a
// live movie (case-insensitive) and persists the new entry. It returns
// the generated movie id.
func (s *CatalogService) AddMovie(ctx context.Context, title, description, imageURL string) (string, error) {
	if blank(title) {
		return "", apperr.BadRequest(apperr.CodeMovieTitleInvalid)
	}
	if blank(description) {
		return "", apperr.BadRequest(apperr.CodeMovieDescriptionInvalid)
	}
	if blank(imageURL) {
		return "", apperr.BadRequest(apperr.CodeMovieImageURLInvalid)
	}
	taken, err := s.movies.ExistsActiveTitle(ctx, title)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperr.BadRequest(apperr.CodeMovieTitleTaken)
	}
	movie := &model.Movie{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		CreatedAt:   s.now(),
	}
	if err := s.movies.Insert(ctx, movie); err != nil {
		return "", err
	}
	return movie.ID, nil
}

// ListActiveMovies returns all live movies ordered by title ascending.
func (s *CatalogService) ListActiveMovies(ctx context.Context) ([]model.Movie, error) {
	return s.movies.ListActive(ctx)
}

// FindMovie returns the movie with the given id whether or not it has
// been soft-deleted. Reservation views may reference movies that were
// removed from the catalog after booking.
func (s *CatalogService) FindMovie(ctx context.Context, movieID string) (*model.Movie, error) {
	movie, err := s.movies.GetByID(ctx, movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeMovieMissing)
	}
	if err != nil {
		return nil, err
	}
	return movie, nil
}

// DeleteMovieCascade soft-deletes a movie and all of its live showtimes
// as one atomic update. The delete is refused while any showtime of the
// movie has a reserved seat. The movie row is locked for the duration
// of the transaction so concurrent deletes of the same movie serialize.
func (s *CatalogService) DeleteMovieCascade(ctx context.Context, movieID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := s.movies.LockActiveTx(ctx, tx, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.BadRequest(apperr.CodeMovieNotFound)
		}
		return err
	}
	showtimeIDs, err := s.showtimes.ListActiveIDsByMovieTx(ctx, tx, movieID)
	if err != nil {
		return err
	}
	reserved, err := s.reservations.AnySeatForShowtimesTx(ctx, tx, showtimeIDs)
	if err != nil {
		return err
	}
	if reserved {
		return apperr.BadRequest(apperr.CodeMovieHasReservations)
	}
	if err := s.movies.MarkDeletedTx(ctx, tx, movieID); err != nil {
		return err
	}
	if err := s.showtimes.MarkDeletedByMovieTx(ctx, tx, movieID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
