package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cinematrix/cinematrix/internal/apperr"
	"github.com/cinematrix/cinematrix/internal/model"
	"github.com/cinematrix/cinematrix/internal/repository"
)

const (
	showtimeDateLayout = "2006-01-02"
	showtimeTimeLayout = "15:04"
)

// ScheduleService manages showtimes for catalog movies and exposes the
// reserved-seat listing used to render a seat picker.
type ScheduleService struct {
	movies       *repository.MovieRepo
	showtimes    *repository.ShowtimeRepo
	reservations *repository.ReservationRepo
	now          func() time.Time
}

// NewScheduleService constructs a ScheduleService. All dependencies
// must be non-nil.
func NewScheduleService(movies *repository.MovieRepo, showtimes *repository.ShowtimeRepo, reservations *repository.ReservationRepo) *ScheduleService {
	if movies == nil || showtimes == nil || reservations == nil {
		panic("nil repository passed to NewScheduleService")
	}
	return &ScheduleService{
		movies:       movies,
		showtimes:    showtimes,
		reservations: reservations,
		now:          time.Now,
	}
}

// AddShowtime creates a showtime for a live movie. The date must be
// formatted YYYY-MM-DD and the time 24h HH:MM. A (movie, date, time)
// slot can only ever be used once, even by a deleted showtime.
func (s *ScheduleService) AddShowtime(ctx context.Context, movieID, date, timeOfDay string) (string, error) {
	alive, err := s.movies.ExistsActive(ctx, movieID)
	if err != nil {
		return "", err
	}
	if !alive {
		return "", apperr.BadRequest(apperr.CodeMovieNotFound)
	}
	if !validShowtimeDate(date) {
		return "", apperr.BadRequest(apperr.CodeShowtimeDateInvalid)
	}
	if !validShowtimeTime(timeOfDay) {
		return "", apperr.BadRequest(apperr.CodeShowtimeTimeInvalid)
	}
	exists, err := s.showtimes.Exists(ctx, movieID, date, timeOfDay)
	if err != nil {
		return "", err
	}
	if exists {
		return "", apperr.BadRequest(apperr.CodeShowtimeExists)
	}
	showtime := &model.Showtime{
		ID:        uuid.NewString(),
		MovieID:   movieID,
		Date:      date,
		Time:      timeOfDay,
		CreatedAt: s.now(),
	}
	if err := s.showtimes.Insert(ctx, showtime); err != nil {
		return "", err
	}
	return showtime.ID, nil
}

// FindShowtimeAt formats the instant into the stored date and time
// strings and returns the live-movie showtime scheduled exactly then.
func (s *ScheduleService) FindShowtimeAt(ctx context.Context, movieID string, at time.Time) (*model.Showtime, error) {
	date := at.Format(showtimeDateLayout)
	timeOfDay := at.Format(showtimeTimeLayout)
	showtime, err := s.showtimes.GetByMovieAndSlot(ctx, movieID, date, timeOfDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(apperr.CodeShowtimeMissing)
	}
	if err != nil {
		return nil, err
	}
	return showtime, nil
}

// ListShowtimesByDate returns all showtimes on the date whose movie is
// live, each paired with its movie.
func (s *ScheduleService) ListShowtimesByDate(ctx context.Context, date string) ([]model.Showtime, error) {
	return s.showtimes.ListByDate(ctx, date)
}

// ListReservedSeatNumbers returns the normalized seat numbers reserved
// for the showtime, sorted lexicographically. A missing or deleted
// showtime yields an empty list rather than an error; the listing
// feeds a display surface where absence is not a failure.
func (s *ScheduleService) ListReservedSeatNumbers(ctx context.Context, showtimeID string) ([]string, error) {
	alive, err := s.showtimes.ExistsActive(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if !alive {
		return []string{}, nil
	}
	seats, err := s.reservations.SeatNumbersForShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	for i, seat := range seats {
		seats[i] = strings.ToUpper(seat)
	}
	sort.Strings(seats)
	return seats, nil
}
