package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/cinematrix/cinematrix/internal/apperr"
	"github.com/cinematrix/cinematrix/internal/model"
	"github.com/cinematrix/cinematrix/internal/repository"
)

// TicketPriceCents is the flat price of one seat in minor currency units.
const TicketPriceCents = 2700

// bookingAttempts bounds the retries after a storage deadlock. Gap
// locks on an empty reserved_seats range are compatible between two
// transactions, so truly simultaneous bookings of a fresh showtime can
// deadlock on insert even when their seats do not overlap; InnoDB rolls
// one back with error 1213 and the retry settles it.
const bookingAttempts = 3

// Booking describes a committed reservation: the generated id, the
// seats actually booked, the total cost and the shared write timestamp.
type Booking struct {
	ReservationID string
	Seats         []string
	Cost          int
	CreatedAt     time.Time
}

// ReservationService is the seat reservation engine and the query side
// for a user's active reservations.
type ReservationService struct {
	db           *sql.DB
	showtimes    *repository.ShowtimeRepo
	reservations *repository.ReservationRepo
	now          func() time.Time
}

// NewReservationService constructs a ReservationService. All
// dependencies must be non-nil.
func NewReservationService(db *sql.DB, showtimes *repository.ShowtimeRepo, reservations *repository.ReservationRepo) *ReservationService {
	if db == nil || showtimes == nil || reservations == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		db:           db,
		showtimes:    showtimes,
		reservations: reservations,
		now:          time.Now,
	}
}

// MakeReservation books seats on a showtime for a user and returns the
// committed booking.
//
// Seat labels are uppercased and anything not matching the seat pattern
// is dropped; the emptiness check runs against the raw input, so a
// non-empty request made up entirely of malformed labels books zero
// seats at zero cost.
//
// The conflict check and the inserts run in one transaction: the
// showtime's reserved seats are read FOR UPDATE, and the unique key on
// (showtime_id, seat_number) turns any insert that still races past the
// check into a seats-already-reserved rejection instead of a double
// booking. A transaction InnoDB kills as a deadlock victim is retried;
// the retry either succeeds (non-overlapping seats) or observes the
// winner's rows and rejects. Nothing is written when the reservation
// fails.
func (s *ReservationService) MakeReservation(ctx context.Context, showtimeID string, seats []string, userID string) (*Booking, error) {
	alive, err := s.showtimes.ExistsActive(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if !alive {
		return nil, apperr.BadRequest(apperr.CodeShowtimeNotFound)
	}
	sanitized := sanitizeSeats(seats)
	if len(seats) == 0 {
		return nil, apperr.BadRequest(apperr.CodeSeatsInvalid)
	}
	cost := len(sanitized) * TicketPriceCents

	var booking *Booking
	for attempt := 0; attempt < bookingAttempts; attempt++ {
		booking, err = s.reserveOnce(ctx, showtimeID, sanitized, userID, cost)
		if !repository.IsDeadlock(err) {
			break
		}
	}
	return booking, err
}

func (s *ReservationService) reserveOnce(ctx context.Context, showtimeID string, sanitized []string, userID string, cost int) (*Booking, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	reserved, err := s.reservations.SeatNumbersForShowtimeTx(ctx, tx, showtimeID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(reserved))
	for _, seat := range reserved {
		taken[seat] = struct{}{}
	}
	for _, seat := range sanitized {
		if _, ok := taken[seat]; ok {
			return nil, apperr.BadRequest(apperr.CodeSeatsAlreadyReserved)
		}
	}

	createdAt := s.now()
	reservation := &model.Reservation{
		ID:         uuid.NewString(),
		UserID:     userID,
		ShowtimeID: showtimeID,
		Cost:       cost,
		CreatedAt:  createdAt,
	}
	if err := s.reservations.CreateTx(ctx, tx, reservation); err != nil {
		return nil, err
	}
	seatRows := make([]model.ReservedSeat, 0, len(sanitized))
	for _, seat := range sanitized {
		seatRows = append(seatRows, model.ReservedSeat{
			ID:            uuid.NewString(),
			ShowtimeID:    showtimeID,
			ReservationID: reservation.ID,
			SeatNumber:    seat,
			CreatedAt:     createdAt,
		})
	}
	if err := s.reservations.CreateSeatsBulkTx(ctx, tx, seatRows); err != nil {
		if repository.IsDuplicateSeat(err) {
			return nil, apperr.BadRequest(apperr.CodeSeatsAlreadyReserved)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &Booking{
		ReservationID: reservation.ID,
		Seats:         sanitized,
		Cost:          cost,
		CreatedAt:     createdAt,
	}, nil
}

// GetUserActiveReservations returns the user's reservations whose
// showtime date is today or later, newest first. The comparison is
// date-only; a showtime that already started earlier today still
// counts as active. Seat numbers are batch-loaded in one query and
// default to an empty list when none are found.
func (s *ReservationService) GetUserActiveReservations(ctx context.Context, userID string) ([]model.ReservationView, error) {
	reservations, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// ISO dates compare correctly as strings.
	today := s.now().Format(showtimeDateLayout)
	active := make([]repository.UserReservation, 0, len(reservations))
	ids := make([]string, 0, len(reservations))
	for _, r := range reservations {
		if r.Date >= today {
			active = append(active, r)
			ids = append(ids, r.ID)
		}
	}
	seatsByReservation, err := s.reservations.SeatNumbersByReservationIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]model.ReservationView, 0, len(active))
	for _, r := range active {
		seats, ok := seatsByReservation[r.ID]
		if !ok {
			seats = []string{}
		}
		views = append(views, model.ReservationView{
			ReservationID: r.ID,
			MovieTitle:    r.MovieTitle,
			Date:          r.Date,
			Time:          r.Time,
			TotalCost:     r.Cost,
			Seats:         seats,
		})
	}
	return views, nil
}
