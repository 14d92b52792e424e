package service

import (
	"context"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/cinematrix/cinematrix/internal/apperr"
	"github.com/cinematrix/cinematrix/internal/repository"
)

func newReservationService(t *testing.T) (*ReservationService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	svc := NewReservationService(db,
		repository.NewShowtimeRepo(db),
		repository.NewReservationRepo(db),
	)
	svc.now = func() time.Time { return testNow }
	return svc, mock
}

func expectShowtimeAlive(mock sqlmock.Sqlmock, showtimeID string, alive bool) {
	mock.ExpectQuery(regexp.QuoteMeta(`FROM showtimes WHERE id = ? AND is_deleted = 0`)).
		WithArgs(showtimeID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(alive))
}

func expectSeatsLocked(mock sqlmock.Sqlmock, showtimeID string, seats ...string) {
	rows := sqlmock.NewRows([]string{"seat_number"})
	for _, s := range seats {
		rows.AddRow(s)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT seat_number FROM reserved_seats WHERE showtime_id = ? FOR UPDATE`)).
		WithArgs(showtimeID).
		WillReturnRows(rows)
}

func TestMakeReservationBooksAndPrices(t *testing.T) {
	svc, mock := newReservationService(t)
	expectShowtimeAlive(mock, "st-1", true)
	mock.ExpectBegin()
	expectSeatsLocked(mock, "st-1", "C3")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(sqlmock.AnyArg(), "user-1", "st-1", 2*TicketPriceCents, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reserved_seats`)).
		WithArgs(sqlmock.AnyArg(), "st-1", sqlmock.AnyArg(), "A1", testNow,
			sqlmock.AnyArg(), "st-1", sqlmock.AnyArg(), "B2", testNow).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	booking, err := svc.MakeReservation(context.Background(), "st-1", []string{"a1", "b2"}, "user-1")
	if err != nil {
		t.Fatalf("MakeReservation: %v", err)
	}
	if booking.ReservationID == "" {
		t.Fatal("MakeReservation returned an empty id")
	}
	if booking.Cost != 2*TicketPriceCents {
		t.Errorf("cost = %d, want %d", booking.Cost, 2*TicketPriceCents)
	}
	if !reflect.DeepEqual(booking.Seats, []string{"A1", "B2"}) {
		t.Errorf("seats = %v, want [A1 B2]", booking.Seats)
	}
	if !booking.CreatedAt.Equal(testNow) {
		t.Errorf("created at = %v, want the write timestamp %v", booking.CreatedAt, testNow)
	}
	expectMet(t, mock)
}

func TestMakeReservationShowtimeMissing(t *testing.T) {
	svc, mock := newReservationService(t)
	expectShowtimeAlive(mock, "gone", false)

	_, err := svc.MakeReservation(context.Background(), "gone", []string{"A1"}, "user-1")
	wantCode(t, err, apperr.CodeShowtimeNotFound)
	expectMet(t, mock)
}

func TestMakeReservationEmptySeats(t *testing.T) {
	svc, mock := newReservationService(t)
	expectShowtimeAlive(mock, "st-1", true)

	_, err := svc.MakeReservation(context.Background(), "st-1", nil, "user-1")
	wantCode(t, err, apperr.CodeSeatsInvalid)
	expectMet(t, mock) // no transaction may start
}

// A request whose labels are all malformed is not rejected: the
// emptiness check looks at the raw input, so it books zero seats at
// zero cost.
func TestMakeReservationAllInvalidSeatsBooksNothing(t *testing.T) {
	svc, mock := newReservationService(t)
	expectShowtimeAlive(mock, "st-1", true)
	mock.ExpectBegin()
	expectSeatsLocked(mock, "st-1")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(sqlmock.AnyArg(), "user-1", "st-1", 0, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit() // no reserved_seats insert

	booking, err := svc.MakeReservation(context.Background(), "st-1", []string{"??", "seat one"}, "user-1")
	if err != nil {
		t.Fatalf("MakeReservation: %v", err)
	}
	if booking.ReservationID == "" {
		t.Fatal("MakeReservation returned an empty id")
	}
	if booking.Cost != 0 || len(booking.Seats) != 0 {
		t.Errorf("expected a zero-seat zero-cost booking, got %+v", booking)
	}
	expectMet(t, mock)
}

func TestMakeReservationSeatConflict(t *testing.T) {
	svc, mock := newReservationService(t)
	expectShowtimeAlive(mock, "st-1", true)
	mock.ExpectBegin()
	expectSeatsLocked(mock, "st-1", "A1", "C3")
	mock.ExpectRollback()

	_, err := svc.MakeReservation(context.Background(), "st-1", []string{"a1", "B2"}, "user-1")
	wantCode(t, err, apperr.CodeSeatsAlreadyReserved)
	expectMet(t, mock) // nothing may be inserted
}

func TestMakeReservationLosesInsertRace(t *testing.T) {
	svc, mock := newReservationService(t)
	expectShowtimeAlive(mock, "st-1", true)
	mock.ExpectBegin()
	expectSeatsLocked(mock, "st-1")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(sqlmock.AnyArg(), "user-1", "st-1", TicketPriceCents, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reserved_seats`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := svc.MakeReservation(context.Background(), "st-1", []string{"A1"}, "user-1")
	wantCode(t, err, apperr.CodeSeatsAlreadyReserved)
	expectMet(t, mock)
}

// Two simultaneous first bookings of a showtime hold compatible gap
// locks over the empty seat range, so InnoDB resolves the insert
// standoff by killing one transaction with error 1213. The victim must
// retry and, with non-overlapping seats, succeed.
func TestMakeReservationRetriesAfterDeadlock(t *testing.T) {
	svc, mock := newReservationService(t)
	expectShowtimeAlive(mock, "st-1", true)

	mock.ExpectBegin()
	expectSeatsLocked(mock, "st-1")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(sqlmock.AnyArg(), "user-1", "st-1", TicketPriceCents, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reserved_seats`)).
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	expectSeatsLocked(mock, "st-1", "A1") // the other booking won its seat
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(sqlmock.AnyArg(), "user-1", "st-1", TicketPriceCents, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reserved_seats`)).
		WithArgs(sqlmock.AnyArg(), "st-1", sqlmock.AnyArg(), "B2", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := svc.MakeReservation(context.Background(), "st-1", []string{"B2"}, "user-1")
	if err != nil {
		t.Fatalf("MakeReservation: %v", err)
	}
	if booking.ReservationID == "" {
		t.Fatal("MakeReservation returned an empty id")
	}
	expectMet(t, mock)
}

func TestMakeReservationDeadlockRetrySeesConflict(t *testing.T) {
	svc, mock := newReservationService(t)
	expectShowtimeAlive(mock, "st-1", true)

	mock.ExpectBegin()
	expectSeatsLocked(mock, "st-1")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(sqlmock.AnyArg(), "user-1", "st-1", TicketPriceCents, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reserved_seats`)).
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	// The retry finds the seat already taken by the winner.
	mock.ExpectBegin()
	expectSeatsLocked(mock, "st-1", "C3")
	mock.ExpectRollback()

	_, err := svc.MakeReservation(context.Background(), "st-1", []string{"C3"}, "user-1")
	wantCode(t, err, apperr.CodeSeatsAlreadyReserved)
	expectMet(t, mock)
}

func userReservationColumns() []string {
	return []string{"id", "cost", "created_at", "show_date", "show_time", "title"}
}

func TestGetUserActiveReservationsFiltersPastDates(t *testing.T) {
	svc, mock := newReservationService(t)
	// testNow is 2026-09-01; same-day showtimes still count as active.
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE r.user_id = ?`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(userReservationColumns()).
			AddRow("r-3", 5400, testNow, "2026-10-05", "20:00", "Alien").
			AddRow("r-2", 2700, testNow, "2026-09-01", "09:00", "Dune").
			AddRow("r-1", 2700, testNow, "2026-08-31", "18:30", "Dune"))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE reservation_id IN (?,?)`)).
		WithArgs("r-3", "r-2").
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "seat_number"}).
			AddRow("r-3", "A1").
			AddRow("r-3", "B2"))

	views, err := svc.GetUserActiveReservations(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUserActiveReservations: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 active reservations, got %d: %+v", len(views), views)
	}
	if views[0].ReservationID != "r-3" || !reflect.DeepEqual(views[0].Seats, []string{"A1", "B2"}) {
		t.Errorf("unexpected first view: %+v", views[0])
	}
	if views[1].ReservationID != "r-2" || views[1].MovieTitle != "Dune" {
		t.Errorf("unexpected second view: %+v", views[1])
	}
	// A reservation the seat query did not cover gets an empty list,
	// not nil, so it serializes as [].
	if views[1].Seats == nil || len(views[1].Seats) != 0 {
		t.Errorf("expected empty seat list, got %v", views[1].Seats)
	}
	expectMet(t, mock)
}

func TestGetUserActiveReservationsNone(t *testing.T) {
	svc, mock := newReservationService(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE r.user_id = ?`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(userReservationColumns()))

	views, err := svc.GetUserActiveReservations(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUserActiveReservations: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Errorf("expected an empty slice, got %v", views)
	}
	expectMet(t, mock) // the seat batch query must not run for zero ids
}
