package handler

import (
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/cinematrix/cinematrix/internal/repository"
	"github.com/cinematrix/cinematrix/internal/service"
)

func newReservationHandler(t *testing.T) (*ReservationHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	reservations := service.NewReservationService(db,
		repository.NewShowtimeRepo(db),
		repository.NewReservationRepo(db),
	)
	return NewReservationHandler(reservations), mock
}

func TestCreateReservationUnauthenticated(t *testing.T) {
	h, _ := newReservationHandler(t)
	c, rec := newContext(http.MethodPost, "/v1/showtimes/st-1/reservations",
		`{"seats":["A1"]}`)
	c.SetParamNames("id")
	c.SetParamValues("st-1")

	if err := h.CreateReservation(c); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCreateReservationConflictCode(t *testing.T) {
	h, mock := newReservationHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM showtimes WHERE id = ? AND is_deleted = 0`)).
		WithArgs("st-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT seat_number FROM reserved_seats WHERE showtime_id = ? FOR UPDATE`)).
		WithArgs("st-1").
		WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow("A1"))
	mock.ExpectRollback()

	c, rec := newContext(http.MethodPost, "/v1/showtimes/st-1/reservations",
		`{"seats":["a1"]}`)
	c.SetParamNames("id")
	c.SetParamValues("st-1")
	c.Set("user_id", "user-1")

	if err := h.CreateReservation(c); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error_code":40012`) {
		t.Errorf("body missing error_code: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListMyReservationsUnauthenticated(t *testing.T) {
	h, _ := newReservationHandler(t)
	c, rec := newContext(http.MethodGet, "/v1/me/reservations", "")

	if err := h.ListMyReservations(c); err != nil {
		t.Fatalf("ListMyReservations: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestListMyReservationsEmpty(t *testing.T) {
	h, mock := newReservationHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE r.user_id = ?`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "cost", "created_at", "show_date", "show_time", "title"}))

	c, rec := newContext(http.MethodGet, "/v1/me/reservations", "")
	c.Set("user_id", "user-1")

	if err := h.ListMyReservations(c); err != nil {
		t.Fatalf("ListMyReservations: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected an empty array, got %s", rec.Body.String())
	}
}
