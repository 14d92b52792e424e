package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinematrix/cinematrix/internal/queue"
	"github.com/cinematrix/cinematrix/internal/service"
)

// ReservationHandler exposes seat booking and the user's reservation
// listing over HTTP.
type ReservationHandler struct {
	reservations *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler. The
// reservation service must be non-nil.
func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	if reservations == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{reservations: reservations}
}

type createReservationRequest struct {
	Seats []string `json:"seats"`
}

// CreateReservation handles POST /v1/showtimes/:id/reservations. On
// success it publishes a reservation.created event; publish failures
// are logged and ignored because the booking already committed.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	showtimeID := c.Param("id")
	ctx := c.Request().Context()
	booking, err := h.reservations.MakeReservation(ctx, showtimeID, req.Seats, uid)
	if err != nil {
		return respondError(c, err)
	}

	_ = queue.PublishReservationCreated(ctx, queue.ReservationCreatedEvent{
		ReservationID:  booking.ReservationID,
		UserID:         uid,
		ShowtimeID:     showtimeID,
		Seats:          booking.Seats,
		TotalCostCents: booking.Cost,
		CreatedAt:      booking.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"id": booking.ReservationID})
}

// ListMyReservations handles GET /v1/me/reservations. It returns the
// caller's reservations whose showtime date is today or later.
func (h *ReservationHandler) ListMyReservations(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	views, err := h.reservations.GetUserActiveReservations(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}
