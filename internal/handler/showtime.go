package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/cinematrix/cinematrix/internal/service"
)

// ShowtimeHandler exposes the schedule over HTTP.
type ShowtimeHandler struct {
	schedule *service.ScheduleService
	validate *validator.Validate
}

// NewShowtimeHandler constructs a ShowtimeHandler. The schedule service
// must be non-nil.
func NewShowtimeHandler(schedule *service.ScheduleService, validate *validator.Validate) *ShowtimeHandler {
	if schedule == nil {
		panic("nil service passed to NewShowtimeHandler")
	}
	return &ShowtimeHandler{schedule: schedule, validate: validate}
}

type createShowtimeRequest struct {
	Date string `json:"date" validate:"required"`
	Time string `json:"time" validate:"required"`
}

// CreateShowtime handles POST /v1/movies/:id/showtimes. Date and time
// format rules are enforced by the schedule service, which answers with
// its coded errors.
func (h *ShowtimeHandler) CreateShowtime(c echo.Context) error {
	var req createShowtimeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed: " + err.Error()})
	}
	id, err := h.schedule.AddShowtime(c.Request().Context(), c.Param("id"), req.Date, req.Time)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListShowtimes handles GET /v1/showtimes?date=YYYY-MM-DD. Each
// showtime is returned with its movie.
func (h *ShowtimeHandler) ListShowtimes(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter is required"})
	}
	showtimes, err := h.schedule.ListShowtimesByDate(c.Request().Context(), date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, showtimes)
}

// ListReservedSeats handles GET /v1/showtimes/:id/seats. It returns the
// sorted reserved seat numbers; an unknown or deleted showtime yields
// an empty list.
func (h *ShowtimeHandler) ListReservedSeats(c echo.Context) error {
	seats, err := h.schedule.ListReservedSeatNumbers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}
