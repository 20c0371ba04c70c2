package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eventra/event-ticketing/internal/apperr"
	"github.com/eventra/event-ticketing/internal/middleware"
	"github.com/eventra/event-ticketing/internal/model"
	"github.com/eventra/event-ticketing/internal/service"
)

// BookingHandler serves the customer booking flow and the organizer's
// per-event booking listing.
type BookingHandler struct {
	bookings *service.BookingService
	logger   *slog.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

type bookReq struct {
	EventID  string `json:"event_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// Book handles POST /bookings.
func (h *BookingHandler) Book(c echo.Context) error {
	customerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req bookReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return fail(c, h.logger, apperr.Validation("event_id", "must be a valid id"))
	}
	booking, err := h.bookings.Book(c.Request().Context(), customerID, eventID, req.Quantity)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// ListOwn handles GET /bookings.
func (h *BookingHandler) ListOwn(c echo.Context) error {
	customerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	bookings, err := h.bookings.ListForCustomer(c.Request().Context(), customerID)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// Get handles GET /bookings/:id. Visible to the booking's customer and to
// the organizer of its event.
func (h *BookingHandler) Get(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	role, _ := middleware.RoleOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := bookingID(c)
	if err != nil {
		return fail(c, h.logger, err)
	}
	viewer := model.Account{ID: accountID, Role: role}
	booking, err := h.bookings.GetForViewer(c.Request().Context(), viewer, id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Cancel handles PUT /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	customerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := bookingID(c)
	if err != nil {
		return fail(c, h.logger, err)
	}
	booking, err := h.bookings.Cancel(c.Request().Context(), customerID, id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ListForEvent handles GET /bookings/event/:eventId/bookings.
func (h *BookingHandler) ListForEvent(c echo.Context) error {
	organizerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		return fail(c, h.logger, apperr.NotFound("event"))
	}
	bookings, err := h.bookings.ListForEvent(c.Request().Context(), organizerID, eventID)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

func bookingID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound("booking")
	}
	return id, nil
}
