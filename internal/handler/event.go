package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eventra/event-ticketing/internal/apperr"
	"github.com/eventra/event-ticketing/internal/middleware"
	"github.com/eventra/event-ticketing/internal/service"
)

// EventHandler serves the public browse endpoints and the organizer-only
// event mutations.
type EventHandler struct {
	events *service.EventService
	logger *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

type eventReq struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date" validate:"required"`
	Location     string    `json:"location" validate:"required"`
	Category     string    `json:"category"`
	TotalTickets int       `json:"total_tickets" validate:"required,min=1"`
	TicketPrice  float64   `json:"ticket_price" validate:"gte=0"`
}

func (r eventReq) input() service.EventInput {
	return service.EventInput{
		Title:        r.Title,
		Description:  r.Description,
		Date:         r.Date,
		Location:     r.Location,
		Category:     r.Category,
		TotalTickets: r.TotalTickets,
		TicketPrice:  r.TicketPrice,
	}
}

// List handles GET /events.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.events.List(c.Request().Context(),
		c.QueryParam("status"), c.QueryParam("category"))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return fail(c, h.logger, err)
	}
	event, err := h.events.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, event)
}

// Create handles POST /events. The event starts in draft.
func (h *EventHandler) Create(c echo.Context) error {
	organizerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req eventReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	event, err := h.events.Create(c.Request().Context(), organizerID, req.input())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, event)
}

// Update handles PUT /events/:id.
func (h *EventHandler) Update(c echo.Context) error {
	organizerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := eventID(c)
	if err != nil {
		return fail(c, h.logger, err)
	}
	var req eventReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	event, err := h.events.Update(c.Request().Context(), organizerID, id, req.input())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, event)
}

// Delete handles DELETE /events/:id.
func (h *EventHandler) Delete(c echo.Context) error {
	organizerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := eventID(c)
	if err != nil {
		return fail(c, h.logger, err)
	}
	if err := h.events.Delete(c.Request().Context(), organizerID, id); err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}

// Publish handles POST /events/:id/publish.
func (h *EventHandler) Publish(c echo.Context) error {
	organizerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := eventID(c)
	if err != nil {
		return fail(c, h.logger, err)
	}
	event, err := h.events.Publish(c.Request().Context(), organizerID, id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, event)
}

// eventID parses the :id path parameter. A malformed ID can never name an
// existing event, so it reports not-found rather than a validation error.
func eventID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound("event")
	}
	return id, nil
}
