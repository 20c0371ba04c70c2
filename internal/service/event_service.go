package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eventra/event-ticketing/internal/apperr"
	"github.com/eventra/event-ticketing/internal/model"
	"github.com/eventra/event-ticketing/internal/notify"
	"github.com/eventra/event-ticketing/internal/repository"
)

// EventService handles event CRUD and publication for organizers plus the
// public browse surface. All mutations verify ownership: a foreign
// organizer gets 403 for an event that exists, 404 only when it does not.
type EventService struct {
	events     repository.EventRepo
	dispatcher notify.Dispatcher
}

// NewEventService constructs an EventService.
func NewEventService(events repository.EventRepo, dispatcher notify.Dispatcher) *EventService {
	return &EventService{events: events, dispatcher: dispatcher}
}

// EventInput is the validated create/update payload.
type EventInput struct {
	Title        string
	Description  string
	Date         time.Time
	Location     string
	Category     string
	TotalTickets int
	TicketPrice  float64
}

// Create stores a new draft event with the full inventory available.
func (s *EventService) Create(ctx context.Context, organizerID uuid.UUID, in EventInput) (model.Event, error) {
	event := model.Event{
		ID:               uuid.New(),
		OrganizerID:      organizerID,
		Title:            in.Title,
		Description:      in.Description,
		Date:             in.Date,
		Location:         in.Location,
		Category:         in.Category,
		TotalTickets:     in.TotalTickets,
		AvailableTickets: in.TotalTickets,
		TicketPrice:      in.TicketPrice,
		Status:           model.EventDraft,
	}
	if err := s.events.Create(ctx, &event); err != nil {
		return model.Event{}, apperr.Internal(err)
	}
	return event, nil
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, id uuid.UUID) (model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Event{}, apperr.NotFound("event")
		}
		return model.Event{}, apperr.Internal(err)
	}
	return event, nil
}

// List returns the public event listing. Without a status filter only
// published events are returned; draft events are never exposed here.
func (s *EventService) List(ctx context.Context, status, category string) ([]model.Event, error) {
	st := model.EventPublished
	if status != "" {
		st = model.EventStatus(status)
		if !st.Valid() {
			return nil, apperr.Validation("status", "unknown status filter")
		}
		if st == model.EventDraft {
			return nil, apperr.Validation("status", "draft events are not publicly listable")
		}
	}
	events, err := s.events.List(ctx, repository.EventFilter{Status: st, Category: category})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return events, nil
}

// Update modifies an owned event's metadata. A change to totalTickets
// shifts availableTickets by the same delta; the store rejects a shrink
// below the count already booked.
func (s *EventService) Update(ctx context.Context, organizerID, eventID uuid.UUID, in EventInput) (model.Event, error) {
	current, err := s.owned(ctx, organizerID, eventID)
	if err != nil {
		return model.Event{}, err
	}
	delta := in.TotalTickets - current.TotalTickets
	updated := current
	updated.Title = in.Title
	updated.Description = in.Description
	updated.Date = in.Date
	updated.Location = in.Location
	updated.Category = in.Category
	updated.TicketPrice = in.TicketPrice
	result, err := s.events.Update(ctx, &updated, delta)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return model.Event{}, apperr.NotFound("event")
		case errors.Is(err, repository.ErrUnavailable):
			return model.Event{}, apperr.Validation("total_tickets", "cannot reduce capacity below tickets already booked")
		default:
			return model.Event{}, apperr.Internal(err)
		}
	}
	s.dispatcher.Dispatch(eventUpdated(result, "updated"))
	return result, nil
}

// Delete removes an owned event. Bookings referencing it are retained.
func (s *EventService) Delete(ctx context.Context, organizerID, eventID uuid.UUID) error {
	if _, err := s.owned(ctx, organizerID, eventID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("event")
		}
		return apperr.Internal(err)
	}
	return nil
}

// Publish makes an owned event bookable. Publishing is idempotent for an
// already-published event; a cancelled event cannot be re-published.
func (s *EventService) Publish(ctx context.Context, organizerID, eventID uuid.UUID) (model.Event, error) {
	current, err := s.owned(ctx, organizerID, eventID)
	if err != nil {
		return model.Event{}, err
	}
	if current.Status == model.EventCancelled {
		return model.Event{}, apperr.Conflict("event is cancelled", 400)
	}
	if current.Status == model.EventPublished {
		return current, nil
	}
	updated, err := s.events.SetStatus(ctx, eventID, model.EventPublished)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Event{}, apperr.NotFound("event")
		}
		return model.Event{}, apperr.Internal(err)
	}
	s.dispatcher.Dispatch(eventUpdated(updated, "published"))
	return updated, nil
}

// owned loads an event and enforces ownership: 404 when absent, 403 when
// owned by someone else.
func (s *EventService) owned(ctx context.Context, organizerID, eventID uuid.UUID) (model.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Event{}, apperr.NotFound("event")
		}
		return model.Event{}, apperr.Internal(err)
	}
	if event.OrganizerID != organizerID {
		return model.Event{}, apperr.Forbidden("event belongs to another organizer")
	}
	return event, nil
}

func eventUpdated(e model.Event, change string) notify.Notification {
	return notify.Notification{
		Kind: notify.KindEventUpdated,
		EventUpdated: &notify.EventUpdated{
			EventID:    e.ID.String(),
			EventTitle: e.Title,
			Status:     string(e.Status),
			Change:     change,
		},
	}
}
