package service

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/eventra/event-ticketing/internal/apperr"
	"github.com/eventra/event-ticketing/internal/model"
	"github.com/eventra/event-ticketing/internal/notify"
	"github.com/eventra/event-ticketing/internal/repository"
	"github.com/eventra/event-ticketing/internal/utils"
)

// BookingService implements the ticket-inventory booking and cancellation
// flow. The consistency contract lives in the event repository's Reserve
// and Release: both are single conditional atomic updates, so concurrent
// bookings against the same event can never oversell and availableTickets
// stays within [0, totalTickets] under any interleaving.
type BookingService struct {
	events     repository.EventRepo
	bookings   repository.BookingRepo
	dispatcher notify.Dispatcher
	logger     *slog.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(events repository.EventRepo, bookings repository.BookingRepo, dispatcher notify.Dispatcher, logger *slog.Logger) *BookingService {
	return &BookingService{events: events, bookings: bookings, dispatcher: dispatcher, logger: logger}
}

// Book reserves qty tickets on a published event and records a confirmed
// booking at the event's current unit price. On failure the caller learns
// the exact reason: unpublished event, or insufficient inventory with the
// remaining count.
func (s *BookingService) Book(ctx context.Context, customerID, eventID uuid.UUID, qty int) (model.Booking, error) {
	if qty < 1 {
		return model.Booking{}, apperr.Validation("quantity", "quantity must be at least 1")
	}
	event, err := s.events.Reserve(ctx, eventID, qty)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return model.Booking{}, s.reserveFailure(ctx, eventID)
		}
		return model.Booking{}, apperr.Internal(err)
	}

	booking := model.Booking{
		ID:         uuid.New(),
		CustomerID: customerID,
		EventID:    eventID,
		Quantity:   qty,
		TotalPrice: math.Round(float64(qty)*event.TicketPrice*100) / 100,
		Status:     model.BookingConfirmed,
	}
	if err := s.createWithReference(ctx, &booking); err != nil {
		// Reservation succeeded but the booking record did not; give the
		// tickets back before failing the request.
		if relErr := s.events.Release(ctx, eventID, qty); relErr != nil {
			s.logger.Error("failed to release tickets after booking insert failure",
				"event_id", eventID, "quantity", qty, "error", relErr)
		}
		return model.Booking{}, apperr.Internal(err)
	}

	s.dispatcher.Dispatch(notify.Notification{
		Kind: notify.KindBookingConfirmed,
		BookingConfirmed: &notify.BookingConfirmed{
			BookingID:  booking.ID.String(),
			Reference:  booking.Reference,
			CustomerID: customerID.String(),
			EventID:    eventID.String(),
			EventTitle: event.Title,
			Quantity:   qty,
			TotalPrice: booking.TotalPrice,
		},
	})
	return booking, nil
}

// reserveFailure re-reads the event to turn a failed conditional reserve
// into the precise client-visible error. The re-read only shapes the error
// message; the reserve itself is the serialization point.
func (s *BookingService) reserveFailure(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("event")
		}
		return apperr.Internal(err)
	}
	if event.Status != model.EventPublished {
		return apperr.Validation("event_id", "event not published")
	}
	return apperr.Capacity(event.AvailableTickets)
}

// createWithReference inserts the booking, regenerating the reference once
// if the store reports a collision.
func (s *BookingService) createWithReference(ctx context.Context, b *model.Booking) error {
	for attempt := 0; attempt < 2; attempt++ {
		ref, err := utils.NewBookingReference()
		if err != nil {
			return err
		}
		b.Reference = ref
		err = s.bookings.Create(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateReference) {
			return err
		}
	}
	return repository.ErrDuplicateReference
}

// Cancel transitions an owned booking to cancelled and restores its
// quantity to the event. The conditional cancel ensures the restore
// happens exactly once even under concurrent cancel attempts.
func (s *BookingService) Cancel(ctx context.Context, customerID, bookingID uuid.UUID) (model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Booking{}, apperr.NotFound("booking")
		}
		return model.Booking{}, apperr.Internal(err)
	}
	if booking.CustomerID != customerID {
		return model.Booking{}, apperr.Forbidden("booking belongs to another customer")
	}
	cancelled, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return model.Booking{}, apperr.Conflict("booking already cancelled", 400)
		case errors.Is(err, repository.ErrNotFound):
			return model.Booking{}, apperr.NotFound("booking")
		default:
			return model.Booking{}, apperr.Internal(err)
		}
	}
	if err := s.events.Release(ctx, booking.EventID, booking.Quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Event was deleted after the booking; nothing to restore.
			s.logger.Warn("cancelled booking references deleted event",
				"booking_id", bookingID, "event_id", booking.EventID)
		} else {
			return model.Booking{}, apperr.Internal(err)
		}
	}
	return cancelled, nil
}

// ListForCustomer returns the caller's own bookings.
func (s *BookingService) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Booking, error) {
	bookings, err := s.bookings.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return bookings, nil
}

// ListForEvent returns all bookings on an event the caller organizes.
func (s *BookingService) ListForEvent(ctx context.Context, organizerID, eventID uuid.UUID) ([]model.Booking, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("event")
		}
		return nil, apperr.Internal(err)
	}
	if event.OrganizerID != organizerID {
		return nil, apperr.Forbidden("event belongs to another organizer")
	}
	bookings, err := s.bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return bookings, nil
}

// GetForViewer returns a booking visible to the caller: its customer, or
// the organizer of its event. Anyone else gets 403, matching the ownership
// rule that existing-but-foreign resources are forbidden, not hidden.
func (s *BookingService) GetForViewer(ctx context.Context, viewer model.Account, bookingID uuid.UUID) (model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Booking{}, apperr.NotFound("booking")
		}
		return model.Booking{}, apperr.Internal(err)
	}
	if booking.CustomerID == viewer.ID {
		return booking, nil
	}
	if viewer.Role == model.RoleOrganizer {
		event, err := s.events.GetByID(ctx, booking.EventID)
		if err == nil && event.OrganizerID == viewer.ID {
			return booking, nil
		}
	}
	return model.Booking{}, apperr.Forbidden("not a participant in this booking")
}
