// Package repository defines the persistence interfaces consumed by the
// service layer together with their MongoDB and in-memory implementations.
// Sentinel errors let services distinguish failure scenarios without
// depending on driver details.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eventra/event-ticketing/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an account signup reuses an email.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateReference is returned when a booking reference collides.
var ErrDuplicateReference = errors.New("booking reference already exists")

// ErrUnavailable is returned by Reserve when the conditional decrement
// matched nothing: the event is missing, not published, or short on
// tickets. Callers re-read the event to report the exact reason.
var ErrUnavailable = errors.New("tickets unavailable")

// ErrAlreadyCancelled is returned by Cancel for a cancelled booking.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrTokenInvalid is returned for unknown, expired or revoked refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")

// EventFilter narrows event listings. Zero values mean "no constraint".
type EventFilter struct {
	Status   model.EventStatus
	Category string
}

// AccountRepo persists accounts.
type AccountRepo interface {
	Create(ctx context.Context, a *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Account, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
}

// EventRepo persists events and owns the inventory counter transitions.
// Reserve and Release are the per-event serialization points: both are
// single conditional atomic updates, so concurrent bookings can never pass
// an availability check against a stale count.
type EventRepo interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Event, error)
	List(ctx context.Context, f EventFilter) ([]model.Event, error)
	// Update replaces mutable metadata and applies capacityDelta to both
	// total and available tickets, failing with ErrUnavailable if the
	// delta would drive availableTickets negative.
	Update(ctx context.Context, e *model.Event, capacityDelta int) (model.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) (model.Event, error)
	// Reserve atomically decrements availableTickets by qty iff the event
	// is published and has at least qty tickets left.
	Reserve(ctx context.Context, id uuid.UUID, qty int) (model.Event, error)
	// Release restores qty tickets, capped at totalTickets.
	Release(ctx context.Context, id uuid.UUID, qty int) error
}

// BookingRepo persists bookings. Bookings are never deleted; Cancel is the
// only mutation and is conditional on the booking not being cancelled yet,
// so exactly one of two concurrent cancels wins and restores inventory.
type BookingRepo interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Booking, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Booking, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (model.Booking, error)
}

// TokenRepo persists refresh token hashes.
type TokenRepo interface {
	Store(ctx context.Context, t model.RefreshToken) error
	// Validate returns the owning account for a live token hash.
	Validate(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Revoke(ctx context.Context, tokenHash string) error
}

// now returns the current UTC time; all stored timestamps are UTC.
func now() time.Time { return time.Now().UTC() }
