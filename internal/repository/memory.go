package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/eventra/event-ticketing/internal/model"
)

// Memory is an in-process implementation of all repository interfaces. It
// honors the same contracts as the Mongo store — unique email and booking
// reference, and atomic conditional inventory transitions — with a mutex
// standing in for Mongo's per-document atomicity. It backs the test suite.
type Memory struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]model.Account
	events   map[uuid.UUID]model.Event
	bookings map[uuid.UUID]model.Booking
	tokens   map[string]model.RefreshToken
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[uuid.UUID]model.Account),
		events:   make(map[uuid.UUID]model.Event),
		bookings: make(map[uuid.UUID]model.Booking),
		tokens:   make(map[string]model.RefreshToken),
	}
}

// Accounts returns the in-memory account repository.
func (m *Memory) Accounts() AccountRepo { return &memAccountRepo{m} }

// Events returns the in-memory event repository.
func (m *Memory) Events() EventRepo { return &memEventRepo{m} }

// Bookings returns the in-memory booking repository.
func (m *Memory) Bookings() BookingRepo { return &memBookingRepo{m} }

// Tokens returns the in-memory refresh-token repository.
func (m *Memory) Tokens() TokenRepo { return &memTokenRepo{m} }

// ----- AccountRepo -----

type memAccountRepo struct{ m *Memory }

func (r *memAccountRepo) Create(ctx context.Context, a *model.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	for _, existing := range r.m.accounts {
		if existing.Email == a.Email {
			return ErrEmailExists
		}
	}
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt
	r.m.accounts[a.ID] = *a
	return nil
}

func (r *memAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.accounts[id]
	if !ok {
		return model.Account{}, ErrNotFound
	}
	return a, nil
}

func (r *memAccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range r.m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return model.Account{}, ErrNotFound
}

// ----- EventRepo -----

type memEventRepo struct{ m *Memory }

func (r *memEventRepo) Create(ctx context.Context, e *model.Event) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt
	r.m.events[e.ID] = *e
	return nil
}

func (r *memEventRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.events[id]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return e, nil
}

func (r *memEventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	events := []model.Event{}
	for _, e := range r.m.events {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

func (r *memEventRepo) Update(ctx context.Context, e *model.Event, capacityDelta int) (model.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.events[e.ID]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	if stored.AvailableTickets+capacityDelta < 0 {
		return model.Event{}, ErrUnavailable
	}
	stored.Title = e.Title
	stored.Description = e.Description
	stored.Date = e.Date
	stored.Location = e.Location
	stored.Category = e.Category
	stored.TicketPrice = e.TicketPrice
	stored.TotalTickets += capacityDelta
	stored.AvailableTickets += capacityDelta
	stored.UpdatedAt = now()
	r.m.events[e.ID] = stored
	return stored, nil
}

func (r *memEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.events[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.events, id)
	return nil
}

func (r *memEventRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) (model.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.events[id]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = now()
	r.m.events[id] = e
	return e, nil
}

func (r *memEventRepo) Reserve(ctx context.Context, id uuid.UUID, qty int) (model.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.events[id]
	if !ok || e.Status != model.EventPublished || e.AvailableTickets < qty {
		return model.Event{}, ErrUnavailable
	}
	e.AvailableTickets -= qty
	e.UpdatedAt = now()
	r.m.events[id] = e
	return e, nil
}

func (r *memEventRepo) Release(ctx context.Context, id uuid.UUID, qty int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.events[id]
	if !ok {
		return ErrNotFound
	}
	e.AvailableTickets += qty
	if e.AvailableTickets > e.TotalTickets {
		e.AvailableTickets = e.TotalTickets
	}
	e.UpdatedAt = now()
	r.m.events[id] = e
	return nil
}

// ----- BookingRepo -----

type memBookingRepo struct{ m *Memory }

func (r *memBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.bookings {
		if existing.Reference == b.Reference {
			return ErrDuplicateReference
		}
	}
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt
	r.m.bookings[b.ID] = *b
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return b, nil
}

func (r *memBookingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	bookings := []model.Booking{}
	for _, b := range r.m.bookings {
		if b.CustomerID == customerID {
			bookings = append(bookings, b)
		}
	}
	sortBookings(bookings)
	return bookings, nil
}

func (r *memBookingRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	bookings := []model.Booking{}
	for _, b := range r.m.bookings {
		if b.EventID == eventID {
			bookings = append(bookings, b)
		}
	}
	sortBookings(bookings)
	return bookings, nil
}

func (r *memBookingRepo) Cancel(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	if b.Status == model.BookingCancelled {
		return model.Booking{}, ErrAlreadyCancelled
	}
	b.Status = model.BookingCancelled
	b.UpdatedAt = now()
	r.m.bookings[id] = b
	return b, nil
}

// ----- TokenRepo -----

type memTokenRepo struct{ m *Memory }

func (r *memTokenRepo) Store(ctx context.Context, t model.RefreshToken) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t.CreatedAt = now()
	r.m.tokens[t.TokenHash] = t
	return nil
}

func (r *memTokenRepo) Validate(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tokens[tokenHash]
	if !ok || t.RevokedAt != nil || now().After(t.ExpiresAt) {
		return uuid.Nil, ErrTokenInvalid
	}
	return t.AccountID, nil
}

func (r *memTokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if t, ok := r.m.tokens[tokenHash]; ok && t.RevokedAt == nil {
		ts := now()
		t.RevokedAt = &ts
		r.m.tokens[tokenHash] = t
	}
	return nil
}

func sortBookings(bookings []model.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}
