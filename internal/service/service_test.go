package service

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventra/event-ticketing/internal/model"
	"github.com/eventra/event-ticketing/internal/notify"
	"github.com/eventra/event-ticketing/internal/repository"
)

// recordingDispatcher captures dispatched notifications for assertions.
type recordingDispatcher struct {
	mu    sync.Mutex
	notes []notify.Notification
}

func (d *recordingDispatcher) Dispatch(n notify.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = append(d.notes, n)
}

func (d *recordingDispatcher) kinds() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.notes))
	for i, n := range d.notes {
		out[i] = n.Kind
	}
	return out
}

type fixture struct {
	store      *repository.Memory
	dispatcher *recordingDispatcher
	auth       *AuthService
	events     *EventService
	bookings   *BookingService
}

func newFixture() *fixture {
	store := repository.NewMemory()
	dispatcher := &recordingDispatcher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		store:      store,
		dispatcher: dispatcher,
		auth:       NewAuthService(store.Accounts(), store.Tokens(), "test-secret", 15, 30, 4),
		events:     NewEventService(store.Events(), dispatcher),
		bookings:   NewBookingService(store.Events(), store.Bookings(), dispatcher, logger),
	}
}

func (f *fixture) organizer() uuid.UUID {
	id := uuid.New()
	_ = f.store.Accounts().Create(nil, &model.Account{
		ID: id, Name: "Org", Email: id.String() + "@example.com",
		Role: model.RoleOrganizer,
	})
	return id
}

func (f *fixture) customer() uuid.UUID {
	id := uuid.New()
	_ = f.store.Accounts().Create(nil, &model.Account{
		ID: id, Name: "Cust", Email: id.String() + "@example.com",
		Role: model.RoleCustomer,
	})
	return id
}

func sampleEvent(total int, price float64) EventInput {
	return EventInput{
		Title:        "Go Conference",
		Description:  "Two days of talks",
		Date:         time.Now().UTC().Add(30 * 24 * time.Hour),
		Location:     "Berlin",
		Category:     "conference",
		TotalTickets: total,
		TicketPrice:  price,
	}
}
