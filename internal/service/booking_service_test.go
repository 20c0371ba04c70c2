package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/event-ticketing/internal/apperr"
	"github.com/eventra/event-ticketing/internal/model"
	"github.com/eventra/event-ticketing/internal/notify"
)

func TestBookingLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	customerID := f.customer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(10, 50))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)

	booking, err := f.bookings.Book(ctx, customerID, event.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, booking.Status)
	assert.Equal(t, 3, booking.Quantity)
	assert.Equal(t, 150.0, booking.TotalPrice)
	assert.Regexp(t, `^BKG-[A-Z2-9]{10}$`, booking.Reference)

	got, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.AvailableTickets)
	assert.Equal(t, 10, got.TotalTickets)

	cancelled, err := f.bookings.Cancel(ctx, customerID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)

	got, err = f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.AvailableTickets)

	// The full inventory is bookable in one go.
	_, err = f.bookings.Book(ctx, customerID, event.ID, 10)
	require.NoError(t, err)
	got, err = f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableTickets)

	// One more ticket over capacity fails with the remaining count.
	_, err = f.bookings.Book(ctx, customerID, event.ID, 1)
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindCapacity, ae.Kind)
	assert.Equal(t, 0, ae.Remaining)
}

func TestBookRejectsDraftAndUnknownEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	customerID := f.customer()

	draft, err := f.events.Create(ctx, organizerID, sampleEvent(5, 10))
	require.NoError(t, err)

	_, err = f.bookings.Book(ctx, customerID, draft.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.bookings.Book(ctx, customerID, uuid.New(), 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestBookRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	customerID := f.customer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(5, 10))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)

	for _, qty := range []int{0, -2} {
		_, err := f.bookings.Book(ctx, customerID, event.ID, qty)
		require.Error(t, err)
		ae := apperr.From(err)
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Equal(t, "quantity", ae.Field)
	}

	// Failed attempts must not touch inventory.
	got, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableTickets)
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(10, 25))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		customerID := f.customer()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.bookings.Book(ctx, customerID, event.ID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var confirmed, rejected int
	for err := range results {
		if err == nil {
			confirmed++
			continue
		}
		rejected++
		assert.True(t, apperr.IsKind(err, apperr.KindCapacity))
	}
	assert.Equal(t, 10, confirmed)
	assert.Equal(t, attempts-10, rejected)

	got, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableTickets)
}

func TestCancelIsExactlyOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	customerID := f.customer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(10, 20))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)

	booking, err := f.bookings.Book(ctx, customerID, event.ID, 4)
	require.NoError(t, err)

	_, err = f.bookings.Cancel(ctx, customerID, booking.ID)
	require.NoError(t, err)

	// Second cancel is a 400 conflict and must not restore inventory again.
	_, err = f.bookings.Cancel(ctx, customerID, booking.ID)
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindConflict, ae.Kind)
	assert.Equal(t, 400, ae.HTTPStatus())

	got, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.AvailableTickets)
}

func TestCancelForeignBookingForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	owner := f.customer()
	stranger := f.customer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(5, 15))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)

	booking, err := f.bookings.Book(ctx, owner, event.ID, 1)
	require.NoError(t, err)

	_, err = f.bookings.Cancel(ctx, stranger, booking.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.bookings.Cancel(ctx, owner, uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGetForViewerVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	otherOrganizer := f.organizer()
	customerID := f.customer()
	otherCustomer := f.customer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(5, 30))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)

	booking, err := f.bookings.Book(ctx, customerID, event.ID, 2)
	require.NoError(t, err)

	cases := []struct {
		name    string
		viewer  model.Account
		allowed bool
	}{
		{"owning customer", model.Account{ID: customerID, Role: model.RoleCustomer}, true},
		{"event organizer", model.Account{ID: organizerID, Role: model.RoleOrganizer}, true},
		{"other customer", model.Account{ID: otherCustomer, Role: model.RoleCustomer}, false},
		{"other organizer", model.Account{ID: otherOrganizer, Role: model.RoleOrganizer}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.bookings.GetForViewer(ctx, tc.viewer, booking.ID)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, booking.ID, got.ID)
			} else {
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
			}
		})
	}
}

func TestListForEventRequiresOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	otherOrganizer := f.organizer()
	customerID := f.customer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(5, 30))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)
	_, err = f.bookings.Book(ctx, customerID, event.ID, 2)
	require.NoError(t, err)

	bookings, err := f.bookings.ListForEvent(ctx, organizerID, event.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, customerID, bookings[0].CustomerID)

	_, err = f.bookings.ListForEvent(ctx, otherOrganizer, event.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.bookings.ListForEvent(ctx, organizerID, uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestBookingDispatchesConfirmation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	customerID := f.customer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(5, 12.5))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)

	booking, err := f.bookings.Book(ctx, customerID, event.ID, 2)
	require.NoError(t, err)

	kinds := f.dispatcher.kinds()
	require.Contains(t, kinds, notify.KindBookingConfirmed)

	var confirmation *notify.BookingConfirmed
	f.dispatcher.mu.Lock()
	for _, n := range f.dispatcher.notes {
		if n.Kind == notify.KindBookingConfirmed {
			confirmation = n.BookingConfirmed
		}
	}
	f.dispatcher.mu.Unlock()
	require.NotNil(t, confirmation)
	assert.Equal(t, booking.Reference, confirmation.Reference)
	assert.Equal(t, event.ID.String(), confirmation.EventID)
	assert.Equal(t, 25.0, confirmation.TotalPrice)
}
