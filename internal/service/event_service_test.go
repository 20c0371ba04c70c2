package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/event-ticketing/internal/apperr"
	"github.com/eventra/event-ticketing/internal/model"
	"github.com/eventra/event-ticketing/internal/notify"
)

func TestEventCreateStartsAsDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(40, 19.99))
	require.NoError(t, err)
	assert.Equal(t, model.EventDraft, event.Status)
	assert.Equal(t, 40, event.TotalTickets)
	assert.Equal(t, 40, event.AvailableTickets)
	assert.Equal(t, organizerID, event.OrganizerID)
	assert.NotEqual(t, uuid.Nil, event.ID)
}

func TestEventListExposesOnlyPublished(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()

	draft, err := f.events.Create(ctx, organizerID, sampleEvent(10, 5))
	require.NoError(t, err)
	published, err := f.events.Create(ctx, organizerID, sampleEvent(10, 5))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, published.ID)
	require.NoError(t, err)

	events, err := f.events.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, published.ID, events[0].ID)

	// Draft events stay reachable by ID but are never listable.
	_, err = f.events.Get(ctx, draft.ID)
	require.NoError(t, err)
	_, err = f.events.List(ctx, "draft", "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.events.List(ctx, "bogus", "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestEventListFiltersByCategory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()

	concert := sampleEvent(10, 5)
	concert.Category = "concert"
	a, err := f.events.Create(ctx, organizerID, concert)
	require.NoError(t, err)
	b, err := f.events.Create(ctx, organizerID, sampleEvent(10, 5))
	require.NoError(t, err)
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		_, err = f.events.Publish(ctx, organizerID, id)
		require.NoError(t, err)
	}

	events, err := f.events.List(ctx, "", "concert")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, a.ID, events[0].ID)
}

func TestEventUpdateShiftsCapacity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	customerID := f.customer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(10, 20))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)
	_, err = f.bookings.Book(ctx, customerID, event.ID, 6)
	require.NoError(t, err)

	// Growing capacity adds to both counters.
	in := sampleEvent(15, 20)
	updated, err := f.events.Update(ctx, organizerID, event.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 15, updated.TotalTickets)
	assert.Equal(t, 9, updated.AvailableTickets)

	// Shrinking below the 6 already booked is rejected.
	in = sampleEvent(5, 20)
	_, err = f.events.Update(ctx, organizerID, event.ID, in)
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, "total_tickets", ae.Field)

	// Shrinking down to exactly the booked count is allowed.
	in = sampleEvent(6, 20)
	updated, err = f.events.Update(ctx, organizerID, event.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.TotalTickets)
	assert.Equal(t, 0, updated.AvailableTickets)
}

func TestEventMutationsEnforceOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.organizer()
	intruder := f.organizer()

	event, err := f.events.Create(ctx, owner, sampleEvent(10, 20))
	require.NoError(t, err)

	_, err = f.events.Update(ctx, intruder, event.ID, sampleEvent(12, 20))
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	err = f.events.Delete(ctx, intruder, event.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.events.Publish(ctx, intruder, event.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	// Absent events are 404, not 403.
	_, err = f.events.Update(ctx, owner, uuid.New(), sampleEvent(12, 20))
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestEventPublishTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(10, 20))
	require.NoError(t, err)

	published, err := f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventPublished, published.Status)

	// Publishing again is idempotent.
	again, err := f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventPublished, again.Status)

	// A cancelled event cannot come back.
	_, err = f.store.Events().SetStatus(ctx, event.ID, model.EventCancelled)
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindConflict, ae.Kind)
	assert.Equal(t, 400, ae.HTTPStatus())
}

func TestEventDeleteKeepsBookings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()
	customerID := f.customer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(10, 20))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)
	booking, err := f.bookings.Book(ctx, customerID, event.ID, 2)
	require.NoError(t, err)

	require.NoError(t, f.events.Delete(ctx, organizerID, event.ID))

	_, err = f.events.Get(ctx, event.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	// The booking record survives and can still be cancelled.
	cancelled, err := f.bookings.Cancel(ctx, customerID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)
}

func TestEventChangesDispatchNotifications(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	organizerID := f.organizer()

	event, err := f.events.Create(ctx, organizerID, sampleEvent(10, 20))
	require.NoError(t, err)
	_, err = f.events.Publish(ctx, organizerID, event.ID)
	require.NoError(t, err)
	_, err = f.events.Update(ctx, organizerID, event.ID, sampleEvent(12, 20))
	require.NoError(t, err)

	f.dispatcher.mu.Lock()
	defer f.dispatcher.mu.Unlock()
	require.Len(t, f.dispatcher.notes, 2)
	for _, n := range f.dispatcher.notes {
		assert.Equal(t, notify.KindEventUpdated, n.Kind)
		require.NotNil(t, n.EventUpdated)
		assert.Equal(t, event.ID.String(), n.EventUpdated.EventID)
	}
	assert.Equal(t, "published", f.dispatcher.notes[0].EventUpdated.Change)
	assert.Equal(t, "updated", f.dispatcher.notes[1].EventUpdated.Change)
}
