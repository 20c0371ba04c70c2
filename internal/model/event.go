package model

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of an event. Events are created in
// draft, become bookable once published, and may be cancelled by the
// organizer.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
)

// Valid reports whether s is one of the known event statuses.
func (s EventStatus) Valid() bool {
	return s == EventDraft || s == EventPublished || s == EventCancelled
}

// Event represents a record in the `events` collection. AvailableTickets is
// the only counter mutated concurrently: bookings decrement it and
// cancellations restore it, always through a conditional atomic update so
// that 0 <= AvailableTickets <= TotalTickets holds at all times.
type Event struct {
	ID               uuid.UUID   `bson:"_id" json:"id"`
	OrganizerID      uuid.UUID   `bson:"organizer_id" json:"organizer_id"`
	Title            string      `bson:"title" json:"title"`
	Description      string      `bson:"description" json:"description"`
	Date             time.Time   `bson:"date" json:"date"`
	Location         string      `bson:"location" json:"location"`
	Category         string      `bson:"category" json:"category"`
	TotalTickets     int         `bson:"total_tickets" json:"total_tickets"`
	AvailableTickets int         `bson:"available_tickets" json:"available_tickets"`
	TicketPrice      float64     `bson:"ticket_price" json:"ticket_price"`
	Status           EventStatus `bson:"status" json:"status"`
	CreatedAt        time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `bson:"updated_at" json:"updated_at"`
}
