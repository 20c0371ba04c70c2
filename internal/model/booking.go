package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking. Bookings are confirmed
// at creation time (inventory is reserved atomically) and may only
// transition to cancelled. Bookings are never deleted.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking represents a record in the `bookings` collection. Reference is
// the externally visible purchase identifier, distinct from ID and unique
// (index-enforced). TotalPrice is quantity times the event's unit price at
// booking time and does not change if the event is later repriced.
type Booking struct {
	ID         uuid.UUID     `bson:"_id" json:"id"`
	Reference  string        `bson:"reference" json:"reference"`
	CustomerID uuid.UUID     `bson:"customer_id" json:"customer_id"`
	EventID    uuid.UUID     `bson:"event_id" json:"event_id"`
	Quantity   int           `bson:"quantity" json:"quantity"`
	TotalPrice float64       `bson:"total_price" json:"total_price"`
	Status     BookingStatus `bson:"status" json:"status"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updated_at"`
}
