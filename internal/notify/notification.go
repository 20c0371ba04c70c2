// Package notify implements the advisory notification side channel. It is
// fire-and-forget: payloads are published to a durable RabbitMQ queue when a
// broker is configured, and fall back to a bounded in-process buffer when it
// is not reachable. The guarantee is at-most-once — a crash between state
// mutation and dispatch drops the notification — which is acceptable because
// notifications are informational and never correctness-bearing.
package notify

import "time"

// Queue is the RabbitMQ queue both the dispatcher and consumer use.
const Queue = "notifications"

// Notification kinds.
const (
	KindBookingConfirmed = "booking.confirmed"
	KindEventUpdated     = "event.updated"
)

// BookingConfirmed carries enough information for a downstream consumer to
// render a confirmation message without querying the primary database.
type BookingConfirmed struct {
	BookingID  string  `json:"booking_id"`
	Reference  string  `json:"reference"`
	CustomerID string  `json:"customer_id"`
	EventID    string  `json:"event_id"`
	EventTitle string  `json:"event_title"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// EventUpdated announces a metadata change or publication of an event.
type EventUpdated struct {
	EventID    string `json:"event_id"`
	EventTitle string `json:"event_title"`
	Status     string `json:"status"`
	Change     string `json:"change"`
}

// Notification is the envelope placed on the queue. Exactly one payload
// field is set, selected by Kind.
type Notification struct {
	Kind             string            `json:"kind"`
	EmittedAt        time.Time         `json:"emitted_at"`
	BookingConfirmed *BookingConfirmed `json:"booking_confirmed,omitempty"`
	EventUpdated     *EventUpdated     `json:"event_updated,omitempty"`
}
