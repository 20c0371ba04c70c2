package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dispatcher submits notifications. Implementations must never block the
// caller's request path and must swallow delivery failures after logging
// them.
type Dispatcher interface {
	Dispatch(n Notification)
}

// Buffer is the in-process fallback when no broker is reachable. It is
// bounded; once full, the oldest entries are dropped. Contents do not
// survive a restart and are never redelivered.
type Buffer struct {
	mu      sync.Mutex
	max     int
	entries []Notification
}

// NewBuffer returns a buffer holding at most max notifications.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 1024
	}
	return &Buffer{max: max}
}

// Push appends a notification, evicting the oldest entry when full.
func (b *Buffer) Push(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) >= b.max {
		b.entries = b.entries[1:]
	}
	b.entries = append(b.entries, n)
}

// Snapshot returns a copy of the buffered notifications.
func (b *Buffer) Snapshot() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.entries))
	copy(out, b.entries)
	return out
}

// QueueDispatcher publishes notifications to RabbitMQ, falling back to the
// in-process buffer on any failure. Each dispatch runs in its own goroutine
// with a bounded timeout so the HTTP request that triggered it is never
// held up.
type QueueDispatcher struct {
	url      string
	logger   *slog.Logger
	fallback *Buffer
}

// NewQueueDispatcher builds a dispatcher for the given broker URL. An empty
// URL disables the broker entirely and routes everything to the buffer.
func NewQueueDispatcher(url string, logger *slog.Logger) *QueueDispatcher {
	return &QueueDispatcher{url: url, logger: logger, fallback: NewBuffer(1024)}
}

// Fallback exposes the in-process buffer, mainly for inspection in tests.
func (d *QueueDispatcher) Fallback() *Buffer { return d.fallback }

// Dispatch submits the notification and returns immediately.
func (d *QueueDispatcher) Dispatch(n Notification) {
	n.EmittedAt = time.Now().UTC()
	go d.deliver(n)
}

func (d *QueueDispatcher) deliver(n Notification) {
	if d.url == "" {
		d.buffer(n, "no broker configured")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.publish(ctx, n); err != nil {
		d.buffer(n, err.Error())
	}
}

// publish declares the durable queue (idempotent) and publishes one
// persistent message, mirroring how the consumer declares it.
func (d *QueueDispatcher) publish(ctx context.Context, n Notification) error {
	conn, err := amqp.Dial(d.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(Queue, true, false, false, false, nil); err != nil {
		return err
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.EmittedAt,
		Body:         body,
	})
}

func (d *QueueDispatcher) buffer(n Notification, reason string) {
	d.fallback.Push(n)
	d.logger.Warn("notification buffered in-process",
		"kind", n.Kind,
		"reason", reason,
	)
	// The buffered path still simulates delivery so the side channel stays
	// observable without a broker.
	d.logger.Info("notification (simulated)", "message", Render(n))
}
