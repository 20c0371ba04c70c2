package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Render formats a notification as the single human-readable line a real
// email/SMS provider call would be replaced by.
func Render(n Notification) string {
	switch n.Kind {
	case KindBookingConfirmed:
		b := n.BookingConfirmed
		if b == nil {
			return "booking confirmed (empty payload)"
		}
		return fmt.Sprintf("booking %s confirmed: %d ticket(s) for %q, total %.2f",
			b.Reference, b.Quantity, b.EventTitle, b.TotalPrice)
	case KindEventUpdated:
		e := n.EventUpdated
		if e == nil {
			return "event updated (empty payload)"
		}
		return fmt.Sprintf("event %q %s (status=%s)", e.EventTitle, e.Change, e.Status)
	default:
		return fmt.Sprintf("unknown notification kind %q", n.Kind)
	}
}

// StartConsumer connects to RabbitMQ, declares the notifications queue and
// consumes messages until ctx is cancelled, logging each as a simulated
// delivery. It runs a reconnect loop with exponential backoff so a broker
// restart does not take the server down; malformed messages are rejected
// without requeue.
func StartConsumer(ctx context.Context, url string, logger *slog.Logger) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("notify consumer: dial failed", "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		if err := consumeLoop(ctx, conn, logger); err != nil {
			logger.Warn("notify consumer: loop ended", "error", err)
		}
		_ = conn.Close()
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logger *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var n Notification
			if err := json.Unmarshal(d.Body, &n); err != nil {
				logger.Warn("notify consumer: bad payload", "error", err)
				_ = d.Reject(false)
				continue
			}
			logger.Info("notification (simulated)", "kind", n.Kind, "message", Render(n))
			_ = d.Ack(false)
		}
	}
}
