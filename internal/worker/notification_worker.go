// Package worker handles messages consumed from the notification queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"pocketledger/internal/amqp"
	"pocketledger/internal/core"
)

var ErrInvalidMessage = errors.New("invalid notification message")

// NotificationWorker renders consumed notifications as one line each.
// Redelivered messages are written once.
type NotificationWorker struct {
	out io.Writer

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewNotificationWorker(out io.Writer) *NotificationWorker {
	return &NotificationWorker{
		out:  out,
		seen: map[string]struct{}{},
	}
}

// HandleNotification is an amqp consumer handler. A returned error requeues
// the message.
func (w *NotificationWorker) HandleNotification(ctx context.Context, msg *amqp.NotificationMessage) error {
	if msg.ID == "" || msg.Kind == "" {
		return fmt.Errorf("%w: missing id or kind", ErrInvalidMessage)
	}

	key := msg.ID + "@" + msg.Timestamp.UTC().Format(time.RFC3339Nano)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[key]; ok {
		slog.DebugContext(ctx, "Skipping redelivered notification", "notification_id", msg.ID)
		return nil
	}

	if _, err := fmt.Fprintln(w.out, Render(msg)); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	w.seen[key] = struct{}{}

	slog.InfoContext(ctx, "Processed notification",
		"notification_id", msg.ID,
		"kind", msg.Kind,
		"owner_id", msg.OwnerID)
	return nil
}

// Render formats a notification for a terminal.
func Render(msg *amqp.NotificationMessage) string {
	line := msg.Message
	if msg.Details != "" {
		line += ": " + msg.Details
	}
	if msg.Kind == "bill" && msg.AmountCents != 0 {
		line += fmt.Sprintf(" (%s)", core.FormatMoney(core.Cents(msg.AmountCents), msg.Currency))
	}
	if msg.Urgent {
		line = "[URGENT] " + line
	}
	return line
}
