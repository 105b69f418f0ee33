package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pocketledger/internal/amqp"
	"pocketledger/internal/core"
	applog "pocketledger/internal/log"
	"pocketledger/internal/storage"
)

// Publisher delivers notification messages. *amqp.Client implements it.
type Publisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

var _ Publisher = (*amqp.Client)(nil)

// Notifier publishes the owner's derived notifications at most once per day
// each.
type Notifier struct {
	ledger    *LedgerService
	sent      storage.NotificationLog
	publisher Publisher
}

func NewNotifier(ledger *LedgerService, sent storage.NotificationLog, publisher Publisher) *Notifier {
	return &Notifier{
		ledger:    ledger,
		sent:      sent,
		publisher: publisher,
	}
}

// Publish derives the notifications of today and publishes those not yet
// sent today. A notification is recorded as sent only after it was
// published, so failed ones are retried on the next call.
func (n *Notifier) Publish(ctx context.Context, today core.Date) (int, error) {
	if n.publisher == nil {
		slog.WarnContext(ctx, "No publisher configured, skipping notifications")
		return 0, nil
	}

	notes, err := n.ledger.Notifications(ctx, today)
	if err != nil {
		return 0, err
	}

	var errs []error
	published := 0
	for _, note := range notes {
		fields := applog.NewFields().WithOperation(applog.OpPublish)
		fields[applog.FieldNotification] = note.ID

		sent, err := n.sent.WasSent(ctx, note.ID, today)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if sent {
			continue
		}

		msg := amqp.NewNotificationMessage(n.ledger.OwnerID(), n.ledger.config.DefaultCurrency, note)
		if err := n.publisher.PublishNotification(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish notification",
				fields.WithError(err, applog.ErrorTypeNetwork).Args()...)
			errs = append(errs, fmt.Errorf("publish %s: %w", note.ID, err))
			if errors.Is(err, amqp.ErrCircuitOpen) {
				break
			}
			continue
		}

		if _, err := n.sent.MarkSent(ctx, note.ID, today); err != nil {
			slog.ErrorContext(ctx, "Failed to record sent notification",
				fields.WithError(err, applog.ErrorTypeDatabase).Args()...)
			errs = append(errs, err)
		}
		published++
	}

	slog.InfoContext(ctx, "Notifications published",
		"derived", len(notes),
		"published", published)
	return published, errors.Join(errs...)
}
