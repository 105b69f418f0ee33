package amqp

import (
	"encoding/json"
	"time"

	"pocketledger/internal/ledger"
)

// NotificationMessage carries one derived notification to consumers such as
// a push or e-mail relay. Consumers must not need the ledger to render it.
type NotificationMessage struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	OwnerID       string    `json:"owner_id"`
	Message       string    `json:"message"`
	Details       string    `json:"details"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	AccountID     string    `json:"account_id"`
	DueDate       string    `json:"due_date,omitempty"`
	Percent       float64   `json:"percent,omitempty"`
	Urgent        bool      `json:"urgent"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewNotificationMessage converts a ledger notification for publishing.
func NewNotificationMessage(ownerID, currency string, n ledger.Notification) *NotificationMessage {
	msg := &NotificationMessage{
		ID:            n.ID,
		Kind:          string(n.Kind),
		OwnerID:       ownerID,
		Message:       n.Message,
		Details:       n.Details,
		AmountCents:   n.Amount.Cents,
		TransactionID: n.TransactionID,
		AccountID:     n.AccountID,
		DueDate:       n.DueDate.String(),
		Percent:       float64(n.Percent),
		Urgent:        n.Urgent,
		Timestamp:     time.Now(),
	}
	if n.Kind == ledger.BillNotification {
		msg.Currency = currency
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes a message body.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
