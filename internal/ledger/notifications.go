package ledger

import (
	"fmt"
	"slices"

	"pocketledger/internal/core"
)

const (
	BillNotification  NotificationKind = "bill"
	LimitNotification NotificationKind = "limit"
)

// BillWindowDays is how far ahead unpaid expenses are surfaced.
const BillWindowDays = 7

type NotificationKind string

// Notification is one entry of the notification list. Bill entries carry the
// transaction to mark as paid through Engine.TogglePaid.
type Notification struct {
	ID            string
	Kind          NotificationKind
	Message       string
	Details       string
	Amount        core.Money // bills only
	TransactionID string     // bills only
	AccountID     string
	DueDate       core.Date // bills only
	Percent       Percent   // limit alerts only
	Urgent        bool
}

// DeriveNotifications derives the notification list: unpaid expenses due within the next
// seven days or already overdue, soonest first, followed by one alert per
// credit card whose utilization reached thresholdPercent. The list length is
// the badge count.
func DeriveNotifications(accounts []core.Account, txs []core.Transaction, thresholdPercent float64, today core.Date) []Notification {
	bills := upcomingBills(txs, today)
	return append(bills, limitAlerts(accounts, txs, thresholdPercent)...)
}

func upcomingBills(txs []core.Transaction, today core.Date) []Notification {
	horizon := today.AddDays(BillWindowDays)

	var due []core.Transaction
	for _, t := range txs {
		if t.Type != core.Expense || t.IsPaid || t.Date.After(horizon) {
			continue
		}
		due = append(due, t)
	}
	slices.SortStableFunc(due, func(a, b core.Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})

	out := make([]Notification, 0, len(due))
	for _, t := range due {
		out = append(out, Notification{
			ID:            t.ID,
			Kind:          BillNotification,
			Message:       t.Description,
			Details:       core.RelativeDueLabel(t.Date, today),
			Amount:        t.Amount,
			TransactionID: t.ID,
			AccountID:     t.AccountID,
			DueDate:       t.Date,
			Urgent:        t.Date.Before(today),
		})
	}
	return out
}

func limitAlerts(accounts []core.Account, txs []core.Transaction, thresholdPercent float64) []Notification {
	var out []Notification
	for _, acc := range accounts {
		if !acc.IsCreditCard() || acc.Card == nil || !acc.Card.Limit.IsPositive() {
			continue
		}
		usage := CardUsage(acc, txs)
		if float64(usage.Percent) < thresholdPercent {
			continue
		}
		details := fmt.Sprintf("You have used %s of your limit.", usage.Percent)
		if usage.OverLimit() {
			details = fmt.Sprintf("You are over your limit: %s used.", usage.Percent)
		}
		out = append(out, Notification{
			ID:        "limit-" + acc.ID,
			Kind:      LimitNotification,
			Message:   fmt.Sprintf("%s credit limit almost reached!", acc.Name),
			Details:   details,
			AccountID: acc.ID,
			Percent:   usage.Percent,
			Urgent:    true,
		})
	}
	return out
}
