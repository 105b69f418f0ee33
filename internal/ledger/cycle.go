package ledger

import "pocketledger/internal/core"

// DueDateFor returns the invoice due date of a credit-card purchase: dueDay
// of the purchase month, or of the following month when the purchase falls
// after closingDay. Days past the end of a month are clamped to its last day.
func DueDateFor(purchase core.Date, closingDay, dueDay int) core.Date {
	month := purchase.Month()
	if purchase.Day() > closingDay {
		month++
	}
	return core.DateInMonth(purchase.Year(), month, dueDay)
}

// dueDateForAccount is DueDateFor using the account's card terms. Accounts
// without card terms keep the purchase date.
func dueDateForAccount(purchase core.Date, acc core.Account) core.Date {
	if acc.Card == nil {
		return purchase
	}
	return DueDateFor(purchase, acc.Card.ClosingDay, acc.Card.DueDay)
}
