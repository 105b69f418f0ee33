package ledger

import (
	"fmt"

	"pocketledger/internal/core"
)

// ExpandInstallments splits an installment draft into draft.InstallmentTotal
// rows, one per billing cycle (credit cards) or per month (other accounts).
//
// Amounts add up exactly to draft.Amount; leftover cents go to the earliest
// rows. acc may be nil when the account is unknown, in which case the plan is
// laid out monthly from the purchase date. taken is updated with every id
// handed out. The caller guarantees InstallmentTotal > 0.
func ExpandInstallments(draft core.TransactionDraft, acc *core.Account, ids IDAllocator, taken map[string]struct{}) []core.Transaction {
	n := draft.InstallmentTotal
	parts := draft.Amount.Split(n)
	card := acc != nil && acc.IsCreditCard() && acc.Card != nil

	var firstDue core.Date
	if card {
		firstDue = DueDateFor(draft.Date, acc.Card.ClosingDay, acc.Card.DueDay)
	}

	rows := make([]core.Transaction, n)
	for i := range rows {
		row := core.Transaction{
			ID:             uniqueID(ids, "txn", taken),
			OwnerID:        draft.OwnerID,
			AccountID:      draft.AccountID,
			Type:           draft.Type,
			Description:    fmt.Sprintf("%s (%d/%d)", draft.Description, i+1, n),
			Amount:         parts[i],
			Category:       categoryOrOther(draft.Category),
			CustomCategory: draft.CustomCategory,
			Recurrence:     core.Installment,
			Installment:    &core.InstallmentMark{Current: i + 1, Total: n},
		}
		if card {
			row.Date = core.AddMonthsOnDay(firstDue, i, acc.Card.DueDay)
			row.PurchaseDate = draft.Date
			row.IsPaid = false
		} else {
			row.Date = core.AddMonths(draft.Date, i)
			row.IsPaid = i == 0 && draft.IsPaid
		}
		rows[i] = row
	}
	return rows
}

func categoryOrOther(c core.Category) core.Category {
	if c == "" {
		return core.Other
	}
	return c
}
