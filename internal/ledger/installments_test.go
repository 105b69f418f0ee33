package ledger

import (
	"fmt"
	"testing"

	"pocketledger/internal/core"
)

func nubank() core.Account {
	return core.Account{
		ID:       "acc-nubank",
		OwnerID:  "user-1",
		Name:     "Nubank",
		Type:     core.CreditCard,
		Currency: "BRL",
		Card:     &core.CardTerms{ClosingDay: 25, DueDay: 4, Limit: core.Cents(200000)},
	}
}

func checking() core.Account {
	return core.Account{
		ID:             "acc-itau",
		OwnerID:        "user-1",
		Name:           "Itaú Unibanco",
		Type:           core.Checking,
		Currency:       "BRL",
		InitialBalance: core.Cents(100000),
	}
}

func TestExpandInstallmentsCreditCard(t *testing.T) {
	acc := nubank()
	draft := core.TransactionDraft{
		OwnerID:          "user-1",
		AccountID:        acc.ID,
		Type:             core.Expense,
		Description:      "Notebook",
		Amount:           core.Cents(120000),
		Date:             core.MustParseDate("2024-03-26"),
		Category:         core.Education,
		IsPaid:           true,
		Recurrence:       core.Installment,
		InstallmentTotal: 12,
	}

	rows := ExpandInstallments(draft, &acc, NewCounterAllocator(0), map[string]struct{}{})
	if len(rows) != 12 {
		t.Fatalf("got %d rows, want 12", len(rows))
	}

	var total core.Money
	ids := map[string]bool{}
	for i, row := range rows {
		wantDate := core.AddMonths(core.MustParseDate("2024-04-04"), i)
		if !row.Date.Equal(wantDate) {
			t.Errorf("row %d date = %s, want %s", i, row.Date, wantDate)
		}
		if row.PurchaseDate.String() != "2024-03-26" {
			t.Errorf("row %d purchase date = %s, want 2024-03-26", i, row.PurchaseDate)
		}
		if row.Amount.Cents != 10000 {
			t.Errorf("row %d amount = %d, want 10000", i, row.Amount.Cents)
		}
		if row.IsPaid {
			t.Errorf("row %d is paid, want unpaid", i)
		}
		wantDesc := fmt.Sprintf("Notebook (%d/12)", i+1)
		if row.Description != wantDesc {
			t.Errorf("row %d description = %q, want %q", i, row.Description, wantDesc)
		}
		if row.Installment == nil || row.Installment.Current != i+1 || row.Installment.Total != 12 {
			t.Errorf("row %d installment mark = %+v", i, row.Installment)
		}
		if err := row.Validate(); err != nil {
			t.Errorf("row %d invalid: %v", i, err)
		}
		if ids[row.ID] {
			t.Errorf("duplicate id %s", row.ID)
		}
		ids[row.ID] = true
		total = total.Add(row.Amount)
	}
	if total != draft.Amount {
		t.Errorf("installments add up to %d, want %d", total.Cents, draft.Amount.Cents)
	}
	if last := rows[11].Date.String(); last != "2025-03-04" {
		t.Errorf("last due date = %s, want 2025-03-04", last)
	}
}

func TestExpandInstallmentsKeepsDueDayAcrossShortMonths(t *testing.T) {
	acc := nubank()
	acc.Card = &core.CardTerms{ClosingDay: 20, DueDay: 31, Limit: core.Cents(100000)}
	draft := core.TransactionDraft{
		AccountID:        acc.ID,
		Type:             core.Expense,
		Description:      "Phone",
		Amount:           core.Cents(30000),
		Date:             core.MustParseDate("2024-01-10"),
		Recurrence:       core.Installment,
		InstallmentTotal: 3,
	}

	rows := ExpandInstallments(draft, &acc, NewCounterAllocator(0), map[string]struct{}{})
	want := []string{"2024-01-31", "2024-02-29", "2024-03-31"}
	for i, row := range rows {
		if row.Date.String() != want[i] {
			t.Errorf("row %d date = %s, want %s", i, row.Date, want[i])
		}
	}
}

func TestExpandInstallmentsNonCard(t *testing.T) {
	acc := checking()
	draft := core.TransactionDraft{
		AccountID:        acc.ID,
		Type:             core.Expense,
		Description:      "Course",
		Amount:           core.Cents(10000),
		Date:             core.MustParseDate("2024-01-31"),
		IsPaid:           true,
		Recurrence:       core.Installment,
		InstallmentTotal: 3,
	}

	rows := ExpandInstallments(draft, &acc, NewCounterAllocator(0), map[string]struct{}{})

	tests := []struct {
		date   string
		amount int64
		paid   bool
	}{
		{"2024-01-31", 3334, true},
		{"2024-02-29", 3333, false},
		{"2024-03-31", 3333, false},
	}
	if len(rows) != len(tests) {
		t.Fatalf("got %d rows, want %d", len(rows), len(tests))
	}
	for i, tt := range tests {
		row := rows[i]
		if row.Date.String() != tt.date {
			t.Errorf("row %d date = %s, want %s", i, row.Date, tt.date)
		}
		if row.Amount.Cents != tt.amount {
			t.Errorf("row %d amount = %d, want %d", i, row.Amount.Cents, tt.amount)
		}
		if row.IsPaid != tt.paid {
			t.Errorf("row %d paid = %v, want %v", i, row.IsPaid, tt.paid)
		}
		if !row.PurchaseDate.IsEmpty() {
			t.Errorf("row %d purchase date = %s, want empty", i, row.PurchaseDate)
		}
		if row.Category != core.Other {
			t.Errorf("row %d category = %s, want other", i, row.Category)
		}
	}
}

func TestExpandInstallmentsUnknownAccount(t *testing.T) {
	draft := core.TransactionDraft{
		AccountID:        "acc-gone",
		Type:             core.Expense,
		Description:      "Sofa",
		Amount:           core.Cents(50000),
		Date:             core.MustParseDate("2024-05-10"),
		Recurrence:       core.Installment,
		InstallmentTotal: 2,
	}

	rows := ExpandInstallments(draft, nil, NewCounterAllocator(0), map[string]struct{}{})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Date.String() != "2024-06-10" {
		t.Errorf("second row date = %s, want 2024-06-10", rows[1].Date)
	}
}
