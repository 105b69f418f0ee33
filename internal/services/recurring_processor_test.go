package services

import (
	"context"
	"testing"
	"time"

	"pocketledger/internal/core"
)

func TestRecurringProcessor_ProcessDue(t *testing.T) {
	svc, store := newTestService(t, 0)
	ctx := context.Background()
	checking, _ := seed(t, svc)

	tmpl, err := svc.AddTransaction(ctx, core.TransactionDraft{
		AccountID: checking, Type: core.Expense, Description: "Rent",
		Amount: core.Cents(150000), Date: core.MustParseDate("2024-01-10"), Category: core.Housing,
		Recurrence: core.Recurring, Frequency: core.Monthly,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	p := NewRecurringProcessor(svc, store)
	steps := []struct {
		now  time.Time
		want int
	}{
		{at(2024, 1, 20, 9), 0},  // template itself is January's occurrence
		{at(2024, 2, 9, 9), 0},   // before the target day
		{at(2024, 2, 10, 9), 1},  // due
		{at(2024, 2, 10, 18), 0}, // already ran this month
		{at(2024, 3, 31, 9), 1},
	}
	for i, step := range steps {
		got, err := p.ProcessDue(ctx, step.now)
		if err != nil {
			t.Fatalf("step %d: ProcessDue() error = %v", i, err)
		}
		if got != step.want {
			t.Errorf("step %d: ProcessDue(%s) = %d, want %d", i, step.now.Format(time.DateOnly), got, step.want)
		}
	}

	book, _ := svc.Book(ctx)
	if len(book.Transactions) != 3 {
		t.Fatalf("got %d transactions, want template plus 2 occurrences", len(book.Transactions))
	}
	occ := book.Transactions[1]
	if occ.Recurrence != core.Single || occ.Frequency != "" || occ.Date.String() != "2024-02-10" || occ.Amount != tmpl[0].Amount {
		t.Errorf("occurrence = %+v", occ)
	}
	if occ.IsPaid {
		t.Error("occurrence should start unpaid")
	}

	last, _ := store.LastExecution(ctx, tmpl[0].ID)
	if !last.Equal(at(2024, 3, 31, 9)) {
		t.Errorf("last execution = %v", last)
	}
}

func TestRecurringProcessor_SkipsTemplates(t *testing.T) {
	svc, store := newTestService(t, 0)
	ctx := context.Background()
	checking, card := seed(t, svc)

	drafts := []core.TransactionDraft{
		{
			AccountID: checking, Type: core.Expense, Description: "Future gym",
			Amount: core.Cents(9000), Date: core.MustParseDate("2024-05-01"), Category: core.Health,
			Recurrence: core.Recurring, Frequency: core.Weekly,
		},
		{
			AccountID: card, Type: core.Expense, Description: "Streaming",
			Amount: core.Cents(3990), Date: core.MustParseDate("2024-02-28"), Category: core.Leisure,
			Recurrence: core.Recurring, Frequency: core.Weekly,
		},
	}
	for _, d := range drafts {
		if _, err := svc.AddTransaction(ctx, d); err != nil {
			t.Fatalf("AddTransaction(%s) error = %v", d.Description, err)
		}
	}
	broken := core.Transaction{
		ID: "txn-broken", OwnerID: "user-1", AccountID: checking, Type: core.Expense,
		Description: "Broken", Amount: core.Cents(100), Date: core.MustParseDate("2024-01-01"),
		Category: core.Other, Recurrence: core.Recurring, Frequency: "fortnightly",
	}
	if err := store.InsertTransactions(ctx, []core.Transaction{broken}); err != nil {
		t.Fatalf("InsertTransactions() error = %v", err)
	}

	// The card template is measured from its purchase date, not its
	// 2024-03-04 invoice date, so it is due a week later.
	got, err := NewRecurringProcessor(svc, store).ProcessDue(ctx, at(2024, 3, 6, 9))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if got != 1 {
		t.Errorf("ProcessDue() = %d, want only the card template", got)
	}

	book, _ := svc.Book(ctx)
	last := book.Transactions[len(book.Transactions)-1]
	if last.Description != "Streaming" || last.PurchaseDate.String() != "2024-03-06" || last.Date.String() != "2024-03-04" {
		t.Errorf("card occurrence = %+v", last)
	}
}

func TestRecurringProcessor_NotInitialized(t *testing.T) {
	if _, err := (&RecurringProcessor{}).ProcessDue(context.Background(), time.Now()); err == nil {
		t.Error("ProcessDue() should fail without a ledger")
	}
}
