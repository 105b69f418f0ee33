package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"pocketledger/internal/core"
)

// scriptedIDs replays a fixed list of ids regardless of the prefix.
type scriptedIDs struct {
	ids  []string
	next int
}

func (s *scriptedIDs) NewID(string) string {
	id := s.ids[s.next]
	s.next++
	return id
}

func newTestEngine(skim int64) *Engine {
	return NewEngine(NewCounterAllocator(0), Settings{InvestmentSkimPercentage: decimal.NewFromInt(skim)})
}

func testBook() Book {
	return Book{Accounts: []core.Account{checking(), nubank()}}
}

func TestEngineAddAccount(t *testing.T) {
	e := newTestEngine(0)

	t.Run("credit card starts at zero", func(t *testing.T) {
		draft := core.AccountDraft{
			OwnerID:        "user-1",
			Name:           "Nubank",
			Type:           core.CreditCard,
			InitialBalance: core.Cents(5000),
			Currency:       "BRL",
			Card:           &core.CardTerms{ClosingDay: 25, DueDay: 4, Limit: core.Cents(200000)},
		}
		book, acc, err := e.AddAccount(Book{}, draft)
		if err != nil {
			t.Fatalf("AddAccount() error = %v", err)
		}
		if !acc.InitialBalance.IsZero() {
			t.Errorf("initial balance = %d, want 0", acc.InitialBalance.Cents)
		}
		if !strings.HasPrefix(acc.ID, "acc-") {
			t.Errorf("id = %q, want acc- prefix", acc.ID)
		}
		if len(book.Accounts) != 1 {
			t.Fatalf("got %d accounts, want 1", len(book.Accounts))
		}

		draft.Card.Limit = core.Cents(1)
		if book.Accounts[0].Card.Limit.Cents != 200000 {
			t.Errorf("account shares card terms with the draft")
		}
	})

	t.Run("invalid draft", func(t *testing.T) {
		in := testBook()
		out, _, err := e.AddAccount(in, core.AccountDraft{Name: "x", Type: core.Checking, Currency: "BRL", Card: &core.CardTerms{}})
		if !errors.Is(err, core.ErrUnexpectedCardTerms) {
			t.Fatalf("AddAccount() error = %v, want %v", err, core.ErrUnexpectedCardTerms)
		}
		if len(out.Accounts) != len(in.Accounts) {
			t.Errorf("book changed on error")
		}
	})
}

func TestEngineAddTransactionWithSkim(t *testing.T) {
	e := newTestEngine(20)
	in := testBook()
	draft := core.TransactionDraft{
		OwnerID:     "user-1",
		AccountID:   "acc-itau",
		Type:        core.Income,
		Description: "Salary",
		Amount:      core.Cents(500000),
		Date:        core.MustParseDate("2024-03-05"),
		Category:    core.Salary,
		IsPaid:      true,
	}

	out, rows, err := e.AddTransaction(in, draft)
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if len(out.Transactions) != 2 || len(in.Transactions) != 0 {
		t.Fatalf("book sizes: out %d, in %d", len(out.Transactions), len(in.Transactions))
	}

	skim := rows[1]
	if skim.Type != core.Expense || skim.Category != core.Investments {
		t.Errorf("skim row = %s/%s, want expense/investments", skim.Type, skim.Category)
	}
	if skim.Amount.Cents != 100000 {
		t.Errorf("skim amount = %d, want 100000", skim.Amount.Cents)
	}
	if !skim.IsPaid {
		t.Errorf("skim row is unpaid")
	}
	if skim.Description != "Automatic investment (Salary)" {
		t.Errorf("skim description = %q", skim.Description)
	}
	if skim.AccountID != draft.AccountID || !skim.Date.Equal(draft.Date) {
		t.Errorf("skim row account/date = %s/%s", skim.AccountID, skim.Date)
	}
	if skim.ID == rows[0].ID {
		t.Errorf("income and skim share id %s", skim.ID)
	}
}

func TestEngineAddTransactionSkimRounding(t *testing.T) {
	tests := []struct {
		name   string
		skim   int64
		amount int64
		want   []int64
	}{
		{"disabled", 0, 500000, []int64{500000}},
		{"rounds half up", 10, 335, []int64{335, 34}},
		{"rounds to zero", 10, 4, []int64{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := core.TransactionDraft{
				AccountID:   "acc-itau",
				Type:        core.Income,
				Description: "Gift",
				Amount:      core.Cents(tt.amount),
				Date:        core.MustParseDate("2024-03-05"),
			}
			_, rows, err := newTestEngine(tt.skim).AddTransaction(testBook(), draft)
			if err != nil {
				t.Fatalf("AddTransaction() error = %v", err)
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("got %d rows, want %d", len(rows), len(tt.want))
			}
			for i, row := range rows {
				if row.Amount.Cents != tt.want[i] {
					t.Errorf("row %d amount = %d, want %d", i, row.Amount.Cents, tt.want[i])
				}
			}
		})
	}
}

func TestEngineAddTransactionCreditCardExpense(t *testing.T) {
	e := newTestEngine(20)
	draft := core.TransactionDraft{
		AccountID:   "acc-nubank",
		Type:        core.Expense,
		Description: "Groceries",
		Amount:      core.Cents(25000),
		Date:        core.MustParseDate("2024-03-15"),
		Category:    core.Food,
		IsPaid:      true,
	}

	_, rows, err := e.AddTransaction(testBook(), draft)
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Date.String() != "2024-03-04" {
		t.Errorf("date = %s, want 2024-03-04", row.Date)
	}
	if row.PurchaseDate.String() != "2024-03-15" {
		t.Errorf("purchase date = %s, want 2024-03-15", row.PurchaseDate)
	}
	if row.IsPaid {
		t.Errorf("credit card expense is paid")
	}
}

func TestEngineAddTransactionInstallments(t *testing.T) {
	e := newTestEngine(0)
	in := testBook()
	draft := core.TransactionDraft{
		AccountID:        "acc-nubank",
		Type:             core.Expense,
		Description:      "Notebook",
		Amount:           core.Cents(120000),
		Date:             core.MustParseDate("2024-03-15"),
		Recurrence:       core.Installment,
		InstallmentTotal: 12,
	}

	out, rows, err := e.AddTransaction(in, draft)
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if len(rows) != 12 || len(out.Transactions) != 12 {
		t.Fatalf("got %d rows and %d stored, want 12", len(rows), len(out.Transactions))
	}
	if rows[0].Date.String() != "2024-03-04" {
		t.Errorf("first due = %s, want 2024-03-04", rows[0].Date)
	}

	draft.InstallmentTotal = 0
	_, rows, err = e.AddTransaction(in, draft)
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Recurrence != core.Single {
		t.Errorf("zero installments should add one single row, got %d rows", len(rows))
	}
}

func TestEngineAddTransactionRecurring(t *testing.T) {
	draft := core.TransactionDraft{
		AccountID:   "acc-itau",
		Type:        core.Expense,
		Description: "Rent",
		Amount:      core.Cents(150000),
		Date:        core.MustParseDate("2024-03-10"),
		Category:    core.Housing,
		Recurrence:  core.Recurring,
		Frequency:   core.Monthly,
	}
	_, rows, err := newTestEngine(0).AddTransaction(testBook(), draft)
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if rows[0].Recurrence != core.Recurring || rows[0].Frequency != core.Monthly {
		t.Errorf("row recurrence = %s/%s", rows[0].Recurrence, rows[0].Frequency)
	}
	if err := rows[0].Validate(); err != nil {
		t.Errorf("row invalid: %v", err)
	}
}

func TestEngineAddTransactionInvalid(t *testing.T) {
	in := testBook()
	draft := core.TransactionDraft{
		AccountID:   "acc-itau",
		Type:        core.Expense,
		Description: "Nothing",
		Date:        core.MustParseDate("2024-03-10"),
	}
	out, rows, err := newTestEngine(0).AddTransaction(in, draft)
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("AddTransaction() error = %v, want %v", err, core.ErrInvalidAmount)
	}
	if rows != nil || len(out.Transactions) != 0 {
		t.Errorf("rows added on error")
	}
}

func TestEngineUniqueIDs(t *testing.T) {
	ids := &scriptedIDs{ids: []string{"txn-1", "txn-1", "txn-2", "txn-2", "txn-3"}}
	e := NewEngine(ids, Settings{})
	in := testBook()
	in.Transactions = []core.Transaction{{ID: "txn-1", AccountID: "acc-itau", Type: core.Expense}}

	draft := core.TransactionDraft{
		AccountID:        "acc-itau",
		Type:             core.Expense,
		Description:      "Chair",
		Amount:           core.Cents(1000),
		Date:             core.MustParseDate("2024-03-10"),
		Recurrence:       core.Installment,
		InstallmentTotal: 2,
	}
	_, rows, err := e.AddTransaction(in, draft)
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if rows[0].ID != "txn-2" || rows[1].ID != "txn-3" {
		t.Errorf("ids = %s, %s, want txn-2, txn-3", rows[0].ID, rows[1].ID)
	}
}

func TestEngineDeleteAccountCascades(t *testing.T) {
	e := newTestEngine(0)
	book := testBook()
	book.Transactions = []core.Transaction{
		{ID: "t1", AccountID: "acc-itau", Type: core.Income, Amount: core.Cents(100)},
		{ID: "t2", AccountID: "acc-nubank", Type: core.Expense, Amount: core.Cents(200)},
		{ID: "t3", AccountID: "acc-itau", Type: core.Expense, Amount: core.Cents(300)},
	}

	out, err := e.DeleteAccount(book, "acc-itau")
	if err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if len(out.Accounts) != 1 || out.Accounts[0].ID != "acc-nubank" {
		t.Errorf("accounts = %+v", out.Accounts)
	}
	if len(out.Transactions) != 1 || out.Transactions[0].ID != "t2" {
		t.Errorf("transactions = %+v", out.Transactions)
	}
	if len(book.Transactions) != 3 || book.Transactions[0].ID != "t1" {
		t.Errorf("input book was modified")
	}
}

func TestEngineUnknownIDs(t *testing.T) {
	e := newTestEngine(0)
	book := testBook()

	tests := []struct {
		name string
		run  func() (Book, error)
		want error
	}{
		{
			name: "update account",
			run:  func() (Book, error) { return e.UpdateAccount(book, core.Account{ID: "nope"}) },
			want: ErrAccountNotFound,
		},
		{
			name: "delete account",
			run:  func() (Book, error) { return e.DeleteAccount(book, "nope") },
			want: ErrAccountNotFound,
		},
		{
			name: "update transaction",
			run:  func() (Book, error) { return e.UpdateTransaction(book, core.Transaction{ID: "nope"}) },
			want: ErrTransactionNotFound,
		},
		{
			name: "delete transaction",
			run:  func() (Book, error) { return e.DeleteTransaction(book, "nope") },
			want: ErrTransactionNotFound,
		},
		{
			name: "toggle paid",
			run: func() (Book, error) {
				b, _, err := e.TogglePaid(book, "nope")
				return b, err
			},
			want: ErrTransactionNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.run()
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if len(out.Accounts) != len(book.Accounts) || len(out.Transactions) != len(book.Transactions) {
				t.Errorf("book changed on error")
			}
		})
	}
}

func TestEngineUpdateAndDeleteTransaction(t *testing.T) {
	e := newTestEngine(0)
	book := testBook()
	book.Transactions = []core.Transaction{
		{ID: "t1", AccountID: "acc-itau", Type: core.Expense, Amount: core.Cents(100), Description: "Coffee"},
		{ID: "t2", AccountID: "acc-itau", Type: core.Expense, Amount: core.Cents(200), Description: "Lunch"},
	}

	updated := book.Transactions[0]
	updated.Description = "Espresso"
	out, err := e.UpdateTransaction(book, updated)
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if got, _ := out.Transaction("t1"); got.Description != "Espresso" {
		t.Errorf("description = %q, want Espresso", got.Description)
	}
	if book.Transactions[0].Description != "Coffee" {
		t.Errorf("input book was modified")
	}

	out, err = e.DeleteTransaction(out, "t1")
	if err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, ok := out.Transaction("t1"); ok || len(out.Transactions) != 1 {
		t.Errorf("t1 still present: %+v", out.Transactions)
	}
}

func TestEngineTogglePaid(t *testing.T) {
	e := newTestEngine(0)
	book := testBook()
	book.Transactions = []core.Transaction{
		{ID: "bill", AccountID: "acc-itau", Type: core.Expense, Amount: core.Cents(100)},
		{ID: "pay", AccountID: "acc-itau", Type: core.Income, Amount: core.Cents(100)},
	}

	out, tx, err := e.TogglePaid(book, "bill")
	if err != nil {
		t.Fatalf("TogglePaid() error = %v", err)
	}
	if !tx.IsPaid {
		t.Errorf("expense not marked paid")
	}
	out, tx, err = e.TogglePaid(out, "bill")
	if err != nil {
		t.Fatalf("TogglePaid() error = %v", err)
	}
	if tx.IsPaid {
		t.Errorf("expense still paid after second toggle")
	}

	_, tx, err = e.TogglePaid(out, "pay")
	if err != nil {
		t.Fatalf("TogglePaid() error = %v", err)
	}
	if tx.IsPaid {
		t.Errorf("income toggled")
	}
}
