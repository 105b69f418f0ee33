package ledger

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"pocketledger/internal/core"
)

// Settings are the host-configured knobs of the mutation engine.
type Settings struct {
	// InvestmentSkimPercentage (0-100) of every income is set aside as an
	// automatic investment expense. Zero disables the skim.
	InvestmentSkimPercentage decimal.Decimal
}

// Engine applies account and transaction mutations to a Book.
//
// Every method returns a new Book and never modifies the slices of the one
// it was given. Rows produced by one call are appended together or not at all.
type Engine struct {
	ids      IDAllocator
	settings Settings
}

// NewEngine creates an engine. A nil allocator defaults to UUIDAllocator.
func NewEngine(ids IDAllocator, settings Settings) *Engine {
	if ids == nil {
		ids = UUIDAllocator{}
	}
	return &Engine{ids: ids, settings: settings}
}

// Settings returns the engine configuration.
func (e *Engine) Settings() Settings {
	return e.settings
}

// AddAccount assigns an id to draft and appends it. Credit cards always start
// from a zero initial balance.
func (e *Engine) AddAccount(book Book, draft core.AccountDraft) (Book, core.Account, error) {
	if err := draft.Validate(); err != nil {
		return book, core.Account{}, fmt.Errorf("validate account: %w", err)
	}
	acc := core.Account{
		ID:             uniqueID(e.ids, "acc", book.takenIDs()),
		OwnerID:        draft.OwnerID,
		Name:           draft.Name,
		Type:           draft.Type,
		InitialBalance: draft.InitialBalance,
		Currency:       draft.Currency,
	}
	if draft.Card != nil {
		terms := *draft.Card
		acc.Card = &terms
	}
	if acc.IsCreditCard() {
		acc.InitialBalance = core.Money{}
	}

	out := book.Clone()
	out.Accounts = append(out.Accounts, acc)
	return out, acc, nil
}

// UpdateAccount replaces the account with the same id.
func (e *Engine) UpdateAccount(book Book, acc core.Account) (Book, error) {
	i := book.accountIndex(acc.ID)
	if i < 0 {
		return book, fmt.Errorf("update account %s: %w", acc.ID, ErrAccountNotFound)
	}
	if err := acc.Validate(); err != nil {
		return book, fmt.Errorf("validate account: %w", err)
	}
	if acc.IsCreditCard() {
		acc.InitialBalance = core.Money{}
	}
	out := book.Clone()
	out.Accounts[i] = acc
	return out, nil
}

// DeleteAccount removes the account and every transaction referencing it.
func (e *Engine) DeleteAccount(book Book, id string) (Book, error) {
	if book.accountIndex(id) < 0 {
		return book, fmt.Errorf("delete account %s: %w", id, ErrAccountNotFound)
	}
	out := book.Clone()
	out.Accounts = slices.DeleteFunc(out.Accounts, func(a core.Account) bool { return a.ID == id })
	out.Transactions = slices.DeleteFunc(out.Transactions, func(t core.Transaction) bool { return t.AccountID == id })
	return out, nil
}

// AddTransaction creates the rows for draft and appends them to the book.
//
// It returns one row for a plain transaction, two for an income when the
// investment skim is enabled, and InstallmentTotal rows for an installment
// plan. Credit-card expenses are dated on their invoice due date, keep the
// purchase date separately and always start unpaid.
func (e *Engine) AddTransaction(book Book, draft core.TransactionDraft) (Book, []core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return book, nil, fmt.Errorf("validate transaction: %w", err)
	}

	var acc *core.Account
	if a, ok := book.Account(draft.AccountID); ok {
		acc = &a
	}
	taken := book.takenIDs()

	var rows []core.Transaction
	if draft.Recurrence == core.Installment && draft.InstallmentTotal > 0 {
		rows = ExpandInstallments(draft, acc, e.ids, taken)
	} else {
		rows = e.plainRows(draft, acc, taken)
	}

	out := book.Clone()
	out.Transactions = append(out.Transactions, rows...)
	return out, rows, nil
}

func (e *Engine) plainRows(draft core.TransactionDraft, acc *core.Account, taken map[string]struct{}) []core.Transaction {
	tx := core.Transaction{
		ID:             uniqueID(e.ids, "txn", taken),
		OwnerID:        draft.OwnerID,
		AccountID:      draft.AccountID,
		Type:           draft.Type,
		Description:    draft.Description,
		Amount:         draft.Amount,
		Date:           draft.Date,
		Category:       categoryOrOther(draft.Category),
		CustomCategory: draft.CustomCategory,
		IsPaid:         draft.IsPaid,
		Recurrence:     core.Single,
	}
	if draft.Recurrence == core.Recurring {
		tx.Recurrence = core.Recurring
		tx.Frequency = draft.Frequency
	}
	if acc != nil && acc.IsCreditCard() && tx.Type == core.Expense {
		tx.PurchaseDate = draft.Date
		tx.Date = dueDateForAccount(draft.Date, *acc)
		tx.IsPaid = false
	}

	rows := []core.Transaction{tx}
	if skim, ok := e.skimFor(tx, taken); ok {
		rows = append(rows, skim)
	}
	return rows
}

// skimFor builds the automatic investment row for an income, if any.
func (e *Engine) skimFor(income core.Transaction, taken map[string]struct{}) (core.Transaction, bool) {
	p := e.settings.InvestmentSkimPercentage
	if income.Type != core.Income || !p.IsPositive() {
		return core.Transaction{}, false
	}
	amount := income.Amount.Percent(p)
	if !amount.IsPositive() {
		return core.Transaction{}, false
	}
	return core.Transaction{
		ID:          uniqueID(e.ids, "txn", taken),
		OwnerID:     income.OwnerID,
		AccountID:   income.AccountID,
		Type:        core.Expense,
		Description: fmt.Sprintf("Automatic investment (%s)", income.Description),
		Amount:      amount,
		Date:        income.Date,
		Category:    core.Investments,
		IsPaid:      true,
		Recurrence:  core.Single,
	}, true
}

// UpdateTransaction replaces the transaction with the same id as is. Installment
// plans are not re-expanded.
func (e *Engine) UpdateTransaction(book Book, tx core.Transaction) (Book, error) {
	i := book.transactionIndex(tx.ID)
	if i < 0 {
		return book, fmt.Errorf("update transaction %s: %w", tx.ID, ErrTransactionNotFound)
	}
	out := book.Clone()
	out.Transactions[i] = tx
	return out, nil
}

// DeleteTransaction removes a single transaction.
func (e *Engine) DeleteTransaction(book Book, id string) (Book, error) {
	i := book.transactionIndex(id)
	if i < 0 {
		return book, fmt.Errorf("delete transaction %s: %w", id, ErrTransactionNotFound)
	}
	out := book.Clone()
	out.Transactions = slices.Delete(out.Transactions, i, i+1)
	return out, nil
}

// TogglePaid flips IsPaid on an expense. Incomes are returned unchanged.
func (e *Engine) TogglePaid(book Book, id string) (Book, core.Transaction, error) {
	tx, ok := book.Transaction(id)
	if !ok {
		return book, core.Transaction{}, fmt.Errorf("toggle paid %s: %w", id, ErrTransactionNotFound)
	}
	return e.SetPaid(book, id, !tx.IsPaid)
}

// SetPaid sets IsPaid on an expense. Incomes are returned unchanged.
func (e *Engine) SetPaid(book Book, id string, paid bool) (Book, core.Transaction, error) {
	i := book.transactionIndex(id)
	if i < 0 {
		return book, core.Transaction{}, fmt.Errorf("set paid %s: %w", id, ErrTransactionNotFound)
	}
	tx := book.Transactions[i]
	if tx.Type != core.Expense || tx.IsPaid == paid {
		return book, tx, nil
	}
	out := book.Clone()
	out.Transactions[i].IsPaid = paid
	return out, out.Transactions[i], nil
}
