package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"pocketledger/internal/core"
	"pocketledger/internal/export"
	"pocketledger/internal/ledger"
	applog "pocketledger/internal/log"
	"pocketledger/internal/storage"
)

// LedgerConfig holds the per-owner settings of a LedgerService.
type LedgerConfig struct {
	OwnerID         string
	DefaultCurrency string
	// AlertThreshold is the credit-card utilization percentage (0-100) that
	// raises a limit notification.
	AlertThreshold float64
}

// LedgerService runs engine mutations against the stored book of one owner
// and persists the rows they produce.
type LedgerService struct {
	store  storage.BookStore
	engine *ledger.Engine
	config LedgerConfig

	// serializes load, mutate and persist
	mu sync.Mutex
}

func NewLedgerService(store storage.BookStore, engine *ledger.Engine, config LedgerConfig) *LedgerService {
	return &LedgerService{
		store:  store,
		engine: engine,
		config: config,
	}
}

func (s *LedgerService) OwnerID() string { return s.config.OwnerID }

// Book returns the owner's accounts and transactions.
func (s *LedgerService) Book(ctx context.Context) (ledger.Book, error) {
	book, err := s.store.Load(ctx, s.config.OwnerID)
	if err != nil {
		return ledger.Book{}, fmt.Errorf("load book: %w", err)
	}
	return book, nil
}

func (s *LedgerService) AddAccount(ctx context.Context, draft core.AccountDraft) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.OwnerID == "" {
		draft.OwnerID = s.config.OwnerID
	}
	book, err := s.Book(ctx)
	if err != nil {
		return core.Account{}, err
	}
	_, acc, err := s.engine.AddAccount(book, draft)
	if err != nil {
		return core.Account{}, err
	}
	if err := s.store.InsertAccount(ctx, acc); err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithOwner(acc.OwnerID).
		WithAccount(acc.ID).Args()...)
	return acc, nil
}

func (s *LedgerService) UpdateAccount(ctx context.Context, acc core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.Book(ctx)
	if err != nil {
		return err
	}
	out, err := s.engine.UpdateAccount(book, acc)
	if err != nil {
		return err
	}
	acc, _ = out.Account(acc.ID)
	if err := s.store.UpdateAccount(ctx, acc); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	slog.InfoContext(ctx, "Account updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithAccount(acc.ID).Args()...)
	return nil
}

// DeleteAccount removes the account together with its transactions.
func (s *LedgerService) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.Book(ctx)
	if err != nil {
		return err
	}
	if _, err := s.engine.DeleteAccount(book, id); err != nil {
		return err
	}
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	slog.InfoContext(ctx, "Account deleted", applog.NewFields().
		WithOperation(applog.OpDelete).
		WithAccount(id).Args()...)
	return nil
}

// AddTransaction expands draft into its rows and stores them in one batch.
func (s *LedgerService) AddTransaction(ctx context.Context, draft core.TransactionDraft) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.OwnerID == "" {
		draft.OwnerID = s.config.OwnerID
	}
	book, err := s.Book(ctx)
	if err != nil {
		return nil, err
	}
	_, rows, err := s.engine.AddTransaction(book, draft)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertTransactions(ctx, rows); err != nil {
		return nil, fmt.Errorf("save transactions: %w", err)
	}

	fields := applog.NewFields().
		WithOperation(applog.OpCreate).
		WithAccount(draft.AccountID).
		WithTransaction(rows[0].ID, draft.Description, draft.Amount.Cents)
	fields[applog.FieldRows] = len(rows)
	slog.InfoContext(ctx, "Transaction created", fields.Args()...)
	return rows, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.Book(ctx)
	if err != nil {
		return err
	}
	if _, err := s.engine.UpdateTransaction(book, tx); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithTransaction(tx.ID, tx.Description, tx.Amount.Cents).Args()...)
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.Book(ctx)
	if err != nil {
		return err
	}
	if _, err := s.engine.DeleteTransaction(book, id); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", applog.NewFields().
		WithOperation(applog.OpDelete).
		WithTransaction(id, "", 0).Args()...)
	return nil
}

// TogglePaid flips the paid flag of an expense. Incomes are returned unchanged.
func (s *LedgerService) TogglePaid(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.Book(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	_, tx, err := s.engine.TogglePaid(book, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.Type != core.Expense {
		return tx, nil
	}
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction paid flag toggled", applog.NewFields().
		WithOperation(applog.OpToggle).
		WithTransaction(tx.ID, tx.Description, tx.Amount.Cents).Args()...)
	return tx, nil
}

// Report bundles every aggregation of one month.
type Report struct {
	Year, Month int
	Overview    ledger.Overview
	Monthly     ledger.MonthlyRollup
	Yearly      [12]ledger.MonthTotals
	Categories  []ledger.CategoryShare
	Accounts    []ledger.AccountShare
	Cards       []CardReport
	Statement   []ledger.StatementRow
}

type CardReport struct {
	Account core.Account
	Usage   ledger.CreditUsage
}

// Report aggregates year/month. Category and account breakdowns cover the
// month's rows only; the overview is computed as of today.
func (s *LedgerService) Report(ctx context.Context, year, month int, today core.Date) (Report, error) {
	book, err := s.Book(ctx)
	if err != nil {
		return Report{}, err
	}

	var inMonth []core.Transaction
	for _, t := range book.Transactions {
		if t.Date.InMonth(year, month) {
			inMonth = append(inMonth, t)
		}
	}

	r := Report{
		Year:       year,
		Month:      month,
		Overview:   ledger.Summarize(book.Accounts, book.Transactions, today),
		Monthly:    ledger.Monthly(book.Accounts, book.Transactions, year, month),
		Yearly:     ledger.Yearly(book.Transactions, year),
		Categories: ledger.ByCategory(inMonth),
		Accounts:   ledger.ByAccount(book.Accounts, inMonth),
		Statement:  ledger.Statement(book.Accounts, book.Transactions, year, month, s.config.DefaultCurrency),
	}
	for _, acc := range book.Accounts {
		if acc.IsCreditCard() {
			r.Cards = append(r.Cards, CardReport{Account: acc, Usage: ledger.CardUsage(acc, book.Transactions)})
		}
	}
	return r, nil
}

// Notifications derives the owner's pending bills and limit alerts.
func (s *LedgerService) Notifications(ctx context.Context, today core.Date) ([]ledger.Notification, error) {
	book, err := s.Book(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DeriveNotifications(book.Accounts, book.Transactions, s.config.AlertThreshold, today), nil
}

// Export writes the statement of year/month through exporter and returns the
// location it reported.
func (s *LedgerService) Export(ctx context.Context, exporter export.Exporter, year, month int) (string, error) {
	book, err := s.Book(ctx)
	if err != nil {
		return "", err
	}
	rows := ledger.Statement(book.Accounts, book.Transactions, year, month, s.config.DefaultCurrency)
	ref, err := exporter.Export(ctx, year, month, rows)
	if err != nil {
		return "", fmt.Errorf("export %04d-%02d: %w", year, month, err)
	}

	fields := applog.NewFields().WithOperation(applog.OpExport).WithPeriod(year, month)
	fields[applog.FieldRows] = len(rows)
	slog.InfoContext(ctx, "Statement exported", append(fields.Args(), "ref", ref)...)
	return ref, nil
}

// Close closes the store when it holds resources.
func (s *LedgerService) Close() error {
	c, ok := s.store.(io.Closer)
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("close ledger service: storage: %w", err)
	}
	return nil
}
