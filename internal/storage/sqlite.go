package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pocketledger/internal/core"
	"pocketledger/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY inside
	// transactions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const accountColumns = `id, owner_id, name, type, initial_balance_cents, currency, closing_day, due_day, limit_cents`

const transactionColumns = `id, owner_id, account_id, type, description, amount_cents, date, purchase_date,
	category, custom_category, is_paid, recurrence, frequency, installment_current, installment_total`

func (s *SQLiteStore) Load(ctx context.Context, ownerID string) (ledger.Book, error) {
	var book ledger.Book

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY rowid`, ownerID)
	if err != nil {
		return book, fmt.Errorf("query accounts: %w", err)
	}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			rows.Close()
			return book, fmt.Errorf("scan account: %w", err)
		}
		book.Accounts = append(book.Accounts, acc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return book, fmt.Errorf("iterate accounts: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE owner_id = ? ORDER BY rowid`, ownerID)
	if err != nil {
		return book, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return book, fmt.Errorf("scan transaction: %w", err)
		}
		book.Transactions = append(book.Transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return book, fmt.Errorf("iterate transactions: %w", err)
	}

	slog.DebugContext(ctx, "Book loaded from SQLite",
		"owner_id", ownerID,
		"accounts", len(book.Accounts),
		"transactions", len(book.Transactions))
	return book, nil
}

func (s *SQLiteStore) InsertAccount(ctx context.Context, acc core.Account) error {
	closing, due, limit := cardColumns(acc.Card)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acc.ID, acc.OwnerID, acc.Name, string(acc.Type), acc.InitialBalance.Cents, acc.Currency,
		closing, due, limit)
	if err != nil {
		return fmt.Errorf("insert account %s: %w", acc.ID, err)
	}
	slog.InfoContext(ctx, "Account saved to SQLite", "account_id", acc.ID, "type", acc.Type)
	return nil
}

func (s *SQLiteStore) UpdateAccount(ctx context.Context, acc core.Account) error {
	closing, due, limit := cardColumns(acc.Card)
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET owner_id = ?, name = ?, type = ?, initial_balance_cents = ?, currency = ?,
			closing_day = ?, due_day = ?, limit_cents = ?
		WHERE id = ?`,
		acc.OwnerID, acc.Name, string(acc.Type), acc.InitialBalance.Cents, acc.Currency,
		closing, due, limit, acc.ID)
	if err != nil {
		return fmt.Errorf("update account %s: %w", acc.ID, err)
	}
	return expectRow(res, "account", acc.ID)
}

func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete account %s: %w", id, err)
		}
		if err := expectRow(res, "account", id); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete transactions of account %s: %w", id, err)
		}
		n, _ := res.RowsAffected()
		slog.InfoContext(ctx, "Account deleted from SQLite", "account_id", id, "transactions_removed", n)
		return nil
	})
}

func (s *SQLiteStore) InsertTransactions(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range txs {
			if _, err := stmt.ExecContext(ctx, transactionArgs(t)...); err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
		slog.InfoContext(ctx, "Transactions saved to SQLite", "rows", len(txs), "account_id", txs[0].AccountID)
		return nil
	})
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	args := append(transactionArgs(t)[1:], t.ID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET owner_id = ?, account_id = ?, type = ?, description = ?, amount_cents = ?,
			date = ?, purchase_date = ?, category = ?, custom_category = ?, is_paid = ?, recurrence = ?,
			frequency = ?, installment_current = ?, installment_total = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return expectRow(res, "transaction", t.ID)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return expectRow(res, "transaction", id)
}

func (s *SQLiteStore) LastExecution(ctx context.Context, templateID string) (time.Time, error) {
	var last time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT last_execution FROM recurring_runs WHERE template_id = ?`, templateID).Scan(&last)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last execution of %s: %w", templateID, err)
	}
	return last, nil
}

func (s *SQLiteStore) SetLastExecution(ctx context.Context, templateID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_runs (template_id, last_execution) VALUES (?, ?)
		ON CONFLICT (template_id) DO UPDATE SET last_execution = excluded.last_execution`,
		templateID, at.UTC())
	if err != nil {
		return fmt.Errorf("set last execution of %s: %w", templateID, err)
	}
	return nil
}

func (s *SQLiteStore) WasSent(ctx context.Context, id string, day core.Date) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sent_notifications WHERE notification_id = ? AND sent_on = ?`,
		id, day.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check notification %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) MarkSent(ctx context.Context, id string, day core.Date) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sent_notifications (notification_id, sent_on) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		id, day.String())
	if err != nil {
		return false, fmt.Errorf("mark notification %s sent: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (core.Account, error) {
	var (
		acc                   core.Account
		typ                   string
		balance               int64
		closing, due, limitCt sql.NullInt64
	)
	if err := row.Scan(&acc.ID, &acc.OwnerID, &acc.Name, &typ, &balance, &acc.Currency,
		&closing, &due, &limitCt); err != nil {
		return acc, err
	}
	acc.Type = core.AccountType(typ)
	acc.InitialBalance = core.Cents(balance)
	if closing.Valid && due.Valid {
		acc.Card = &core.CardTerms{
			ClosingDay: int(closing.Int64),
			DueDay:     int(due.Int64),
			Limit:      core.Cents(limitCt.Int64),
		}
	}
	return acc, nil
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		t                   core.Transaction
		typ, date, category string
		recurrence          string
		amount              int64
		paid                bool
		purchase, frequency sql.NullString
		current, total      sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.AccountID, &typ, &t.Description, &amount, &date, &purchase,
		&category, &t.CustomCategory, &paid, &recurrence, &frequency, &current, &total); err != nil {
		return t, err
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return t, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Date = d
	if purchase.Valid && purchase.String != "" {
		if t.PurchaseDate, err = core.ParseDate(purchase.String); err != nil {
			return t, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
	}
	t.Type = core.TransactionType(typ)
	t.Amount = core.Cents(amount)
	t.Category = core.Category(category)
	t.IsPaid = paid
	t.Recurrence = core.RecurrenceType(recurrence)
	if frequency.Valid {
		t.Frequency = core.Frequency(frequency.String)
	}
	if current.Valid && total.Valid {
		t.Installment = &core.InstallmentMark{Current: int(current.Int64), Total: int(total.Int64)}
	}
	return t, nil
}

func cardColumns(card *core.CardTerms) (closing, due, limit sql.NullInt64) {
	if card == nil {
		return
	}
	return sql.NullInt64{Int64: int64(card.ClosingDay), Valid: true},
		sql.NullInt64{Int64: int64(card.DueDay), Valid: true},
		sql.NullInt64{Int64: card.Limit.Cents, Valid: true}
}

// transactionArgs returns the column values in transactionColumns order.
func transactionArgs(t core.Transaction) []any {
	var purchase, frequency sql.NullString
	if !t.PurchaseDate.IsEmpty() {
		purchase = sql.NullString{String: t.PurchaseDate.String(), Valid: true}
	}
	if t.Frequency != "" {
		frequency = sql.NullString{String: string(t.Frequency), Valid: true}
	}
	var current, total sql.NullInt64
	if m := t.Installment; m != nil {
		current = sql.NullInt64{Int64: int64(m.Current), Valid: true}
		total = sql.NullInt64{Int64: int64(m.Total), Valid: true}
	}
	category := t.Category
	if category == "" {
		category = core.Other
	}
	recurrence := t.Recurrence
	if recurrence == "" {
		recurrence = core.Single
	}
	return []any{
		t.ID, t.OwnerID, t.AccountID, string(t.Type), t.Description, t.Amount.Cents,
		t.Date.String(), purchase, string(category), t.CustomCategory, t.IsPaid, string(recurrence),
		frequency, current, total,
	}
}
