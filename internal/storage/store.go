// Package storage persists ledger books for the hosts.
//
// Two implementations are provided: SQLiteStore for the CLI and worker, and
// MemoryStore for tests and ephemeral runs. Both keep rows in insertion
// order, which is the order Load returns them in.
package storage

import (
	"context"
	"errors"
	"time"

	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
)

var ErrNotFound = errors.New("record not found")

type (
	// BookStore loads and persists accounts and transactions.
	BookStore interface {
		// Load returns every account and transaction of ownerID.
		Load(ctx context.Context, ownerID string) (ledger.Book, error)

		InsertAccount(ctx context.Context, acc core.Account) error
		UpdateAccount(ctx context.Context, acc core.Account) error
		// DeleteAccount removes the account and all of its transactions.
		DeleteAccount(ctx context.Context, id string) error

		// InsertTransactions stores a batch atomically.
		InsertTransactions(ctx context.Context, txs []core.Transaction) error
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	// RunTracker remembers when each recurring template was last materialized.
	RunTracker interface {
		// LastExecution returns the zero time for templates never run.
		LastExecution(ctx context.Context, templateID string) (time.Time, error)
		SetLastExecution(ctx context.Context, templateID string, at time.Time) error
	}

	// NotificationLog deduplicates published notifications per day.
	NotificationLog interface {
		WasSent(ctx context.Context, id string, day core.Date) (bool, error)
		// MarkSent records id for day and reports whether it was new.
		MarkSent(ctx context.Context, id string, day core.Date) (bool, error)
	}

	Store interface {
		BookStore
		RunTracker
		NotificationLog
		Close() error
	}
)
