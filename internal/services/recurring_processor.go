package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pocketledger/internal/core"
	applog "pocketledger/internal/log"
	"pocketledger/internal/storage"
)

// RecurringProcessor materializes recurring templates into single
// transactions when their frequency says they are due.
//
// A template row is its own first occurrence, so a template that never ran
// is measured from its start date.
type RecurringProcessor struct {
	ledger *LedgerService
	runs   storage.RunTracker
}

func NewRecurringProcessor(ledger *LedgerService, runs storage.RunTracker) *RecurringProcessor {
	return &RecurringProcessor{
		ledger: ledger,
		runs:   runs,
	}
}

// ProcessDue creates one transaction for every template due at now and
// returns how many were created. A failing template is logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.ledger == nil || p.runs == nil {
		return 0, errors.New("processor not properly initialized")
	}

	book, err := p.ledger.Book(ctx)
	if err != nil {
		return 0, err
	}

	var templates []core.Transaction
	for _, t := range book.Transactions {
		if t.Recurrence == core.Recurring {
			templates = append(templates, t)
		}
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"templates", len(templates),
		"processing_date", core.DateOf(now).String())

	created := 0
	for _, tmpl := range templates {
		fields := applog.NewFields().
			WithOperation(applog.OpMaterial).
			WithTransaction(tmpl.ID, tmpl.Description, tmpl.Amount.Cents)
		fields[applog.FieldFrequency] = string(tmpl.Frequency)

		due, err := p.isDue(ctx, tmpl, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check recurring transaction",
				fields.WithError(err, applog.ErrorTypeInternal).Args()...)
			continue
		}
		if !due {
			continue
		}

		rows, err := p.ledger.AddTransaction(ctx, occurrence(tmpl, core.DateOf(now)))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
				fields.WithError(err, applog.ErrorTypeDatabase).Args()...)
			continue
		}

		if err := p.runs.SetLastExecution(ctx, tmpl.ID, now); err != nil {
			// the rows are stored; the next run may repeat this occurrence
			slog.ErrorContext(ctx, "Failed to update last execution",
				fields.WithError(err, applog.ErrorTypeDatabase).Args()...)
		}

		created++
		fields[applog.FieldRows] = len(rows)
		slog.InfoContext(ctx, "Created transaction from recurring template", fields.Args()...)
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"created", created,
		"checked", len(templates))
	return created, nil
}

func (p *RecurringProcessor) isDue(ctx context.Context, tmpl core.Transaction, now time.Time) (bool, error) {
	checker, err := GetDuenessChecker(tmpl.Frequency)
	if err != nil {
		return false, err
	}

	start := startDate(tmpl)
	if core.DateOf(now).Before(start) {
		return false, nil
	}

	last, err := p.runs.LastExecution(ctx, tmpl.ID)
	if err != nil {
		return false, err
	}
	if last.IsZero() {
		last = start.Time
	}
	return checker.IsDue(last, now, start), nil
}

// startDate is the day the template happened. Card expenses are dated on
// their invoice, so their purchase date is used instead.
func startDate(tmpl core.Transaction) core.Date {
	if !tmpl.PurchaseDate.IsEmpty() {
		return tmpl.PurchaseDate
	}
	return tmpl.Date
}

func occurrence(tmpl core.Transaction, on core.Date) core.TransactionDraft {
	return core.TransactionDraft{
		OwnerID:        tmpl.OwnerID,
		AccountID:      tmpl.AccountID,
		Type:           tmpl.Type,
		Description:    tmpl.Description,
		Amount:         tmpl.Amount,
		Date:           on,
		Category:       tmpl.Category,
		CustomCategory: tmpl.CustomCategory,
		Recurrence:     core.Single,
	}
}
