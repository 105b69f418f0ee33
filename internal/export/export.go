// Package export renders monthly statements for spreadsheets.
package export

import (
	"context"
	"fmt"

	"pocketledger/internal/ledger"
)

// Header is the column layout shared by every export format.
var Header = []string{
	"Due date", "Purchase date", "Description", "Account", "Account type",
	"Category", "Type", "Amount", "Currency", "Status",
}

// Exporter publishes the statement of one month somewhere.
type Exporter interface {
	Export(ctx context.Context, year, month int, rows []ledger.StatementRow) (ref string, err error)
}

// Record renders one statement row in Header order. Amounts are signed major
// units with two decimals.
func Record(r ledger.StatementRow) []string {
	return []string{
		r.DueDate.String(),
		r.PurchaseDate.String(),
		r.Description,
		r.AccountName,
		r.AccountType,
		r.Category,
		string(r.Type),
		r.SignedAmount.String(),
		r.Currency,
		r.Status,
	}
}

// FileName is the conventional report file name, e.g. ledger-report-2024-03.csv.
func FileName(year, month int, ext string) string {
	return fmt.Sprintf("ledger-report-%d-%02d.%s", year, month, ext)
}

// SheetTitle names the tab a month is exported to.
func SheetTitle(year, month int) string {
	return fmt.Sprintf("%d-%02d Report", year, month)
}
