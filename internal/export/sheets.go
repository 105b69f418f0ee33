package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"pocketledger/internal/ledger"
)

// SheetsExporter writes each month to its own tab of a Google spreadsheet,
// replacing the tab's previous content.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ Exporter = (*SheetsExporter)(nil)

// NewSheetsExporter authenticates with a service account key. Extra options
// are appended after the credentials.
func NewSheetsExporter(ctx context.Context, spreadsheetID string, credentialsJSON []byte, opts ...option.ClientOption) (*SheetsExporter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	var all []option.ClientOption
	if len(credentialsJSON) > 0 {
		all = append(all,
			option.WithCredentialsJSON(credentialsJSON),
			option.WithScopes(gsheet.SpreadsheetsScope))
	}
	all = append(all, opts...)

	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsExporter{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Export returns the A1 range that was written.
func (e *SheetsExporter) Export(ctx context.Context, year, month int, rows []ledger.StatementRow) (string, error) {
	title := SheetTitle(year, month)
	if err := e.ensureSheet(ctx, title); err != nil {
		return "", err
	}

	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, title, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", title, err)
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, toRow(Header))
	for _, r := range rows {
		values = append(values, toRow(Record(r)))
	}

	rng := fmt.Sprintf("%s!A1:J%d", title, len(values))
	resp, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Statement exported to Google Sheets",
		"spreadsheet_id", e.spreadsheetID,
		"range", rng,
		"rows", len(rows))

	if resp.UpdatedRange != "" {
		return resp.UpdatedRange, nil
	}
	return rng, nil
}

func (e *SheetsExporter) ensureSheet(ctx context.Context, title string) error {
	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	if slices.ContainsFunc(ss.Sheets, func(s *gsheet.Sheet) bool {
		return s.Properties != nil && s.Properties.Title == title
	}) {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	return nil
}

func toRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
