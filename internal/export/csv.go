package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pocketledger/internal/ledger"
)

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []ledger.StatementRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(Record(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.TransactionID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVExporter writes reports as files under Dir.
type CSVExporter struct {
	Dir string
}

var _ Exporter = CSVExporter{}

// Export writes the month to Dir/FileName(year, month, "csv") and returns
// the file path.
func (e CSVExporter) Export(_ context.Context, year, month int, rows []ledger.StatementRow) (string, error) {
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(e.Dir, FileName(year, month, "csv"))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
