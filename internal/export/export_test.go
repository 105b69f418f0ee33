package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"

	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
)

func statementRows() []ledger.StatementRow {
	return []ledger.StatementRow{
		{
			TransactionID: "txn-2",
			DueDate:       core.MustParseDate("2024-04-04"),
			PurchaseDate:  core.MustParseDate("2024-03-15"),
			Description:   "Notebook, 15\" (1/12)",
			AccountName:   "Nubank",
			AccountType:   "credit_card",
			Category:      "education",
			Type:          core.Expense,
			SignedAmount:  core.Cents(-10000),
			Currency:      "BRL",
			Status:        "pending",
		},
		{
			TransactionID: "txn-1",
			DueDate:       core.MustParseDate("2024-04-01"),
			Description:   "Salary",
			AccountName:   "N/A",
			AccountType:   "N/A",
			Category:      "salary",
			Type:          core.Income,
			SignedAmount:  core.Cents(500000),
			Currency:      "BRL",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, statementRows()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if strings.Join(records[0], "|") != strings.Join(Header, "|") {
		t.Errorf("header = %v", records[0])
	}

	want := []string{"2024-04-04", "2024-03-15", "Notebook, 15\" (1/12)", "Nubank", "credit_card", "education", "expense", "-100.00", "BRL", "pending"}
	if strings.Join(records[1], "|") != strings.Join(want, "|") {
		t.Errorf("expense record = %v, want %v", records[1], want)
	}
	if records[2][1] != "" || records[2][7] != "5000.00" || records[2][9] != "" {
		t.Errorf("income record = %v", records[2])
	}
}

func TestCSVExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := CSVExporter{Dir: dir}.Export(context.Background(), 2024, 4, statementRows())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if filepath.Base(path) != "ledger-report-2024-04.csv" {
		t.Errorf("path = %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(b), "Due date,Purchase date,") {
		t.Errorf("unexpected content: %s", b)
	}
}

// fakeSheets serves the handful of Sheets API calls the exporter makes.
type fakeSheets struct {
	mu      sync.Mutex
	titles  []string
	cleared []string
	values  [][]any
	added   int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/v4/spreadsheets/sheet-1"):
		sheets := []map[string]any{}
		for _, title := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": title}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			f.added++
		}
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1"})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.cleared = append(f.cleared, path)
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1"})
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		if r.URL.Query().Get("valueInputOption") != "USER_ENTERED" {
			http.Error(w, `{"error":{"code":400,"message":"bad input option"}}`, http.StatusBadRequest)
			return
		}
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr)
		f.values = vr.Values
		json.NewEncoder(w).Encode(map[string]any{"updatedRange": "'2024-04 Report'!A1:J3"})
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newFakeExporter(t *testing.T, fake *fakeSheets) *SheetsExporter {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	e, err := NewSheetsExporter(context.Background(), "sheet-1", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewSheetsExporter() error = %v", err)
	}
	return e
}

func TestSheetsExporter(t *testing.T) {
	fake := &fakeSheets{}
	e := newFakeExporter(t, fake)

	ref, err := e.Export(context.Background(), 2024, 4, statementRows())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if ref != "'2024-04 Report'!A1:J3" {
		t.Errorf("ref = %q", ref)
	}
	if fake.added != 1 || fake.titles[0] != "2024-04 Report" {
		t.Errorf("sheets added = %d %v", fake.added, fake.titles)
	}
	if len(fake.cleared) != 1 {
		t.Errorf("clear calls = %d, want 1", len(fake.cleared))
	}
	if len(fake.values) != 3 || fake.values[0][0] != "Due date" || fake.values[1][7] != "-100.00" {
		t.Errorf("values = %v", fake.values)
	}

	if _, err := e.Export(context.Background(), 2024, 4, statementRows()); err != nil {
		t.Fatalf("second Export() error = %v", err)
	}
	if fake.added != 1 {
		t.Errorf("existing tab added again: %d", fake.added)
	}
}

func TestNewSheetsExporterRequiresSpreadsheet(t *testing.T) {
	if _, err := NewSheetsExporter(context.Background(), "", nil, option.WithoutAuthentication()); err == nil {
		t.Error("NewSheetsExporter() without id should fail")
	}
}
