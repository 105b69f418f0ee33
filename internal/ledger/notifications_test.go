package ledger

import (
	"testing"

	"pocketledger/internal/core"
)

func TestDeriveNotifications(t *testing.T) {
	today := core.MustParseDate("2024-04-01")
	accounts := []core.Account{checking(), nubank()}
	txs := []core.Transaction{
		expense("rent", "acc-itau", 150000, "2024-04-04", core.Housing, false),
		expense("gym", "acc-itau", 9000, "2024-03-30", core.Health, false),
		expense("paid", "acc-itau", 1000, "2024-04-02", core.Food, true),
		expense("late", "acc-itau", 1000, "2024-04-09", core.Food, false),
		expense("edge", "acc-itau", 1000, "2024-04-08", core.Food, false),
		income("salary", "acc-itau", 500000, "2024-04-02"),
		expense("card", "acc-nubank", 170000, "2024-05-04", core.Food, false),
	}

	got := DeriveNotifications(accounts, txs, 80, today)

	want := []struct {
		id      string
		kind    NotificationKind
		details string
		urgent  bool
	}{
		{"gym", BillNotification, "overdue by 2 days", true},
		{"rent", BillNotification, "due in 3 days", false},
		{"edge", BillNotification, "due in 7 days", false},
		{"limit-acc-nubank", LimitNotification, "You have used 85% of your limit.", true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d notifications, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		n := got[i]
		if n.ID != w.id || n.Kind != w.kind || n.Details != w.details || n.Urgent != w.urgent {
			t.Errorf("notification %d = %+v, want %+v", i, n, w)
		}
	}
	if got[1].TransactionID != "rent" || got[1].Amount.Cents != 150000 {
		t.Errorf("bill does not carry its transaction: %+v", got[1])
	}
	if got[3].Message != "Nubank credit limit almost reached!" {
		t.Errorf("limit message = %q", got[3].Message)
	}
}

func TestDeriveNotificationsThreshold(t *testing.T) {
	today := core.MustParseDate("2024-04-01")
	accounts := []core.Account{nubank()}
	txs := []core.Transaction{expense("card", "acc-nubank", 170000, "2024-05-04", core.Food, false)}

	tests := []struct {
		name      string
		threshold float64
		want      int
	}{
		{"below threshold", 90, 0},
		{"exactly at threshold", 85, 1},
		{"above threshold", 80, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveNotifications(accounts, txs, tt.threshold, today); len(got) != tt.want {
				t.Errorf("got %d notifications, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDeriveNotificationsMarkPaid(t *testing.T) {
	today := core.MustParseDate("2024-04-01")
	book := testBook()
	book.Transactions = []core.Transaction{expense("rent", "acc-itau", 150000, "2024-04-04", core.Housing, false)}

	notes := DeriveNotifications(book.Accounts, book.Transactions, 80, today)
	if len(notes) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notes))
	}

	book, _, err := newTestEngine(0).TogglePaid(book, notes[0].TransactionID)
	if err != nil {
		t.Fatalf("TogglePaid() error = %v", err)
	}
	if notes := DeriveNotifications(book.Accounts, book.Transactions, 80, today); len(notes) != 0 {
		t.Errorf("paid bill still notified: %+v", notes)
	}
}
