package ledger

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"pocketledger/internal/core"
)

// Percent is a percentage value, 100 meaning 100%.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.0f%%", float64(p))
}

// percentOf returns part/total*100, or 0 when total is not positive.
func percentOf(part, total core.Money) Percent {
	if total.Cents <= 0 {
		return 0
	}
	v := decimal.NewFromInt(part.Cents).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total.Cents))
	return Percent(v.InexactFloat64())
}

type (
	// CreditUsage describes how much of a credit card's limit is taken by
	// unpaid expenses.
	CreditUsage struct {
		Limit     core.Money
		Used      core.Money
		Available core.Money // negative when over the limit
		Percent   Percent    // raw utilization, may exceed 100
	}

	MonthlyRollup struct {
		Year        int
		Month       int
		Income      core.Money
		Spend       core.Money // expenses outside the investments category
		Investments core.Money
		Net         core.Money
	}

	MonthTotals struct {
		Month   int // 1-12
		Income  core.Money
		Expense core.Money
	}

	CategoryShare struct {
		Category string
		Amount   core.Money
		Percent  Percent
	}

	AccountShare struct {
		AccountID string
		Name      string
		Amount    core.Money
		Percent   Percent
	}

	// Overview is the dashboard summary: the combined balance of all accounts
	// and the current month's flows.
	Overview struct {
		TotalBalance   core.Money
		MonthlyIncome  core.Money
		MonthlyExpense core.Money
		MonthlyNet     core.Money
	}

	// StatementRow is one line of a monthly report.
	StatementRow struct {
		TransactionID string
		DueDate       core.Date
		PurchaseDate  core.Date
		Description   string
		AccountName   string
		AccountType   string
		Category      string
		Type          core.TransactionType
		SignedAmount  core.Money // negative for expenses
		Currency      string
		Status        string // "paid", "pending" or "" for incomes
	}
)

// DisplayPercent is the utilization clamped to 100 for progress bars.
func (u CreditUsage) DisplayPercent() Percent {
	if u.Percent > 100 {
		return 100
	}
	return u.Percent
}

// OverLimit reports whether unpaid expenses exceed the limit.
func (u CreditUsage) OverLimit() bool {
	return u.Limit.IsPositive() && u.Used.Cents > u.Limit.Cents
}

// Balance returns the current balance of a non-card account: the initial
// balance plus all incomes minus all expenses, paid or not. Credit cards
// ignore their initial balance.
func Balance(acc core.Account, txs []core.Transaction) core.Money {
	balance := acc.InitialBalance
	if acc.IsCreditCard() {
		balance = core.Money{}
	}
	for _, t := range txs {
		if t.AccountID != acc.ID {
			continue
		}
		switch t.Type {
		case core.Income:
			balance = balance.Add(t.Amount)
		case core.Expense:
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

// CardUsage returns the credit usage of an account. Accounts without card
// terms report a zero limit and 0%.
func CardUsage(acc core.Account, txs []core.Transaction) CreditUsage {
	var usage CreditUsage
	if acc.Card != nil {
		usage.Limit = acc.Card.Limit
	}
	for _, t := range txs {
		if t.AccountID == acc.ID && t.Type == core.Expense && !t.IsPaid {
			usage.Used = usage.Used.Add(t.Amount)
		}
	}
	usage.Available = usage.Limit.Sub(usage.Used)
	usage.Percent = percentOf(usage.Used, usage.Limit)
	return usage
}

// Monthly aggregates the transactions dated in year/month. Transactions of
// accounts missing from accounts are skipped.
func Monthly(accounts []core.Account, txs []core.Transaction, year, month int) MonthlyRollup {
	known := accountsByID(accounts)
	r := MonthlyRollup{Year: year, Month: month}
	for _, t := range txs {
		if _, ok := known[t.AccountID]; !ok || !t.Date.InMonth(year, month) {
			continue
		}
		switch {
		case t.Type == core.Income:
			r.Income = r.Income.Add(t.Amount)
		case t.Type == core.Expense && t.Category == core.Investments:
			r.Investments = r.Investments.Add(t.Amount)
		case t.Type == core.Expense:
			r.Spend = r.Spend.Add(t.Amount)
		}
	}
	r.Net = r.Income.Sub(r.Spend).Sub(r.Investments)
	return r
}

// Yearly returns twelve monthly buckets of income and expense totals for year.
func Yearly(txs []core.Transaction, year int) [12]MonthTotals {
	var months [12]MonthTotals
	for i := range months {
		months[i].Month = i + 1
	}
	for _, t := range txs {
		if t.Date.Year() != year {
			continue
		}
		m := &months[t.Date.Month()-1]
		switch t.Type {
		case core.Income:
			m.Income = m.Income.Add(t.Amount)
		case core.Expense:
			m.Expense = m.Expense.Add(t.Amount)
		}
	}
	return months
}

// TopCategories is how many categories ByCategory returns.
const TopCategories = 5

// ByCategory groups expenses by category label, largest first, and keeps the
// top five. Percentages are relative to all expenses.
func ByCategory(txs []core.Transaction) []CategoryShare {
	totals := map[string]core.Money{}
	var all core.Money
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		label := t.Label()
		totals[label] = totals[label].Add(t.Amount)
		all = all.Add(t.Amount)
	}

	shares := make([]CategoryShare, 0, len(totals))
	for label, amount := range totals {
		shares = append(shares, CategoryShare{Category: label, Amount: amount})
	}
	slices.SortFunc(shares, func(a, b CategoryShare) int {
		if c := cmp.Compare(b.Amount.Cents, a.Amount.Cents); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	if len(shares) > TopCategories {
		shares = shares[:TopCategories]
	}
	for i := range shares {
		shares[i].Percent = percentOf(shares[i].Amount, all)
	}
	return shares
}

// ByAccount totals expenses per account in account order, leaving out
// accounts without expenses.
func ByAccount(accounts []core.Account, txs []core.Transaction) []AccountShare {
	spent := map[string]core.Money{}
	for _, t := range txs {
		if t.Type == core.Expense {
			spent[t.AccountID] = spent[t.AccountID].Add(t.Amount)
		}
	}

	var shares []AccountShare
	var all core.Money
	for _, a := range accounts {
		amount := spent[a.ID]
		if !amount.IsPositive() {
			continue
		}
		shares = append(shares, AccountShare{AccountID: a.ID, Name: a.Name, Amount: amount})
		all = all.Add(amount)
	}
	for i := range shares {
		shares[i].Percent = percentOf(shares[i].Amount, all)
	}
	return shares
}

// Summarize computes the dashboard overview as of today.
func Summarize(accounts []core.Account, txs []core.Transaction, today core.Date) Overview {
	var o Overview
	known := accountsByID(accounts)
	for _, a := range accounts {
		if !a.IsCreditCard() {
			o.TotalBalance = o.TotalBalance.Add(a.InitialBalance)
		}
	}
	for _, t := range txs {
		if _, ok := known[t.AccountID]; !ok {
			continue
		}
		thisMonth := t.Date.InMonth(today.Year(), today.Month())
		switch t.Type {
		case core.Income:
			o.TotalBalance = o.TotalBalance.Add(t.Amount)
			if thisMonth {
				o.MonthlyIncome = o.MonthlyIncome.Add(t.Amount)
			}
		case core.Expense:
			o.TotalBalance = o.TotalBalance.Sub(t.Amount)
			if thisMonth {
				o.MonthlyExpense = o.MonthlyExpense.Add(t.Amount)
			}
		}
	}
	o.MonthlyNet = o.MonthlyIncome.Sub(o.MonthlyExpense)
	return o
}

// Statement lists the transactions dated in year/month, newest first, with
// the account details a report needs. Unknown accounts are shown as "N/A".
func Statement(accounts []core.Account, txs []core.Transaction, year, month int, defaultCurrency string) []StatementRow {
	known := accountsByID(accounts)
	var rows []StatementRow
	for _, t := range txs {
		if !t.Date.InMonth(year, month) {
			continue
		}
		row := StatementRow{
			TransactionID: t.ID,
			DueDate:       t.Date,
			PurchaseDate:  t.PurchaseDate,
			Description:   t.Description,
			AccountName:   "N/A",
			AccountType:   "N/A",
			Category:      t.Label(),
			Type:          t.Type,
			SignedAmount:  t.Amount,
			Currency:      defaultCurrency,
		}
		if acc, ok := known[t.AccountID]; ok {
			row.AccountName = acc.Name
			row.AccountType = string(acc.Type)
			row.Currency = acc.Currency
		}
		if t.Type == core.Expense {
			row.SignedAmount = t.Amount.Neg()
			row.Status = "pending"
			if t.IsPaid {
				row.Status = "paid"
			}
		}
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a, b StatementRow) int {
		return b.DueDate.Compare(a.DueDate.Time)
	})
	return rows
}
