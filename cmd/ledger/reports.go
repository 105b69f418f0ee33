package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"pocketledger/internal/cli"
	"pocketledger/internal/config"
	"pocketledger/internal/core"
	"pocketledger/internal/services"
)

type reportCmd struct {
	month string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "show the monthly and yearly summary" }
func (*reportCmd) Usage() string {
	return `ledger report [-month YYYY-MM]

  Prints the overview, the month's rollup, the top spending categories, the
  spending per account, the credit card usage and the year by month.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "Month to report on (defaults to the current month).")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, args, func(cfg *config.Config, svc *services.LedgerService) error {
		now := today()
		year, month, err := parseMonth(c.month, now)
		if err != nil {
			return err
		}
		r, err := svc.Report(ctx, year, month, now)
		if err != nil {
			return err
		}
		printReport(r, cfg.DefaultCurrency)
		return nil
	})
}

func printReport(r services.Report, currency string) {
	money := func(m core.Money) string { return core.FormatMoney(m, currency) }

	fmt.Println("Overview")
	fmt.Printf("  Total balance:   %s\n", money(r.Overview.TotalBalance))
	fmt.Printf("  Income (month):  %s\n", money(r.Overview.MonthlyIncome))
	fmt.Printf("  Expense (month): %s\n", money(r.Overview.MonthlyExpense))
	fmt.Printf("  Net (month):     %s\n", money(r.Overview.MonthlyNet))

	fmt.Printf("\n%04d-%02d\n", r.Year, r.Month)
	fmt.Printf("  Income:      %s\n", money(r.Monthly.Income))
	fmt.Printf("  Spend:       %s\n", money(r.Monthly.Spend))
	fmt.Printf("  Investments: %s\n", money(r.Monthly.Investments))
	fmt.Printf("  Net:         %s\n", money(r.Monthly.Net))

	if len(r.Categories) > 0 {
		fmt.Println("\nTop categories")
		for _, c := range r.Categories {
			fmt.Printf("  %-20s %14s %5s\n", c.Category, money(c.Amount), c.Percent)
		}
	}
	if len(r.Accounts) > 0 {
		fmt.Println("\nSpending per account")
		for _, a := range r.Accounts {
			fmt.Printf("  %-24s %14s %5s\n", a.Name, money(a.Amount), a.Percent)
		}
	}
	if len(r.Cards) > 0 {
		fmt.Println("\nCredit cards")
		for _, c := range r.Cards {
			note := ""
			if c.Usage.OverLimit() {
				note = " over limit"
			}
			fmt.Printf("  %-24s %s of %s (%s)%s\n", c.Account.Name,
				money(c.Usage.Used), money(c.Usage.Limit), c.Usage.Percent, note)
		}
	}

	fmt.Printf("\n%d by month\n", r.Year)
	for _, m := range r.Yearly {
		if m.Income.IsZero() && m.Expense.IsZero() {
			continue
		}
		fmt.Printf("  %-9s in %14s  out %14s\n", time.Month(m.Month), money(m.Income), money(m.Expense))
	}
}

type exportCmd struct {
	month string
	to    string
	dir   string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export a monthly statement to CSV or Google Sheets" }
func (*exportCmd) Usage() string {
	return `ledger export [-month YYYY-MM] [-to csv|sheets] [-dir <directory>]

  Writes the month's statement. CSV files are named ledger-report-YYYY-MM.csv;
  Google Sheets exports replace a tab named "YYYY-MM Report" in
  GOOGLE_SPREADSHEET_ID.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "Month to export (defaults to the current month).")
	f.StringVar(&c.to, "to", cli.ExportCSV, "Export target (csv or sheets).")
	f.StringVar(&c.dir, "dir", ".", "Output directory for CSV files.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, args, func(cfg *config.Config, svc *services.LedgerService) error {
		year, month, err := parseMonth(c.month, today())
		if err != nil {
			return err
		}
		exporter, err := cli.NewExporter(ctx, cfg, c.to, c.dir)
		if err != nil {
			return err
		}
		ref, err := svc.Export(ctx, exporter, year, month)
		if err != nil {
			return err
		}
		fmt.Println(ref)
		return nil
	})
}
