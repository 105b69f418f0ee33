package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"pocketledger/internal/config"
	"pocketledger/internal/core"
	"pocketledger/internal/services"
)

type txAddCmd struct {
	account      string
	typ          string
	description  string
	amount       string
	date         string
	category     string
	custom       string
	paid         bool
	recurrence   string
	frequency    string
	installments int
}

func (*txAddCmd) Name() string     { return "tx-add" }
func (*txAddCmd) Synopsis() string { return "record an income or expense" }
func (*txAddCmd) Usage() string {
	return `ledger tx-add -account <id> -type <income|expense> -amount <amount> [-desc <text>] [-date YYYY-MM-DD]
       [-category <category>] [-custom <label>] [-paid]
       [-recurrence single|recurring|installment] [-frequency daily|weekly|monthly|yearly] [-installments <n>]

  Records a transaction and prints the ids of the rows created. Credit card
  expenses are dated on the invoice they fall in; installment plans create
  one row per installment.
`
}

func (c *txAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id.")
	f.StringVar(&c.typ, "type", string(core.Expense), "Transaction type (income or expense).")
	f.StringVar(&c.description, "desc", "", "Description.")
	f.StringVar(&c.amount, "amount", "", "Positive amount, e.g. 89.90.")
	f.StringVar(&c.date, "date", "", "Purchase date (defaults to today).")
	f.StringVar(&c.category, "category", string(core.Other), "Category.")
	f.StringVar(&c.custom, "custom", "", "Custom category label, used with -category other.")
	f.BoolVar(&c.paid, "paid", false, "Mark the expense as already paid.")
	f.StringVar(&c.recurrence, "recurrence", string(core.Single), "Recurrence type.")
	f.StringVar(&c.frequency, "frequency", "", "Frequency of a recurring transaction.")
	f.IntVar(&c.installments, "installments", 0, "Number of installments.")
}

func (c *txAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, args, func(_ *config.Config, svc *services.LedgerService) error {
		amount, err := core.ParseMoney(c.amount)
		if err != nil {
			return fmt.Errorf("%w: invalid amount %q", errUsage, c.amount)
		}
		date, err := parseDate(c.date)
		if err != nil {
			return err
		}

		rows, err := svc.AddTransaction(ctx, core.TransactionDraft{
			AccountID:        c.account,
			Type:             core.TransactionType(c.typ),
			Description:      c.description,
			Amount:           amount,
			Date:             date,
			Category:         core.Category(c.category),
			CustomCategory:   c.custom,
			IsPaid:           c.paid,
			Recurrence:       core.RecurrenceType(c.recurrence),
			Frequency:        core.Frequency(c.frequency),
			InstallmentTotal: c.installments,
		})
		if err != nil {
			return err
		}
		for _, r := range rows {
			fmt.Printf("%s\t%s\t%s\n", r.ID, r.Date, r.Amount)
		}
		return nil
	})
}

type txListCmd struct {
	month string
	all   bool
}

func (*txListCmd) Name() string     { return "tx-list" }
func (*txListCmd) Synopsis() string { return "list the transactions of a month" }
func (*txListCmd) Usage() string {
	return `ledger tx-list [-month YYYY-MM] [-all]

  Lists the transactions dated in a month, newest first. Credit card expenses
  are listed on their invoice due date.
`
}

func (c *txListCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "Month to list (defaults to the current month).")
	f.BoolVar(&c.all, "all", false, "List every transaction in insertion order.")
}

func (c *txListCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, args, func(_ *config.Config, svc *services.LedgerService) error {
		if c.all {
			book, err := svc.Book(ctx)
			if err != nil {
				return err
			}
			for _, t := range book.Transactions {
				fmt.Printf("%-40s %s %-8s %-30s %12s %s\n", t.ID, t.Date, t.Type, t.Description, t.Amount, t.Label())
			}
			return nil
		}

		now := today()
		year, month, err := parseMonth(c.month, now)
		if err != nil {
			return err
		}
		report, err := svc.Report(ctx, year, month, now)
		if err != nil {
			return err
		}
		for _, r := range report.Statement {
			fmt.Printf("%-40s %s %-30s %-20s %-14s %12s %s\n",
				r.TransactionID, r.DueDate, r.Description, r.AccountName, r.Category, r.SignedAmount, r.Status)
		}
		return nil
	})
}

type txDeleteCmd struct{}

func (*txDeleteCmd) Name() string     { return "tx-delete" }
func (*txDeleteCmd) Synopsis() string { return "delete a single transaction" }
func (*txDeleteCmd) Usage() string {
	return `ledger tx-delete <transaction-id>

  Deletes one row. Other installments of the same plan are kept.
`
}

func (*txDeleteCmd) SetFlags(*flag.FlagSet) {}

func (*txDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, args, func(_ *config.Config, svc *services.LedgerService) error {
		id, err := oneArg(f.Args(), "transaction id")
		if err != nil {
			return err
		}
		if err := svc.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "deleted", id)
		return nil
	})
}

type txPayCmd struct{}

func (*txPayCmd) Name() string     { return "tx-pay" }
func (*txPayCmd) Synopsis() string { return "toggle the paid flag of an expense" }
func (*txPayCmd) Usage() string {
	return `ledger tx-pay <transaction-id>
`
}

func (*txPayCmd) SetFlags(*flag.FlagSet) {}

func (*txPayCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, args, func(_ *config.Config, svc *services.LedgerService) error {
		id, err := oneArg(f.Args(), "transaction id")
		if err != nil {
			return err
		}
		tx, err := svc.TogglePaid(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case tx.Type != core.Expense:
			fmt.Println(id, "is an income, nothing to pay")
		case tx.IsPaid:
			fmt.Println(id, "paid")
		default:
			fmt.Println(id, "pending")
		}
		return nil
	})
}
