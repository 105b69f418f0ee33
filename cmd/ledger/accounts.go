package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"pocketledger/internal/config"
	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
	"pocketledger/internal/services"
)

type accountAddCmd struct {
	name     string
	typ      string
	balance  string
	currency string
	closing  int
	due      int
	limit    string
}

func (*accountAddCmd) Name() string     { return "account-add" }
func (*accountAddCmd) Synopsis() string { return "create an account" }
func (*accountAddCmd) Usage() string {
	return `ledger account-add -name <name> -type <checking|savings|investment|credit_card> [-balance <amount>] [-currency <code>]
       ledger account-add -name <name> -type credit_card -closing <day> -due <day> -limit <amount>

  Creates an account. Credit cards need closing and due days and a limit, and
  always start from a zero balance.
`
}

func (c *accountAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name, usually the bank.")
	f.StringVar(&c.typ, "type", string(core.Checking), "Account type.")
	f.StringVar(&c.balance, "balance", "0", "Initial balance, e.g. 1500.00 (ignored for credit cards).")
	f.StringVar(&c.currency, "currency", "", "ISO currency code. Defaults to DEFAULT_CURRENCY.")
	f.IntVar(&c.closing, "closing", 0, "Credit card statement closing day (1-31).")
	f.IntVar(&c.due, "due", 0, "Credit card invoice due day (1-31).")
	f.StringVar(&c.limit, "limit", "", "Credit card limit.")
}

func (c *accountAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, args, func(cfg *config.Config, svc *services.LedgerService) error {
		balance, err := parseBalance(c.balance)
		if err != nil {
			return err
		}
		draft := core.AccountDraft{
			Name:           c.name,
			Type:           core.AccountType(c.typ),
			InitialBalance: balance,
			Currency:       c.currency,
		}
		if draft.Currency == "" {
			draft.Currency = cfg.DefaultCurrency
		}
		if draft.Type == core.CreditCard {
			limit, err := core.ParseMoney(c.limit)
			if err != nil {
				return fmt.Errorf("%w: invalid limit %q", errUsage, c.limit)
			}
			draft.Card = &core.CardTerms{ClosingDay: c.closing, DueDay: c.due, Limit: limit}
		}

		acc, err := svc.AddAccount(ctx, draft)
		if err != nil {
			return err
		}
		fmt.Println(acc.ID)
		return nil
	})
}

// parseBalance accepts zero and negative balances, unlike amounts.
func parseBalance(s string) (core.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: invalid balance %q", errUsage, s)
	}
	return core.Cents(d.Shift(2).Round(0).IntPart()), nil
}

type accountListCmd struct{}

func (*accountListCmd) Name() string     { return "account-list" }
func (*accountListCmd) Synopsis() string { return "list accounts with their balance or card usage" }
func (*accountListCmd) Usage() string {
	return `ledger account-list

  Lists every account. Regular accounts show their current balance, credit
  cards show the share of the limit taken by unpaid expenses.
`
}

func (*accountListCmd) SetFlags(*flag.FlagSet) {}

func (*accountListCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, args, func(_ *config.Config, svc *services.LedgerService) error {
		book, err := svc.Book(ctx)
		if err != nil {
			return err
		}
		for _, acc := range book.Accounts {
			if acc.IsCreditCard() {
				u := ledger.CardUsage(acc, book.Transactions)
				fmt.Printf("%-40s %-24s %-12s %s of %s used (%s)\n",
					acc.ID, acc.Name, acc.Type,
					core.FormatMoney(u.Used, acc.Currency),
					core.FormatMoney(u.Limit, acc.Currency),
					u.Percent)
				continue
			}
			fmt.Printf("%-40s %-24s %-12s %s\n",
				acc.ID, acc.Name, acc.Type,
				core.FormatMoney(ledger.Balance(acc, book.Transactions), acc.Currency))
		}
		return nil
	})
}

type accountDeleteCmd struct{}

func (*accountDeleteCmd) Name() string     { return "account-delete" }
func (*accountDeleteCmd) Synopsis() string { return "delete an account and all of its transactions" }
func (*accountDeleteCmd) Usage() string {
	return `ledger account-delete <account-id>
`
}

func (*accountDeleteCmd) SetFlags(*flag.FlagSet) {}

func (*accountDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, args, func(_ *config.Config, svc *services.LedgerService) error {
		id, err := oneArg(f.Args(), "account id")
		if err != nil {
			return err
		}
		if err := svc.DeleteAccount(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "deleted", id)
		return nil
	})
}
