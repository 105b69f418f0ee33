package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"

	"pocketledger/internal/cli"
	"pocketledger/internal/config"
	"pocketledger/internal/core"
	"pocketledger/internal/services"
)

var errUsage = errors.New("usage")

// withLedger opens the configured store, runs fn against it and closes it.
func withLedger(ctx context.Context, args []interface{}, fn func(*config.Config, *services.LedgerService) error) subcommands.ExitStatus {
	cfg, ok := configFrom(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: missing configuration")
		return subcommands.ExitFailure
	}

	store, err := cli.OpenStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	svc := cli.NewLedgerService(cfg, store)
	defer svc.Close()

	if err := fn(cfg, svc); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, errUsage) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func configFrom(args []interface{}) (*config.Config, bool) {
	if len(args) == 0 {
		return nil, false
	}
	cfg, ok := args[0].(*config.Config)
	return cfg, ok && cfg != nil
}

func today() core.Date {
	return core.DateOf(time.Now())
}

// parseMonth reads YYYY-MM. An empty string is the month of now.
func parseMonth(s string, now core.Date) (year, month int, err error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	y, m, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: month must be YYYY-MM, got %q", errUsage, s)
	}
	year, err = strconv.Atoi(y)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid year %q", errUsage, y)
	}
	month, err = strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: invalid month %q", errUsage, m)
	}
	return year, month, nil
}

// parseDate reads YYYY-MM-DD. An empty string is today.
func parseDate(s string) (core.Date, error) {
	if s == "" {
		return today(), nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	return d, nil
}

// oneArg returns the single positional argument of a command.
func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: expected exactly one %s", errUsage, what)
	}
	return args[0], nil
}
