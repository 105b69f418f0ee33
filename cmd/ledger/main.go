// Command ledger manages accounts and transactions of a personal ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"pocketledger/internal/cli"
	applog "pocketledger/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// command output goes to stdout, logs to stderr
	logger := cli.SetupLogger(cfg, applog.ComponentApp, os.Stderr)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()
	ctx := applog.IntoContext(context.Background(), logger)
	os.Exit(int(commander.Execute(ctx, cfg)))
}

func register(c *subcommands.Commander) {
	c.Register(&accountAddCmd{}, "accounts")
	c.Register(&accountListCmd{}, "accounts")
	c.Register(&accountDeleteCmd{}, "accounts")

	c.Register(&txAddCmd{}, "transactions")
	c.Register(&txListCmd{}, "transactions")
	c.Register(&txDeleteCmd{}, "transactions")
	c.Register(&txPayCmd{}, "transactions")

	c.Register(&reportCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")

	c.Register(&notificationsCmd{}, "notifications")
	c.Register(&watchCmd{}, "notifications")
}
