package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"pocketledger/internal/amqp"
	"pocketledger/internal/cli"
	"pocketledger/internal/config"
	applog "pocketledger/internal/log"
	"pocketledger/internal/services"
	"pocketledger/internal/storage"
	"pocketledger/internal/worker"
)

type notificationsCmd struct {
	publish bool
}

func (*notificationsCmd) Name() string     { return "notifications" }
func (*notificationsCmd) Synopsis() string { return "list upcoming bills and credit limit alerts" }
func (*notificationsCmd) Usage() string {
	return `ledger notifications [-publish]

  Lists unpaid expenses due within a week (overdue ones included) followed by
  credit cards above CREDIT_CARD_ALERT_THRESHOLD. With -publish they are also
  sent to AMQP_URL, once per notification and day.
`
}

func (c *notificationsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.publish, "publish", false, "Publish the notifications to the AMQP exchange.")
}

func (c *notificationsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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

	if err := c.run(ctx, cfg, svc, store); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *notificationsCmd) run(ctx context.Context, cfg *config.Config, svc *services.LedgerService, sent storage.NotificationLog) error {
	now := today()
	notes, err := svc.Notifications(ctx, now)
	if err != nil {
		return err
	}
	for _, n := range notes {
		msg := amqp.NewNotificationMessage(svc.OwnerID(), cfg.DefaultCurrency, n)
		fmt.Println(worker.Render(msg))
	}
	fmt.Fprintf(os.Stderr, "%d notification(s)\n", len(notes))

	if !c.publish {
		return nil
	}
	client := cli.ConnectAMQP(cfg, applog.FromContext(ctx))
	if client == nil {
		return errors.New("AMQP is not available")
	}
	defer client.Close()

	published, err := services.NewNotifier(svc, sent, client).Publish(ctx, now)
	fmt.Fprintf(os.Stderr, "%d published\n", published)
	return err
}

type watchCmd struct{}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "print notifications as they arrive on the queue" }
func (*watchCmd) Usage() string {
	return `ledger watch

  Consumes AMQP_QUEUE and prints every notification until interrupted.
`
}

func (*watchCmd) SetFlags(*flag.FlagSet) {}

func (*watchCmd) Execute(parent context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, ok := configFrom(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: missing configuration")
		return subcommands.ExitFailure
	}
	logger := applog.FromContext(parent).WithComponent(applog.ComponentAMQP)

	client := cli.ConnectAMQP(cfg, logger)
	if client == nil {
		fmt.Fprintln(os.Stderr, "Error: AMQP is not available")
		return subcommands.ExitFailure
	}

	ctx, done := cli.GracefulShutdown(logger, 5*time.Second, func(context.Context) {
		client.Close()
	})
	handler := worker.NewNotificationWorker(os.Stdout)
	err := client.ConsumeNotifications(ctx, handler.HandleNotification)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	<-done
	return subcommands.ExitSuccess
}
