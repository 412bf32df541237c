package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/jawher/mow.cli"

	memjobqueue "github.com/denhac/membership-sync/internal/adapters/memory/jobqueue"
	"github.com/denhac/membership-sync/internal/adapters/rabbitmq"
	"github.com/denhac/membership-sync/internal/bootstrap"
	platformclock "github.com/denhac/membership-sync/internal/platform/clock"
	"github.com/denhac/membership-sync/internal/platform/config"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

func main() {
	app := cli.App("import", "Record every WooCommerce customer and subscription as imported facts")
	discardJobs := app.BoolOpt("discard-jobs", false, "Do not publish the Actions the import schedules")

	code := 0
	app.Action = func() {
		code = execute(*discardJobs)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(code)
}

// execute returns the process exit code. Deferred cleanup runs before main exits.
func execute(discardJobs bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return 1
	}
	log, err := logger.New(logger.Options{Mode: cfg.LogMode, Level: cfg.LogLevel, Process: "import"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, discardJobs, log); err != nil {
		log.Error("import failed", "error", err.Error())
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.App, discardJobs bool, log *logger.Logger) error {
	clk := platformclock.NewSystemClock()
	flags, err := config.LoadFlags(cfg.FeatureFlagsFile)
	if err != nil {
		return err
	}
	st, err := bootstrap.OpenStorage(ctx, cfg, clk)
	if err != nil {
		return err
	}
	defer st.Close()

	locker, closeLocker, err := bootstrap.NewLocker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	var queue jobqueue.Queue = memjobqueue.NewQueue()
	if cfg.QueueBackend == "rabbitmq" && !discardJobs {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return err
		}
		defer pub.Close()
		queue = pub
	} else {
		log.Warn("scheduled Actions are discarded", "queue", cfg.QueueBackend, "discard_jobs", discardJobs)
	}

	shop, err := bootstrap.NewCommerce(cfg)
	if err != nil {
		return err
	}
	customers, err := shop.ListCustomers(ctx)
	if err != nil {
		return err
	}
	subs, err := shop.ListSubscriptions(ctx)
	if err != nil {
		return err
	}

	svc := bootstrap.NewMembership(cfg, st, locker, queue, flags, clk, log)
	res, err := svc.Import(ctx, customers, subs)
	fmt.Printf("Imported %d customers and %d subscriptions, %d failed.\n", res.Customers, res.Subscriptions, res.Failed)
	return err
}
