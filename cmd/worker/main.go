package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/denhac/membership-sync/internal/adapters/rabbitmq"
	"github.com/denhac/membership-sync/internal/app/actions"
	"github.com/denhac/membership-sync/internal/app/worker"
	"github.com/denhac/membership-sync/internal/bootstrap"
	platformclock "github.com/denhac/membership-sync/internal/platform/clock"
	"github.com/denhac/membership-sync/internal/platform/config"
	"github.com/denhac/membership-sync/internal/platform/logger"
)

// worker runs Action jobs from RabbitMQ. It is only needed with QUEUE_BACKEND=rabbitmq;
// the memory queue runs jobs inside the api process.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Options{Mode: cfg.LogMode, Level: cfg.LogLevel, Process: "worker"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("worker stopped", "error", err.Error())
	}
}

func run(ctx context.Context, cfg config.App, log *logger.Logger) error {
	st, err := bootstrap.OpenStorage(ctx, cfg, platformclock.NewSystemClock())
	if err != nil {
		return err
	}
	defer st.Close()

	gw, err := bootstrap.NewGateways(ctx, cfg, log)
	if err != nil {
		return err
	}

	w := worker.New(bootstrap.NewExecutor(cfg, gw, st, log), actions.IsPermanent, cfg.JobMaxAttempts, log.With("component", "worker"))
	if cfg.Slack.AlertChannel != "" {
		alerts, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return err
		}
		defer alerts.Close()
		w.AlertOnDeadLetter(alerts, cfg.Slack.AlertChannel)
	}
	c := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitURL,
		Exchange:    cfg.RabbitExchange,
		Queue:       cfg.RabbitQueue,
		Prefetch:    cfg.RabbitPrefetch,
		ConsumerTag: "membership-sync-worker",
	}, w, log.With("component", "consumer"))
	if err := c.Connect(); err != nil {
		return err
	}
	defer c.Close()

	log.Info("worker consuming", "queue", cfg.RabbitQueue, "max_attempts", cfg.JobMaxAttempts)
	return c.Run(ctx)
}
