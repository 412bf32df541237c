package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denhac/membership-sync/internal/adapters/httpapi"
	memjobqueue "github.com/denhac/membership-sync/internal/adapters/memory/jobqueue"
	"github.com/denhac/membership-sync/internal/adapters/rabbitmq"
	"github.com/denhac/membership-sync/internal/app/actions"
	"github.com/denhac/membership-sync/internal/app/worker"
	"github.com/denhac/membership-sync/internal/bootstrap"
	platformclock "github.com/denhac/membership-sync/internal/platform/clock"
	"github.com/denhac/membership-sync/internal/platform/config"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Options{Mode: cfg.LogMode, Level: cfg.LogLevel, Process: "api"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("api stopped", "error", err.Error())
	}
}

func run(ctx context.Context, cfg config.App, log *logger.Logger) error {
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

	var queue jobqueue.Queue
	switch cfg.QueueBackend {
	case "rabbitmq":
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return err
		}
		defer pub.Close()
		queue = pub
	default:
		// Jobs run in this process.
		mq := memjobqueue.NewQueue()
		gw, err := bootstrap.NewGateways(ctx, cfg, log)
		if err != nil {
			return err
		}
		w := worker.New(bootstrap.NewExecutor(cfg, gw, st, log), actions.IsPermanent, cfg.JobMaxAttempts, log.With("component", "worker")).
			AlertOnDeadLetter(mq, cfg.Slack.AlertChannel)
		dead := func(job jobqueue.Job, err error) {
			log.Error("job dead-lettered", "job_id", job.ID, "kind", job.Kind, "customer_id", job.CustomerID, "error", err.Error())
		}
		go mq.Run(ctx, w.Handler(mq, dead))
		queue = mq
	}

	svc := bootstrap.NewMembership(cfg, st, locker, queue, flags, clk, log)
	api := httpapi.NewServer(svc, st.Snapshots, st.Inbox, clk, log.With("component", "httpapi"))
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{
		WooCommerceSecret: cfg.WooCommerce.WebhookSecret,
		WebhookToken:      cfg.WebhookToken,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", "port", cfg.Port, "storage", cfg.StorageBackend, "queue", cfg.QueueBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
