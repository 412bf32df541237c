package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/jawher/mow.cli"

	"github.com/denhac/membership-sync/internal/app/audit"
	"github.com/denhac/membership-sync/internal/bootstrap"
	platformclock "github.com/denhac/membership-sync/internal/platform/clock"
	"github.com/denhac/membership-sync/internal/platform/config"
	"github.com/denhac/membership-sync/internal/platform/logger"
)

func main() {
	app := cli.App("identify-issues", "Cross-check member records against cards, Slack and Google groups")
	logMode := app.StringOpt("log-mode", "", "Log mode (prod|dev); defaults to LOG_MODE")
	skipLegacy := app.BoolOpt("skip-legacy", false, "Do not include legacy (PayPal) members")

	code := 0
	app.Action = func() {
		code = execute(*logMode, *skipLegacy)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(code)
}

// execute returns the process exit code. Deferred cleanup runs before main exits.
func execute(logMode string, skipLegacy bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return 1
	}
	if logMode != "" {
		cfg.LogMode = logMode
	}
	log, err := logger.New(logger.Options{Mode: cfg.LogMode, Level: cfg.LogLevel, Process: "identify-issues"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, skipLegacy, log); err != nil {
		log.Error("audit failed", "error", err.Error())
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.App, skipLegacy bool, log *logger.Logger) error {
	st, err := bootstrap.OpenStorage(ctx, cfg, platformclock.NewSystemClock())
	if err != nil {
		return err
	}
	defer st.Close()

	gw, err := bootstrap.NewGateways(ctx, cfg, log)
	if err != nil {
		return err
	}
	shop, err := bootstrap.NewCommerce(cfg)
	if err != nil {
		return err
	}

	src := audit.Sources{
		Commerce:  shop,
		Cards:     st.Snapshots,
		Chat:      gw.Chat,
		Directory: gw.Directory,
	}
	if !skipLegacy {
		src.Legacy = st.Legacy
	}

	report, err := audit.NewAuditor(src, bootstrap.AuditConfig(cfg), log.With("component", "audit")).Run(ctx)
	if err != nil {
		return err
	}
	return report.WriteText(os.Stdout)
}
