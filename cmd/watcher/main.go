package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	ledgerStore "cardtrack/internal/ledger/store"
	"cardtrack/internal/platform/config"
	"cardtrack/internal/platform/httpserver"
	"cardtrack/internal/platform/logger"
	"cardtrack/internal/platform/postgres"
	"cardtrack/internal/watch"
	watchMetrics "cardtrack/internal/watch/metrics"
)

// main runs the notification watcher: it polls the operation ledger
// for entries that reached the target offload status and pushes an
// alert per entry. The ledger database must exist; there is nothing
// useful to do without it.
func main() {
	cfg := config.WatcherFromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	notifier, cleanup, err := buildNotifier(cfg)
	if err != nil {
		log.Error("notifier setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	w := watch.New(
		ledgerStore.NewPostgresOperationStore(db),
		notifier,
		cfg.TargetStatus,
		cfg.Interval,
		log,
		watchMetrics.New(),
	)
	if err := w.Init(ctx); err != nil {
		log.Error("watcher init failed", "error", err)
		os.Exit(1)
	}
	log.Info("starting watcher",
		"target", cfg.TargetStatus,
		"interval", cfg.Interval.String(),
	)

	metricsSrv := httpserver.New(cfg.MetricsAddr, promhttp.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("watcher exited", "error", err)
		os.Exit(1)
	}
	log.Info("watcher stopped")
}

// buildNotifier picks the alert transport. Kafka wins when brokers are
// configured, otherwise the webhook is used.
func buildNotifier(cfg config.Watcher) (watch.Notifier, func(), error) {
	if cfg.KafkaBrokers != "" {
		n, err := watch.NewKafkaNotifier(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return n, n.Close, nil
	}
	if cfg.WebhookURL == "" {
		return nil, nil, errors.New("either KAFKA_BROKERS or WATCH_WEBHOOK_URL must be set")
	}
	return watch.NewWebhookNotifier(cfg.WebhookURL), func() {}, nil
}
