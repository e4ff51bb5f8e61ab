// Command analytics starts the standalone analytics aggregation service.
//
// It consumes search analytics events from Kafka, aggregates them in memory
// (query volume, latency percentiles, cache hit rate, zero-result queries,
// snapshot loads), optionally snapshots the aggregate to PostgreSQL, and
// exposes GET /api/v1/analytics for dashboards.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-persist]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	persist := flag.Bool("persist", false, "snapshot aggregates to PostgreSQL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(agg),
		kafka.WithGroupID(cfg.Kafka.ConsumerGroup+"-analytics"), kafka.WithFromBeginning())
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		if err := consumer.Healthy(); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d events consumed", consumer.Processed()),
		}
	})

	var history analytics.HistoryStore
	if *persist {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store := aggregator.NewStore(db, cfg.Analytics.Retention)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare analytics schema", "error", err)
			os.Exit(1)
		}
		store.StartPeriodicSave(ctx, agg, cfg.Analytics.PersistInterval)
		history = store
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := db.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	mux := http.NewServeMux()
	analytics.NewHandler(agg, history).Routes(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}
