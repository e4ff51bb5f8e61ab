// Command searcher serves BM25 queries over the persisted news index.
//
// The index is loaded from indexer.dataDir at startup and reloaded whenever
// an index-complete event arrives (Kafka) or the process receives SIGHUP.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
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
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/reloader"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "data_dir", cfg.Indexer.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownMetrics(shutdownCtx)
		}()
	}

	n, err := normalizer.FromConfig(cfg.Normalizer)
	if err != nil {
		slog.Error("invalid normalizer config", "error", err)
		os.Exit(1)
	}
	slog.Info("normalizer ready", "language", n.Language(), "fingerprint", n.Fingerprint())
	engine, err := searcher.NewEngine(n, searcher.Options{
		Params:       ranker.Params{K1: cfg.BM25.K1, B: cfg.BM25.B},
		MaxResults:   cfg.Search.MaxResults,
		PreviewWords: cfg.Search.PreviewWords,
		Metrics:      m,
	})
	if err != nil {
		slog.Error("invalid search config", "error", err)
		os.Exit(1)
	}

	aggregator := analytics.NewAggregator()
	var analyticsPublisher analytics.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		analyticsPublisher = producer
	}
	collector := analytics.NewCollector(analyticsPublisher, aggregator, cfg.Analytics.BufferSize)
	collector.Start(ctx)
	defer collector.Close()

	reload := reloader.New(engine, cfg.Indexer.DataDir, collector)
	if err := reload.Reload(ctx); err != nil {
		slog.Warn("no index loaded at startup, serving 503 until one arrives", "error", err)
	}

	var indexConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		// Every replica must see every announcement, so each gets its own group.
		host, _ := os.Hostname()
		group := fmt.Sprintf("%s-searcher-%s-%d", cfg.Kafka.ConsumerGroup, host, cfg.Server.Port)
		indexConsumer = kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete, reload.HandleEvent(), kafka.WithGroupID(group))
		go func() {
			if err := indexConsumer.Start(ctx); err != nil {
				slog.Error("index-complete consumer error", "error", err)
			}
		}()
		slog.Info("listening for index-complete events", "topic", cfg.Kafka.Topics.IndexComplete)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-hup:
				slog.Info("SIGHUP received, reloading index")
				_ = reload.Reload(ctx)
			case <-ctx.Done():
				signal.Stop(hup)
				return
			}
		}
	}()

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		stats, err := engine.Stats()
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("version %d, %d documents", stats.Version, stats.Documents),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if indexConsumer != nil {
		// A broken feed only delays reloads; the current snapshot keeps serving.
		checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
			if err := indexConsumer.Healthy(); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	h := handler.New(engine, queryCache, collector, m, handler.Config{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxResults:   cfg.Search.MaxResults,
		PageSize:     cfg.Search.PageSize,
		Trace:        cfg.Tracing.Enabled,
	})
	analyticsH := analytics.NewHandler(aggregator, nil)

	mux := http.NewServeMux()
	h.Routes(mux)
	analyticsH.Routes(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Search.RequestTimeout)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewLimiter(cfg.Server.RateLimit, time.Minute)
		defer limiter.Close()
		chain = middleware.RateLimit(limiter)(chain)
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins))(chain)
	}
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
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

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
