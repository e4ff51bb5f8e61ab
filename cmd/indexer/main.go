// Command indexer builds the persisted BM25 index from the configured article
// source and announces it on the index-complete topic.
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml] [-force-rebuild] [-workers 8]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	forceRebuild := flag.Bool("force-rebuild", false, "rebuild even if a valid index exists")
	workers := flag.Int("workers", 0, "number of build workers (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *forceRebuild {
		cfg.Indexer.ForceRebuild = true
	}
	if *workers > 0 {
		cfg.Indexer.Workers = *workers
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer",
		"corpus_driver", cfg.Corpus.Driver,
		"data_dir", cfg.Indexer.DataDir,
		"workers", cfg.Indexer.Workers,
		"force_rebuild", cfg.Indexer.ForceRebuild,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := normalizer.FromConfig(cfg.Normalizer)
	if err != nil {
		slog.Error("invalid normalizer config", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		shutdown := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	var publisher indexer.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
		defer producer.Close()
		publisher = producer
	}

	src, err := corpus.Open(cfg.Corpus, cfg.Postgres)
	if err != nil {
		slog.Error("failed to open corpus", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	engine := indexer.NewEngine(cfg.Indexer, n, publisher, m)
	res, err := engine.Run(ctx, src)
	if err != nil {
		slog.Error("indexing failed", "error", err)
		os.Exit(1)
	}

	slog.Info("index ready",
		"path", res.Segment.Path,
		"rebuilt", res.Rebuilt,
		"documents", res.Snapshot.Index.DocumentCount(),
		"terms", res.Snapshot.Index.TermCount(),
		"avg_doc_length", res.Snapshot.Index.AverageDocumentLength(),
		"checksum", res.Segment.Checksum,
	)
}
