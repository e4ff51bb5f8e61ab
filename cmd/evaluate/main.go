// Command evaluate reports precision@k and recall of the persisted index
// against a whole-word keyword relevance oracle.
//
// Usage:
//
//	go run ./cmd/evaluate [-config configs/development.yaml] [-k 20] [-queries queries.txt] [-json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/evaluation"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	k := flag.Int("k", evaluation.DefaultK, "result cutoff per query")
	queriesPath := flag.String("queries", "", "file with one query per line (default: built-in set)")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	queries := evaluation.DefaultQueries
	if *queriesPath != "" {
		queries, err = evaluation.ReadQueriesFile(*queriesPath)
		if err != nil {
			slog.Error("failed to read queries", "error", err)
			os.Exit(1)
		}
	}

	n, err := normalizer.FromConfig(cfg.Normalizer)
	if err != nil {
		slog.Error("invalid normalizer config", "error", err)
		os.Exit(1)
	}
	snap, err := indexer.LoadSnapshot(cfg.Indexer.DataDir, n.Fingerprint())
	if err != nil {
		slog.Error("failed to load index, run cmd/indexer first", "error", err)
		os.Exit(1)
	}
	engine, err := searcher.NewEngine(n, searcher.Options{
		Params:     ranker.Params{K1: cfg.BM25.K1, B: cfg.BM25.B},
		MaxResults: max(*k, cfg.Search.MaxResults),
	})
	if err != nil {
		slog.Error("invalid search config", "error", err)
		os.Exit(1)
	}
	if _, err := engine.Swap(snap); err != nil {
		slog.Error("failed to activate index", "error", err)
		os.Exit(1)
	}

	report, err := evaluation.Evaluate(context.Background(), engine, snap.Store.Documents(), queries, *k)
	if err != nil {
		slog.Error("evaluation failed", "error", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			slog.Error("failed to write report", "error", err)
			os.Exit(1)
		}
		return
	}
	printReport(os.Stdout, report)
}

func printReport(w io.Writer, report *evaluation.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "QUERY\tRETRIEVED\tRELEVANT\tTOTAL RELEVANT\tP@%d\tRECALL\n", report.K)
	for _, q := range report.Queries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%.2f\n",
			q.Query, q.Retrieved, q.RetrievedRelevant, q.TotalRelevant, q.Precision, q.Recall)
	}
	tw.Flush()
	fmt.Fprintf(w, "\naverage precision: %.2f\naverage recall:    %.2f\n",
		report.AveragePrecision, report.AverageRecall)
}
