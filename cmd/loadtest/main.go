// Command loadtest drives the search API with a fixed query set from
// concurrent workers and reports throughput, latency percentiles, cache hit
// counts and status codes.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8080] [-concurrency 10] [-duration 30s] [-queries queries.txt]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/evaluation"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Limit       int
	Queries     []string
}

// searchMeta is the part of the search response the load test inspects.
type searchMeta struct {
	TotalHits int  `json:"total_hits"`
	CacheHit  bool `json:"cache_hit"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	limit := flag.Int("limit", 10, "limit parameter sent with each search")
	queriesPath := flag.String("queries", "", "file with one query per line (default: built-in set)")
	flag.Parse()

	queries := evaluation.DefaultQueries
	if *queriesPath != "" {
		var err error
		queries, err = evaluation.ReadQueriesFile(*queriesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read queries: %v\n", err)
			os.Exit(1)
		}
	}
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "no queries to run")
		os.Exit(1)
	}

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		Limit:       *limit,
		Queries:     queries,
	}

	fmt.Printf("target %s, %d workers, %s, %d queries\n\n", cfg.BaseURL, cfg.Concurrency, cfg.Duration, len(cfg.Queries))

	start := time.Now()
	stats := run(context.Background(), cfg)
	sum := stats.Summary()
	printSummary(os.Stdout, sum, time.Since(start))

	if sum.Total == 0 {
		fmt.Fprintln(os.Stderr, "\nno requests completed; is the search service running?")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(next int) {
			defer wg.Done()
			for ctx.Err() == nil {
				query := cfg.Queries[next%len(cfg.Queries)]
				next++
				searchOnce(ctx, client, cfg, query, stats)
			}
		}(w)
	}
	wg.Wait()
	return stats
}

func searchOnce(ctx context.Context, client *http.Client, cfg Config, query string, stats *Stats) {
	u := fmt.Sprintf("%s/api/v1/search?q=%s&limit=%d", cfg.BaseURL, url.QueryEscape(query), cfg.Limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		stats.Record(0, 0, false, 0)
		return
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			stats.Record(time.Since(start), 0, false, 0)
		}
		return
	}
	defer resp.Body.Close()

	var meta searchMeta
	if resp.StatusCode == http.StatusOK {
		_ = json.NewDecoder(resp.Body).Decode(&meta)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	stats.Record(time.Since(start), resp.StatusCode, meta.CacheHit, meta.TotalHits)
}
