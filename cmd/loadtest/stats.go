package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"text/tabwriter"
	"time"
)

// Stats accumulates request outcomes from concurrent workers.
type Stats struct {
	mu          sync.Mutex
	total       int64
	failed      int64
	cacheHits   int64
	zeroResults int64
	latencies   []time.Duration
	statusCodes map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

// Record adds one request. status is 0 when the request never got a
// response.
func (s *Stats) Record(d time.Duration, status int, cacheHit bool, hits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if status == 0 {
		s.failed++
		return
	}
	s.statusCodes[status]++
	s.latencies = append(s.latencies, d)
	if status < 200 || status >= 300 {
		s.failed++
		return
	}
	if cacheHit {
		s.cacheHits++
	}
	if hits == 0 {
		s.zeroResults++
	}
}

// Summary is a point-in-time view of Stats.
type Summary struct {
	Total       int64
	Failed      int64
	CacheHits   int64
	ZeroResults int64
	Min, Avg    time.Duration
	P50, P90    time.Duration
	P95, P99    time.Duration
	Max, StdDev time.Duration
	StatusCodes map[int]int64
}

func (s *Stats) Summary() Summary {
	s.mu.Lock()
	latencies := append([]time.Duration(nil), s.latencies...)
	sum := Summary{
		Total:       s.total,
		Failed:      s.failed,
		CacheHits:   s.cacheHits,
		ZeroResults: s.zeroResults,
		StatusCodes: make(map[int]int64, len(s.statusCodes)),
	}
	for code, n := range s.statusCodes {
		sum.StatusCodes[code] = n
	}
	s.mu.Unlock()

	if len(latencies) == 0 {
		return sum
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	sum.Min = latencies[0]
	sum.Max = latencies[len(latencies)-1]
	sum.Avg = total / time.Duration(len(latencies))
	sum.P50 = percentile(latencies, 50)
	sum.P90 = percentile(latencies, 90)
	sum.P95 = percentile(latencies, 95)
	sum.P99 = percentile(latencies, 99)

	var sq float64
	for _, l := range latencies {
		diff := float64(l) - float64(sum.Avg)
		sq += diff * diff
	}
	sum.StdDev = time.Duration(math.Sqrt(sq / float64(len(latencies))))
	return sum
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func printSummary(w io.Writer, sum Summary, elapsed time.Duration) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "requests\t%d\n", sum.Total)
	fmt.Fprintf(tw, "failed\t%d\n", sum.Failed)
	if sum.Total > 0 {
		fmt.Fprintf(tw, "error rate\t%.2f%%\n", float64(sum.Failed)/float64(sum.Total)*100)
		fmt.Fprintf(tw, "cache hits\t%d\n", sum.CacheHits)
		fmt.Fprintf(tw, "zero-result\t%d\n", sum.ZeroResults)
		fmt.Fprintf(tw, "requests/sec\t%.2f\n", float64(sum.Total)/elapsed.Seconds())
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "min\t%s\n", sum.Min)
	fmt.Fprintf(tw, "avg\t%s\n", sum.Avg)
	fmt.Fprintf(tw, "p50\t%s\n", sum.P50)
	fmt.Fprintf(tw, "p90\t%s\n", sum.P90)
	fmt.Fprintf(tw, "p95\t%s\n", sum.P95)
	fmt.Fprintf(tw, "p99\t%s\n", sum.P99)
	fmt.Fprintf(tw, "max\t%s\n", sum.Max)
	fmt.Fprintf(tw, "stddev\t%s\n", sum.StdDev)

	codes := make([]int, 0, len(sum.StatusCodes))
	for code := range sum.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	fmt.Fprintln(tw)
	for _, code := range codes {
		fmt.Fprintf(tw, "status %d\t%d\n", code, sum.StatusCodes[code])
	}
	tw.Flush()
}
