package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestPercentileNearestRank(t *testing.T) {
	sorted := make([]time.Duration, 100)
	for i := range sorted {
		sorted[i] = time.Duration(i+1) * time.Millisecond
	}
	cases := map[float64]time.Duration{
		50: 50 * time.Millisecond,
		90: 90 * time.Millisecond,
		99: 99 * time.Millisecond,
		0:  time.Millisecond,
	}
	for p, want := range cases {
		if got := percentile(sorted, p); got != want {
			t.Errorf("percentile(%v) = %s, want %s", p, got, want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Error("empty input should yield 0")
	}
}

func TestStatsSummary(t *testing.T) {
	s := NewStats()
	s.Record(10*time.Millisecond, 200, false, 3)
	s.Record(30*time.Millisecond, 200, true, 3)
	s.Record(20*time.Millisecond, 200, false, 0)
	s.Record(5*time.Millisecond, 422, false, 0)
	s.Record(0, 0, false, 0)

	sum := s.Summary()
	if sum.Total != 5 || sum.Failed != 2 {
		t.Errorf("total=%d failed=%d, want 5 and 2", sum.Total, sum.Failed)
	}
	if sum.CacheHits != 1 || sum.ZeroResults != 1 {
		t.Errorf("cacheHits=%d zeroResults=%d, want 1 and 1", sum.CacheHits, sum.ZeroResults)
	}
	if sum.Min != 5*time.Millisecond || sum.Max != 30*time.Millisecond {
		t.Errorf("min=%s max=%s", sum.Min, sum.Max)
	}
	if sum.StatusCodes[200] != 3 || sum.StatusCodes[422] != 1 {
		t.Errorf("status codes = %v", sum.StatusCodes)
	}

	var buf bytes.Buffer
	printSummary(&buf, sum, time.Second)
	if !strings.Contains(buf.String(), "status 422") {
		t.Errorf("report missing status line:\n%s", buf.String())
	}
}
