package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   int
	}{
		{"up", StatusUp, http.StatusOK},
		{"degraded", StatusDegraded, http.StatusOK},
		{"down", StatusDown, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			c.Register("index", func(context.Context) ComponentHealth {
				return ComponentHealth{Status: StatusUp}
			})
			c.Register("dep", func(context.Context) ComponentHealth {
				return ComponentHealth{Status: tt.status}
			})
			rec := httptest.NewRecorder()
			c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRunReportsWorstStatus(t *testing.T) {
	c := NewChecker()
	c.Register("a", func(context.Context) ComponentHealth { return ComponentHealth{Status: StatusDegraded} })
	c.Register("b", func(context.Context) ComponentHealth { return ComponentHealth{Status: StatusDown} })
	report := c.Run(context.Background())
	if report.Status != StatusDown || len(report.Components) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRunRecoversPanicsAndTimeouts(t *testing.T) {
	c := NewChecker()
	c.Register("panicky", func(context.Context) ComponentHealth { panic("boom") })
	c.Register("cancelled", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusUp}
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := c.Run(ctx)
	if got := report.Components["panicky"]; got.Status != StatusDown || got.Latency == "" {
		t.Errorf("panicky = %+v, want down with latency", got)
	}
	if got := report.Components["cancelled"]; got.Status != StatusDown {
		t.Errorf("check that ignored an expired context = %+v, want down", got)
	}
	if report.Status != StatusDown {
		t.Errorf("overall = %s, want down", report.Status)
	}
}

func TestRunWithNoChecksIsUp(t *testing.T) {
	if got := NewChecker().Run(context.Background()).Status; got != StatusUp {
		t.Errorf("status = %s, want up", got)
	}
}
