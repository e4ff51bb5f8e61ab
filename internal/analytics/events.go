package analytics

import "time"

type EventType string

const (
	EventSearch       EventType = "search"
	EventCacheHit     EventType = "cache_hit"
	EventCacheMiss    EventType = "cache_miss"
	EventZeroResult   EventType = "zero_result"
	EventSearchFailed EventType = "search_failed"
	EventIndexLoaded  EventType = "index_loaded"
)

// SearchEvent describes one answered (or rejected) query. Outcome uses the
// same values as the search_queries_total metric.
type SearchEvent struct {
	Type         EventType `json:"type"`
	Query        string    `json:"query"`
	Terms        []string  `json:"terms"`
	Outcome      string    `json:"outcome"`
	TotalHits    int       `json:"total_hits"`
	Returned     int       `json:"returned"`
	Page         int       `json:"page"`
	LatencyMs    int64     `json:"latency_ms"`
	CacheHit     bool      `json:"cache_hit"`
	IndexVersion uint64    `json:"index_version"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
}

// IndexEvent records a snapshot becoming active in a search process.
type IndexEvent struct {
	Type      EventType `json:"type"`
	Version   uint64    `json:"version"`
	Checksum  string    `json:"checksum"`
	Documents int       `json:"documents"`
	Terms     int       `json:"terms"`
	Timestamp time.Time `json:"timestamp"`
}

type envelope struct {
	Type EventType `json:"type"`
}
