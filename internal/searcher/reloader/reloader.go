// Package reloader swaps a freshly persisted index into a running query
// engine when the indexer announces it.
package reloader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/searcher"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/resilience"
)

// Loader is the part of searcher.Engine the reloader drives.
type Loader interface {
	LoadFrom(dataDir string) (uint64, error)
	Checksum() string
	Stats() (searcher.IndexStats, error)
}

// Tracker receives an analytics.IndexEvent for every activated snapshot.
type Tracker interface {
	Track(event any)
}

type Reloader struct {
	loader  Loader
	dataDir string
	tracker Tracker
	retry   resilience.RetryConfig
	logger  *slog.Logger
}

// New returns a Reloader reading segments from dataDir. tracker may be nil.
func New(loader Loader, dataDir string, tracker Tracker) *Reloader {
	return &Reloader{
		loader:  loader,
		dataDir: dataDir,
		tracker: tracker,
		retry: resilience.RetryConfig{
			MaxAttempts:  4,
			InitialDelay: 250 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
		logger: slog.Default().With("component", "index-reloader"),
	}
}

// Reload loads the segment in dataDir and activates it. Missing or
// unreadable segments are retried with backoff; a segment built with a
// different normalizer is not. The active snapshot is kept on failure.
func (r *Reloader) Reload(ctx context.Context) error {
	var version uint64
	err := resilience.Retry(ctx, "index-reload", r.retry, func(context.Context) error {
		v, err := r.loader.LoadFrom(r.dataDir)
		if err != nil && !errors.Is(err, apperrors.ErrCorpusIO) {
			return resilience.Permanent(err)
		}
		version = v
		return err
	})
	if err != nil {
		r.logger.Error("index reload failed, keeping current snapshot", "error", err)
		return err
	}

	stats, err := r.loader.Stats()
	if err != nil {
		return err
	}
	r.logger.Info("index reloaded",
		"version", version,
		"documents", stats.Documents,
		"checksum", stats.Checksum,
	)
	if r.tracker != nil {
		r.tracker.Track(analytics.IndexEvent{
			Type:      analytics.EventIndexLoaded,
			Version:   version,
			Checksum:  stats.Checksum,
			Documents: stats.Documents,
			Terms:     stats.Terms,
			Timestamp: time.Now().UTC(),
		})
	}
	return nil
}

// HandleEvent is a kafka.MessageHandler for the index-complete topic. An
// announcement for the segment already serving is acknowledged without
// reloading.
func (r *Reloader) HandleEvent() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[indexer.IndexCompleteEvent](value)
		if err != nil {
			r.logger.Error("discarding undecodable index event", "error", err)
			return nil
		}
		if event.Checksum != "" && event.Checksum == r.loader.Checksum() {
			r.logger.Debug("index event for active segment ignored", "checksum", event.Checksum)
			return nil
		}
		r.logger.Info("index complete announced",
			"checksum", event.Checksum,
			"documents", event.Documents,
		)
		if err := r.Reload(ctx); err != nil {
			if errors.Is(err, segment.ErrFingerprintMismatch) {
				return nil
			}
			return err
		}
		if got := r.loader.Checksum(); event.Checksum != "" && got != event.Checksum {
			r.logger.Warn("loaded segment differs from announced one",
				"announced", event.Checksum,
				"loaded", got,
			)
		}
		return nil
	}
}
