package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/judo-pools/metrics"
)

// Refresher periodically rebuilds the board from a fresh snapshot and pushes it to
// the board and table rooms.
type Refresher struct {
	loader   SnapshotLoader
	notifier Notifier
	metrics  *metrics.Metrics
	interval time.Duration
	logger   *slog.Logger
}

func NewRefresher(loader SnapshotLoader, notifier Notifier, m *metrics.Metrics, interval time.Duration, logger *slog.Logger) *Refresher {
	return &Refresher{
		loader:   loader,
		notifier: notifierOrNop(notifier),
		metrics:  m,
		interval: interval,
		logger:   logger,
	}
}

// Run refreshes once immediately, then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.Info("board refresher started", slog.Duration("interval", r.interval))

	if err := r.Refresh(ctx); err != nil {
		r.logger.Error("refresher: initial run failed", slog.Any("error", err))
	}
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("board refresher stopped")
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("refresher: periodic run failed", slog.Any("error", err))
			}
		}
	}
}

// Refresh runs a single cycle.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	err := r.refresh(ctx)
	r.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.RefreshFailures.Inc()
	}
	return err
}

func (r *Refresher) refresh(ctx context.Context) error {
	snap, err := r.loader.Load(ctx)
	if err != nil {
		return err
	}
	board, err := snap.Board()
	if err != nil {
		return fmt.Errorf("build board: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	loads := make(map[int]int, len(board.Tables))
	statuses := make(map[string]int)
	for _, t := range board.Tables {
		loads[t.Number] = t.Load
		for _, p := range t.Pools {
			statuses[p.Progress.Status.String()]++
		}
	}
	for _, p := range board.Backlog {
		statuses[p.Progress.Status.String()]++
	}
	r.metrics.ObserveTables(loads)
	r.metrics.ObserveStatuses(statuses)

	publishBoard(r.notifier, &board)
	return nil
}
