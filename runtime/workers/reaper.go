package workers

import (
	"chat-room/contract"
	"chat-room/domain"
	"context"
	"log/slog"
	"time"
)

// ReaperWorker periodically evicts participants whose last heartbeat is older than threshold.
// It keeps nothing between cycles: every tick starts over with a fresh clock reading.
type ReaperWorker struct {
	log       *slog.Logger
	evictor   contract.IEvictor
	clock     domain.Clock
	interval  time.Duration
	threshold time.Duration
}

func NewReaperWorker(
	log *slog.Logger,
	evictor contract.IEvictor,
	clock domain.Clock,
	interval, threshold time.Duration,
) *ReaperWorker {
	return &ReaperWorker{
		log:       log,
		evictor:   evictor,
		clock:     clock,
		interval:  interval,
		threshold: threshold,
	}
}

// Run sweeps every interval until ctx is canceled. A failed cycle is logged and the
// next tick retries, so a transient store error never stops the worker.
func (w *ReaperWorker) Run(ctx context.Context) error {
	w.log.Info("Starting reaper worker", "interval", w.interval, "threshold", w.threshold)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs one cycle to completion.
func (w *ReaperWorker) sweep(ctx context.Context) {
	evicted, err := w.evictor.EvictStale(ctx, w.threshold, w.clock.Now())
	if err != nil {
		w.log.Error("Reaper cycle failed", "evicted", len(evicted), "error", err)
		return
	}
	if len(evicted) > 0 {
		w.log.Debug("Reaper cycle done", "evicted", evicted)
	}
}
