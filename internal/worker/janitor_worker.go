package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/sse"
)

// JanitorWorker prunes SSE topics whose submission stopped publishing,
// reclaiming watchers of runs that died without a terminal event.
type JanitorWorker struct {
	hub      *sse.Hub
	interval time.Duration
	maxAge   time.Duration
}

// NewJanitorWorker constructs a JanitorWorker.
func NewJanitorWorker(hub *sse.Hub, interval, maxAge time.Duration) *JanitorWorker {
	return &JanitorWorker{
		hub:      hub,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Start begins the prune loop and listens for context cancellation.
func (w *JanitorWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("max_age", w.maxAge).Msg("Starting janitor worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Janitor worker stopped")
			return
		}
	}
}

func (w *JanitorWorker) run() {
	if pruned := w.hub.PruneIdle(w.maxAge); pruned > 0 {
		log.Info().Int("pruned", pruned).Msg("Pruned idle submission topics")
	}
}
