// Package scheduler triggers periodic background sync rounds.
package scheduler

import (
	"context"
	"time"

	"github.com/hkaya/meallogger/internal/logging"
	"github.com/hkaya/meallogger/internal/sync"
)

// DefaultInterval matches the cadence of a casual logging session: often
// enough to converge devices, rare enough to stay inside API quotas.
const DefaultInterval = 5 * time.Minute

// MinInterval guards against a misconfigured hot loop against the API.
const MinInterval = 30 * time.Second

// Scheduler fires SmartSync on a fixed interval. Triggers landing while a
// round is in flight are dropped by the engine, so overlapping ticks are
// harmless.
type Scheduler struct {
	engine   *sync.Engine
	interval time.Duration
	ticker   *time.Ticker
	stopCh   chan struct{}
}

// New creates a scheduler over the engine. A non-positive interval selects
// the default; anything below MinInterval is clamped.
func New(engine *sync.Engine, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval < MinInterval {
		interval = MinInterval
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Interval returns the effective tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start launches the tick loop. An initial round runs immediately so a
// freshly started process converges without waiting out the first interval.
func (s *Scheduler) Start(ctx context.Context) {
	s.ticker = time.NewTicker(s.interval)
	logging.Info("sync scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})

	go func() {
		s.run(ctx)
		for {
			select {
			case <-s.ticker.C:
				s.run(ctx)
			case <-s.stopCh:
				logging.Info("sync scheduler stopped")
				return
			case <-ctx.Done():
				logging.Info("sync scheduler context cancelled")
				return
			}
		}
	}()
}

// Stop shuts down the tick loop. A round already in flight finishes on its
// own; Stop only prevents new triggers.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	if s.ticker != nil {
		s.ticker.Stop()
	}
}

func (s *Scheduler) run(ctx context.Context) {
	res, err := s.engine.SmartSync(ctx)
	if err != nil {
		logging.Error("scheduled sync failed", err)
		return
	}
	if res.Skipped {
		logging.Debug("scheduled sync skipped", map[string]interface{}{
			"reason": res.SkipReason,
		})
		return
	}
	if res.AwaitingResolution {
		logging.Info("scheduled sync found conflicts, awaiting resolution", map[string]interface{}{
			"conflicts": res.Conflicts,
		})
	}
}
