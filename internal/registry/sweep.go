// ABOUTME: Periodic reset sweep over every known map
// ABOUTME: Ticks on wall-clock multiples of the interval so restarts keep the schedule

package registry

import (
	"context"
	"time"

	"github.com/harper/willow/internal/taskmap"
)

// DefaultSweepInterval is how often maps are checked for a passed midnight.
const DefaultSweepInterval = 5 * time.Minute

// sweepOffset shifts ticks past the boundary so a midnight reset lands at 00:01.
const sweepOffset = time.Minute

// Sweep calls ResetOld on every known map under its lock and saves the ones
// that reset. It returns how many maps were reset. Failures on one map are
// logged and do not stop the others.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	servers, err := r.Servers()
	if err != nil {
		return 0, err
	}

	r.logger.Debug("Checking maps", "count", len(servers))
	reset := 0
	for _, id := range servers {
		if err := ctx.Err(); err != nil {
			return reset, err
		}
		err := r.With(id, func(m *taskmap.Taskmap) error {
			if !m.ResetOld() {
				return nil
			}
			reset++
			r.logger.Info("Reset map", "server", id, "map_time", m.Now().Format("2006.01.02.150405"))
			return m.Save()
		})
		if err != nil {
			r.logger.Error("Sweep failed", "server", id, "err", err)
		}
	}
	return reset, nil
}

// RunSweeper sweeps on every tick until ctx is cancelled.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	r.logger.Info("Sweeper started", "interval", interval)

	for {
		delay := nextDelay(time.Now(), interval)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("Sweeper stopped")
			return nil
		case <-timer.C:
		}
		if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("Sweep failed", "err", err)
		}
	}
}

// nextDelay returns the time until the next multiple of interval past the
// offset, measured from midnight UTC.
func nextDelay(now time.Time, interval time.Duration) time.Duration {
	offset := sweepOffset
	if offset >= interval {
		offset = 0
	}
	next := now.Truncate(interval).Add(offset)
	for !next.After(now) {
		next = next.Add(interval)
	}
	return next.Sub(now)
}
