package trajectory

import (
	"context"
	"time"

	"go.viam.com/utils"
)

func (s *session) startSimulation() {
	// Never let the zero time be visible, lest the first step integrate over decades.
	s.lastUpdated = s.clock.Now()
	tickInterval := s.conf.TickInterval
	s.timeSimulation = utils.NewBackgroundStoppableWorkers(func(ctx context.Context) {
		ticker := s.clock.Ticker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.updateForTime(now)
			}
		}
	})
}

// updateForTime integrates the arm from the last update to now. Tests call it directly for a
// deterministic passage of time.
func (s *session) updateForTime(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := now.Sub(s.lastUpdated)
	s.lastUpdated = now
	if elapsed <= 0 {
		return
	}
	s.model.IntegrateStep(elapsed.Seconds())
}
