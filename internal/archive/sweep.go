package archive

import (
	"context"
	"time"

	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/logger"
)

// WithRetention returns a manager over the same documents with a different
// retention window.
func (m *Manager) WithRetention(days int) *Manager {
	return NewManager(m.provider, m.names, days)
}

// Sweep prunes history once per calendar day until ctx is cancelled, so
// retention holds on days without a rollover.
func (m *Manager) Sweep(ctx context.Context, c clock.Clock, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	last := ""
	for {
		if today := clock.Today(c); today != last {
			if _, err := m.Prune(today); err != nil {
				logger.Warn("History sweep failed", "today", today, "error", err)
			} else {
				last = today
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
