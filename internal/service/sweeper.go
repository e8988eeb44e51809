package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper runs the periodic maintenance jobs until its context ends.
type Sweeper struct {
	admin    *Admin
	interval time.Duration
}

// NewSweeper returns a sweeper over admin. A non-positive interval
// disables it.
func NewSweeper(admin *Admin, interval time.Duration) *Sweeper {
	return &Sweeper{admin: admin, interval: interval}
}

// Run sweeps once immediately and then every interval. It returns when
// ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// SweepOnce runs every job once. Job failures are logged and counted,
// never fatal.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	a := s.admin
	_, err := a.PurgeExpiredInvites(ctx)
	a.metrics.SweepRan("purge_invites", err)
	if err != nil {
		a.log.Warn("invite sweep failed", zap.Error(err))
	}
	_, err = a.CheckExpiring(ctx)
	a.metrics.SweepRan("check_expiring", err)
	if err != nil {
		a.log.Warn("expiring sweep failed", zap.Error(err))
	}
}
