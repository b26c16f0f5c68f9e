package worker

import (
	"context"
	"time"

	"gearguard/utils"

	"github.com/sirupsen/logrus"
)

// Sweeper deletes expired password reset rows.
type Sweeper interface {
	SweepExpiredResetCodes(ctx context.Context) (int64, error)
}

type ResetCodeSweeper struct {
	sweeper  Sweeper
	interval time.Duration
	log      *logrus.Entry
}

func NewResetCodeSweeper(sweeper Sweeper, interval time.Duration) *ResetCodeSweeper {
	return &ResetCodeSweeper{
		sweeper:  sweeper,
		interval: interval,
		log:      utils.Logger("reset_sweeper"),
	}
}

// Start sweeps once immediately and then on every tick until ctx is done.
func (s *ResetCodeSweeper) Start(ctx context.Context) {
	s.log.WithField("interval", s.interval.String()).Info("reset code sweeper started")
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reset code sweeper shutting down")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ResetCodeSweeper) sweep(ctx context.Context) {
	removed, err := s.sweeper.SweepExpiredResetCodes(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		utils.LogError("reset_sweep_failed", err, nil)
		return
	}
	if removed > 0 {
		s.log.WithField("removed", removed).Info("expired reset codes removed")
	}
}
