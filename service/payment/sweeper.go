package paymentsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/chupakobra6/vagvin/util/metrics"
)

type pendingSweeper interface {
	SweepPending(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper fails pending payments the gateway never confirmed. Abandoned
// checkouts hold no funds, this is pure housekeeping.
type Sweeper struct {
	repo     pendingSweeper
	maxAge   time.Duration
	interval time.Duration
	log      *slog.Logger
}

func NewSweeper(repo pendingSweeper, maxAge, interval time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{repo: repo, maxAge: maxAge, interval: interval, log: log}
}

// Run blocks until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				s.log.Error("pending sweep failed", "err", err)
				continue
			}
			if n > 0 {
				s.log.Info("swept stale pending payments", "count", n)
			}
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.repo.SweepPending(ctx, time.Now().UTC().Add(-s.maxAge))
	if err != nil {
		return 0, err
	}
	metrics.PaymentsSwept.Add(float64(n))
	return n, nil
}
