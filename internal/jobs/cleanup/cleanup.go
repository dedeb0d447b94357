package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job cancels purchases stuck in pending. A pending row holds the per-user
// per-course uniqueness slot, so an abandoned checkout would otherwise block
// the user from ever buying the course. Cancelling frees the slot.
type Job struct {
	ledger     staleCanceller
	maxPending time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

type staleCanceller interface {
	CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

func New(ledger staleCanceller, maxPending time.Duration, logger *zap.Logger) *Job {
	if maxPending <= 0 {
		maxPending = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		ledger:     ledger,
		maxPending: maxPending,
		now:        time.Now,
		logger:     logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.ledger == nil {
		return nil
	}

	cutoff := j.now().Add(-j.maxPending)
	rows, err := j.ledger.CancelStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cancel stale pending purchases: %w", err)
	}
	if rows > 0 {
		j.logger.Info("cancelled stale pending purchases", zap.Int64("cancelled", rows))
	}

	return nil
}
