package outbox

import (
	"context"
	"time"

	"pawnshop-backend/internal/domain/event"

	"go.uber.org/zap"
)

type Counter interface {
	Published(n int)
}

// Relay moves pending outbox rows to the broker. Delivery is at least once: a crash between
// Publish and MarkPublished resends the batch.
type Relay struct {
	repo      event.Repository
	pub       event.Publisher
	log       *zap.Logger
	counter   Counter
	batchSize int
	interval  time.Duration
	now       func() time.Time
}

func NewRelay(repo event.Repository, pub event.Publisher, log *zap.Logger, counter Counter, batchSize int, interval time.Duration) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{
		repo:      repo,
		pub:       pub,
		log:       log,
		counter:   counter,
		batchSize: batchSize,
		interval:  interval,
		now:       time.Now,
	}
}

// RunOnce publishes one batch and returns how many entries went out.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	entries, err := r.repo.FetchUnpublished(ctx, r.batchSize)
	if err != nil || len(entries) == 0 {
		return 0, err
	}
	if err := r.pub.Publish(ctx, entries...); err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if err := r.repo.MarkPublished(ctx, ids, r.now()); err != nil {
		return 0, err
	}
	if r.counter != nil {
		r.counter.Published(len(entries))
	}
	return len(entries), nil
}

// Run drains the outbox every interval until ctx is done. A full batch is followed
// immediately by the next one.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		for {
			n, err := r.RunOnce(ctx)
			if err != nil {
				if ctx.Err() == nil {
					r.log.Warn("outbox relay failed", zap.Error(err))
				}
				break
			}
			if n < r.batchSize {
				break
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
