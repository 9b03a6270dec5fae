// Package scheduler drives expired auctions through settlement on a
// fixed cadence.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/auctionhive/auction-backend/internal/clock"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

// Settler is the callable that settles one item. Implemented by the
// settlement service; it must stay idempotent so a failed tick can be
// retried wholesale.
type Settler interface {
	Settle(ctx context.Context, itemID uuid.UUID) (models.AuctionResult, error)
}

type Scheduler struct {
	items   store.ItemStore
	settler Settler
	clock   clock.Clock
	tick    time.Duration
	log     *logrus.Entry

	// running enforces the single-writer rule: an overlapping tick is
	// skipped instead of doubling up on settlements.
	running sync.Mutex
}

func New(items store.ItemStore, settler Settler, clk clock.Clock, tick time.Duration, log *logrus.Logger) *Scheduler {
	if tick <= 0 {
		tick = 15 * time.Minute
	}
	return &Scheduler{
		items:   items,
		settler: settler,
		clock:   clk,
		tick:    tick,
		log:     log.WithField("component", "scheduler"),
	}
}

// Run ticks until ctx is cancelled. The first pass runs immediately so
// a restart catches up on everything overdue without waiting a full
// interval.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.WithField("tick", s.tick.String()).Info("auction scheduler started")

	s.processExpired(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("auction scheduler stopped")
			return
		case <-ticker.C:
			s.processExpired(ctx)
		}
	}
}

// processExpired settles every overdue auction. Each item settles
// independently: one failure is logged and retried on the next tick
// without blocking the rest.
func (s *Scheduler) processExpired(ctx context.Context) {
	if !s.running.TryLock() {
		s.log.Warn("previous tick still running, skipping")
		return
	}
	defer s.running.Unlock()

	now := s.clock.Now()
	expired, err := s.items.FindExpired(ctx, now)
	if err != nil {
		s.log.WithError(err).Error("scan for expired auctions failed")
		return
	}
	if len(expired) == 0 {
		return
	}
	s.log.WithField("count", len(expired)).Info("processing expired auctions")

	for _, item := range expired {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.settler.Settle(ctx, item.ID); err != nil {
			s.log.WithError(err).WithField("item_id", item.ID).Error("settlement failed, will retry next tick")
			continue
		}
		s.log.WithField("item_id", item.ID).Info("auction closed")
	}
}

// ProcessExpired runs a single pass outside the ticker, for the admin
// surface and tests.
func (s *Scheduler) ProcessExpired(ctx context.Context) {
	s.processExpired(ctx)
}
