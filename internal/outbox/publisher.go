// Package outbox drains durable event rows to the broadcaster. Events
// are written to the outbox in the same transaction as the bid or
// settlement row they describe, so draining in insertion order keeps
// broadcast order consistent with the persisted order.
package outbox

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/auctionhive/auction-backend/internal/broadcast"
	"github.com/auctionhive/auction-backend/internal/events"
	"github.com/auctionhive/auction-backend/internal/store"
)

type Publisher struct {
	stores  store.Stores
	bus     *broadcast.Broadcaster
	batch   int
	poll    time.Duration
	limiter *rate.Limiter
	log     *logrus.Entry
}

func NewPublisher(stores store.Stores, bus *broadcast.Broadcaster, batch int, poll time.Duration, log *logrus.Logger) *Publisher {
	if batch <= 0 {
		batch = 100
	}
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &Publisher{
		stores: stores,
		bus:    bus,
		batch:  batch,
		poll:   poll,
		// Pacing keeps a large backlog from monopolizing the hub after
		// a publisher restart.
		limiter: rate.NewLimiter(rate.Limit(1000), batch),
		log:     log.WithField("component", "outbox"),
	}
}

// Run polls for pending events until ctx is cancelled. Delivery is
// at-least-once: rows are marked published only after the hub accepts
// them, so a crash between the two replays the event.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	p.log.Info("outbox publisher started")
	for {
		select {
		case <-ctx.Done():
			p.log.Info("outbox publisher stopped")
			return
		case <-ticker.C:
			if _, err := p.DrainOnce(ctx); err != nil && ctx.Err() == nil {
				p.log.WithError(err).Error("outbox drain failed")
			}
		}
	}
}

// DrainOnce publishes one batch of pending events and returns how many
// were delivered.
func (p *Publisher) DrainOnce(ctx context.Context) (int, error) {
	rows, err := p.stores.Outbox().FetchPending(ctx, p.batch)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	published := make([]int64, 0, len(rows))
	for _, row := range rows {
		if err := p.limiter.Wait(ctx); err != nil {
			break
		}
		if err := p.bus.Publish(ctx, events.EnvelopeFor(row)); err != nil {
			// Leave the row pending; the next drain retries it and
			// order is preserved because rows are fetched oldest-first.
			break
		}
		published = append(published, row.ID)
	}

	if len(published) == 0 {
		return 0, nil
	}
	if err := p.stores.Outbox().MarkPublished(ctx, published, time.Now().UTC()); err != nil {
		// Already-published rows will be delivered again; subscribers
		// dedup on bid_id.
		return len(published), err
	}
	return len(published), nil
}
