// Package broadcast fans bid-accepted and auction-closed events out to
// live subscribers. Subscribers register per item or on the global
// feed; per-item delivery follows item_bid_seq because events enter the
// hub in outbox order. The hub keeps no durable state: a subscriber
// that falls behind is closed so its client resyncs with a replay from
// the bid store.
package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/auctionhive/auction-backend/internal/events"
)

const (
	subscriberBuffer = 64
	publishBuffer    = 256
	replayItems      = 512
	replayPerItem    = 128
)

// Subscription is a live feed of envelopes. C is closed when the hub
// shuts down or the subscriber cannot keep up; callers must then resync
// from the bid store using Replay plus a store query.
type Subscription struct {
	C      <-chan events.Envelope
	cancel func()
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() { s.cancel() }

type subscriber struct {
	itemID uuid.UUID // uuid.Nil means the global feed
	ch     chan events.Envelope
	once   sync.Once
}

type Broadcaster struct {
	register   chan *subscriber
	unregister chan *subscriber
	publish    chan events.Envelope

	// replay holds the most recent envelopes per item so reconnecting
	// clients can backfill short gaps without a store round-trip.
	replay *lru.Cache

	log *logrus.Entry
}

func New(log *logrus.Logger) *Broadcaster {
	cache, _ := lru.New(replayItems)
	return &Broadcaster{
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		publish:    make(chan events.Envelope, publishBuffer),
		replay:     cache,
		log:        log.WithField("component", "broadcaster"),
	}
}

// Run owns the subscriber registry. It exits when ctx is cancelled,
// closing every open subscription.
func (b *Broadcaster) Run(ctx context.Context) {
	perItem := make(map[uuid.UUID]map[*subscriber]bool)
	global := make(map[*subscriber]bool)

	closeSub := func(sub *subscriber) {
		sub.once.Do(func() { close(sub.ch) })
	}
	remove := func(sub *subscriber) {
		if sub.itemID == uuid.Nil {
			delete(global, sub)
			return
		}
		if subs, ok := perItem[sub.itemID]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(perItem, sub.itemID)
			}
		}
	}
	deliver := func(subs map[*subscriber]bool, env events.Envelope) {
		for sub := range subs {
			select {
			case sub.ch <- env:
			default:
				// Slow subscriber: closing forces a client resync,
				// which is cheaper than unbounded buffering and keeps
				// the no-gaps guarantee honest.
				b.log.WithFields(logrus.Fields{
					"item_id": env.ItemID,
					"topic":   env.Topic,
				}).Warn("subscriber too slow, closing subscription")
				closeSub(sub)
				delete(subs, sub)
			}
		}
	}

	b.log.Info("broadcaster started")
	for {
		select {
		case <-ctx.Done():
			for _, subs := range perItem {
				for sub := range subs {
					closeSub(sub)
				}
			}
			for sub := range global {
				closeSub(sub)
			}
			b.log.Info("broadcaster stopped")
			return

		case sub := <-b.register:
			if sub.itemID == uuid.Nil {
				global[sub] = true
			} else {
				if _, ok := perItem[sub.itemID]; !ok {
					perItem[sub.itemID] = make(map[*subscriber]bool)
				}
				perItem[sub.itemID][sub] = true
			}

		case sub := <-b.unregister:
			remove(sub)
			closeSub(sub)

		case env := <-b.publish:
			b.remember(env)
			if subs, ok := perItem[env.ItemID]; ok {
				deliver(subs, env)
			}
			deliver(global, env)
		}
	}
}

// Publish enqueues an envelope for fan-out. It never blocks past ctx:
// on a full hub the caller keeps the event pending in the outbox and
// retries, rather than stalling the drain loop.
func (b *Broadcaster) Publish(ctx context.Context, env events.Envelope) error {
	select {
	case b.publish <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers interest in a single item's events.
func (b *Broadcaster) Subscribe(ctx context.Context, itemID uuid.UUID) *Subscription {
	return b.subscribe(ctx, itemID)
}

// SubscribeGlobal registers interest in all events.
func (b *Broadcaster) SubscribeGlobal(ctx context.Context) *Subscription {
	return b.subscribe(ctx, uuid.Nil)
}

func (b *Broadcaster) subscribe(ctx context.Context, itemID uuid.UUID) *Subscription {
	sub := &subscriber{itemID: itemID, ch: make(chan events.Envelope, subscriberBuffer)}
	select {
	case b.register <- sub:
	case <-ctx.Done():
		sub.once.Do(func() { close(sub.ch) })
	}
	return &Subscription{
		C: sub.ch,
		cancel: func() {
			select {
			case b.unregister <- sub:
			case <-ctx.Done():
			}
		},
	}
}

// Replay returns buffered envelopes for an item with seq > afterSeq, in
// order. The buffer is bounded; callers needing older history must go
// to the bid store.
func (b *Broadcaster) Replay(itemID uuid.UUID, afterSeq int64) []events.Envelope {
	v, ok := b.replay.Get(itemID)
	if !ok {
		return nil
	}
	buffered := v.([]events.Envelope)
	var out []events.Envelope
	for _, env := range buffered {
		if env.Seq > afterSeq {
			out = append(out, env)
		}
	}
	return out
}

func (b *Broadcaster) remember(env events.Envelope) {
	if env.Seq == 0 {
		return
	}
	var buffered []events.Envelope
	if v, ok := b.replay.Get(env.ItemID); ok {
		buffered = v.([]events.Envelope)
	}
	buffered = append(buffered, env)
	if len(buffered) > replayPerItem {
		buffered = buffered[len(buffered)-replayPerItem:]
	}
	b.replay.Add(env.ItemID, buffered)
}
