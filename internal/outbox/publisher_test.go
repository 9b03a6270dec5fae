package outbox

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/auctionhive/auction-backend/internal/broadcast"
	"github.com/auctionhive/auction-backend/internal/events"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store/memstore"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func appendBidEvent(t *testing.T, stores *memstore.Stores, itemID uuid.UUID, seq int64) {
	t.Helper()

	row, err := events.NewBidAccepted(events.BidAccepted{
		BidID:      uuid.New(),
		ItemID:     itemID,
		BidderID:   uuid.New(),
		Amount:     decimal.NewFromInt(100 + seq),
		ItemBidSeq: seq,
		PlacedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, stores.Outbox().Append(context.Background(), &row))
}

func TestDrainOnce_PublishesInInsertionOrder(t *testing.T) {
	stores := memstore.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := broadcast.New(testLogger())
	go bus.Run(ctx)
	sub := bus.SubscribeGlobal(ctx)
	defer sub.Close()

	itemID := uuid.New()
	appendBidEvent(t, stores, itemID, 1)
	appendBidEvent(t, stores, itemID, 2)
	closeRow, err := events.NewAuctionClosed(events.AuctionClosed{
		ItemID:     itemID,
		Status:     models.ItemStatusSold,
		FinalPrice: decimal.NewFromInt(102),
		ClosedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, stores.Outbox().Append(ctx, &closeRow))

	p := NewPublisher(stores, bus, 100, 0, testLogger())
	n, err := p.DrainOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	var got []events.Envelope
	for len(got) < 3 {
		select {
		case env := <-sub.C:
			got = append(got, env)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d events", len(got))
		}
	}
	require.Equal(t, int64(1), got[0].Seq)
	require.Equal(t, int64(2), got[1].Seq)
	require.Equal(t, models.TopicAuctionClosed, got[2].Topic)

	// everything marked published; second drain is a no-op
	pending, err := stores.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	n, err = p.DrainOnce(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDrainOnce_RespectsBatchSize(t *testing.T) {
	stores := memstore.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := broadcast.New(testLogger())
	go bus.Run(ctx)
	sub := bus.SubscribeGlobal(ctx)
	defer sub.Close()

	itemID := uuid.New()
	for seq := int64(1); seq <= 5; seq++ {
		appendBidEvent(t, stores, itemID, seq)
	}

	p := NewPublisher(stores, bus, 2, 0, testLogger())

	n, err := p.DrainOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	pending, err := stores.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	// the oldest remaining row is next
	require.Equal(t, int64(3), events.EnvelopeFor(pending[0]).Seq)
}

func TestRun_DrainsOnPoll(t *testing.T) {
	stores := memstore.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := broadcast.New(testLogger())
	go bus.Run(ctx)

	itemID := uuid.New()
	appendBidEvent(t, stores, itemID, 1)

	p := NewPublisher(stores, bus, 100, 5*time.Millisecond, testLogger())
	go p.Run(ctx)

	require.Eventually(t, func() bool {
		pending, err := stores.Outbox().FetchPending(context.Background(), 10)
		return err == nil && len(pending) == 0
	}, time.Second, 10*time.Millisecond)
}
