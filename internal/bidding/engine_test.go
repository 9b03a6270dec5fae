package bidding

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/auctionhive/auction-backend/internal/auctionerrors"
	"github.com/auctionhive/auction-backend/internal/clock"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/notify"
	"github.com/auctionhive/auction-backend/internal/store/memstore"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type engineFixture struct {
	stores   *memstore.Stores
	clock    *clock.Fake
	recorder *notify.Recorder
	engine   *Engine

	seller models.User
	bidder models.User
	rival  models.User
	item   models.Item
}

func newEngineFixture(t *testing.T, cfg Config) *engineFixture {
	t.Helper()

	f := &engineFixture{
		stores:   memstore.New(),
		clock:    clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		recorder: notify.NewRecorder(),
	}
	f.engine = NewEngine(f.stores, f.clock, f.recorder, cfg, testLogger())

	ctx := context.Background()
	f.seller = models.User{Username: "seller", Email: "seller@example.com", Status: models.UserStatusActive}
	f.bidder = models.User{Username: "bidder", Email: "bidder@example.com", Status: models.UserStatusActive}
	f.rival = models.User{Username: "rival", Email: "rival@example.com", Status: models.UserStatusActive}
	require.NoError(t, f.stores.Users().Create(ctx, &f.seller))
	require.NoError(t, f.stores.Users().Create(ctx, &f.bidder))
	require.NoError(t, f.stores.Users().Create(ctx, &f.rival))

	start := f.clock.Now().Add(-time.Hour)
	end := f.clock.Now().Add(time.Hour)
	f.item = models.Item{
		SellerID:      f.seller.ID,
		Title:         "vintage radio",
		StartingPrice: decimal.NewFromInt(100),
		Status:        models.ItemStatusActive,
		StartTime:     &start,
		EndTime:       &end,
	}
	require.NoError(t, f.stores.Items().Create(ctx, &f.item))
	return f
}

func (f *engineFixture) place(bidderID uuid.UUID, amount string) (models.Bid, error) {
	return f.engine.PlaceBid(context.Background(), PlaceBidInput{
		ItemID:   f.item.ID,
		BidderID: bidderID,
		Amount:   decimal.RequireFromString(amount),
	})
}

func TestPlaceBid_FirstBidAtStartingPrice(t *testing.T) {
	f := newEngineFixture(t, Config{})

	bid, err := f.place(f.bidder.ID, "100.00")
	require.NoError(t, err)
	require.Equal(t, int64(1), bid.ItemBidSeq)
	require.Equal(t, f.bidder.ID, bid.BidderID)
	require.True(t, bid.Amount.Equal(decimal.NewFromInt(100)))
	require.Equal(t, f.clock.Now(), bid.PlacedAt)

	item, err := f.stores.Items().Get(context.Background(), f.item.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), item.LastBidSeq)
}

func TestPlaceBid_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, f *engineFixture)
		bidder   func(f *engineFixture) uuid.UUID
		item     func(f *engineFixture) uuid.UUID
		amount   string
		wantCode auctionerrors.Code
	}{
		{
			name:     "unknown_item",
			item:     func(f *engineFixture) uuid.UUID { return uuid.New() },
			amount:   "150.00",
			wantCode: auctionerrors.CodeNotFound,
		},
		{
			name:     "unknown_bidder",
			bidder:   func(f *engineFixture) uuid.UUID { return uuid.New() },
			amount:   "150.00",
			wantCode: auctionerrors.CodeUnauthorized,
		},
		{
			name: "suspended_bidder",
			setup: func(t *testing.T, f *engineFixture) {
				f.bidder.Status = models.UserStatusSuspended
				f.stores.PutUser(f.bidder)
			},
			amount:   "150.00",
			wantCode: auctionerrors.CodeUnauthorized,
		},
		{
			name: "draft_item",
			setup: func(t *testing.T, f *engineFixture) {
				require.NoError(t, f.stores.Items().UpdateStatus(context.Background(), f.item.ID, models.ItemStatusDraft))
			},
			amount:   "150.00",
			wantCode: auctionerrors.CodeInvalidState,
		},
		{
			name: "sold_item",
			setup: func(t *testing.T, f *engineFixture) {
				require.NoError(t, f.stores.Items().UpdateStatus(context.Background(), f.item.ID, models.ItemStatusSold))
			},
			amount:   "150.00",
			wantCode: auctionerrors.CodeInvalidState,
		},
		{
			name: "window_closed",
			setup: func(t *testing.T, f *engineFixture) {
				f.clock.Advance(2 * time.Hour)
			},
			amount:   "150.00",
			wantCode: auctionerrors.CodeAuctionClosed,
		},
		{
			name: "window_closed_exactly_at_end",
			setup: func(t *testing.T, f *engineFixture) {
				f.clock.Set(*f.item.EndTime)
			},
			amount:   "150.00",
			wantCode: auctionerrors.CodeAuctionClosed,
		},
		{
			name:     "below_starting_price",
			amount:   "99.99",
			wantCode: auctionerrors.CodeBelowStartingPrice,
		},
		{
			name: "equal_to_current_highest",
			setup: func(t *testing.T, f *engineFixture) {
				_, err := f.place(f.rival.ID, "150.00")
				require.NoError(t, err)
			},
			amount:   "150.00",
			wantCode: auctionerrors.CodeBidTooLow,
		},
		{
			name: "below_current_highest",
			setup: func(t *testing.T, f *engineFixture) {
				_, err := f.place(f.rival.ID, "150.00")
				require.NoError(t, err)
			},
			amount:   "120.00",
			wantCode: auctionerrors.CodeBidTooLow,
		},
		{
			name:     "self_bid",
			bidder:   func(f *engineFixture) uuid.UUID { return f.seller.ID },
			amount:   "150.00",
			wantCode: auctionerrors.CodeSelfBid,
		},
		{
			name:     "zero_amount",
			amount:   "0",
			wantCode: auctionerrors.CodeValidation,
		},
		{
			name:     "negative_amount",
			amount:   "-10",
			wantCode: auctionerrors.CodeValidation,
		},
		{
			name:     "sub_cent_precision",
			amount:   "100.001",
			wantCode: auctionerrors.CodeValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newEngineFixture(t, Config{})
			if tc.setup != nil {
				tc.setup(t, f)
			}

			bidderID := f.bidder.ID
			if tc.bidder != nil {
				bidderID = tc.bidder(f)
			}
			itemID := f.item.ID
			if tc.item != nil {
				itemID = tc.item(f)
			}

			_, err := f.engine.PlaceBid(context.Background(), PlaceBidInput{
				ItemID:   itemID,
				BidderID: bidderID,
				Amount:   decimal.RequireFromString(tc.amount),
			})
			require.Error(t, err)
			require.Equal(t, tc.wantCode, auctionerrors.CodeOf(err))
		})
	}
}

func TestPlaceBid_RejectionLeavesNoTrace(t *testing.T) {
	f := newEngineFixture(t, Config{})
	ctx := context.Background()

	_, err := f.place(f.bidder.ID, "50.00")
	require.Equal(t, auctionerrors.CodeBelowStartingPrice, auctionerrors.CodeOf(err))

	count, err := f.stores.Bids().CountByItem(ctx, f.item.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	item, err := f.stores.Items().Get(ctx, f.item.ID)
	require.NoError(t, err)
	require.Zero(t, item.LastBidSeq)

	pending, err := f.stores.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestPlaceBid_SequenceIsContiguous(t *testing.T) {
	f := newEngineFixture(t, Config{})
	ctx := context.Background()

	amounts := []string{"100.00", "110.50", "125.00", "200.00"}
	for i, amount := range amounts {
		bidder := f.bidder.ID
		if i%2 == 1 {
			bidder = f.rival.ID
		}
		bid, err := f.place(bidder, amount)
		require.NoError(t, err)
		require.Equal(t, int64(i+1), bid.ItemBidSeq)
	}

	bids, err := f.stores.Bids().ListByItem(ctx, f.item.ID, 0)
	require.NoError(t, err)
	require.Len(t, bids, len(amounts))
	for i := 1; i < len(bids); i++ {
		require.Equal(t, bids[i-1].ItemBidSeq+1, bids[i].ItemBidSeq)
		require.True(t, bids[i].Amount.Cmp(bids[i-1].Amount) > 0,
			"amounts must be strictly increasing in sequence order")
	}

	pending, err := f.stores.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, len(amounts))
}

func TestPlaceBid_IdempotentRetry(t *testing.T) {
	f := newEngineFixture(t, Config{})
	ctx := context.Background()

	in := PlaceBidInput{
		ItemID:    f.item.ID,
		BidderID:  f.bidder.ID,
		Amount:    decimal.RequireFromString("130.00"),
		RequestID: "req-42",
	}
	first, err := f.engine.PlaceBid(ctx, in)
	require.NoError(t, err)

	second, err := f.engine.PlaceBid(ctx, in)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.ItemBidSeq, second.ItemBidSeq)

	count, err := f.stores.Bids().CountByItem(ctx, f.item.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	// The replay emits no second event.
	pending, err := f.stores.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestPlaceBid_SelfBidAllowedOverride(t *testing.T) {
	f := newEngineFixture(t, Config{SelfBidAllowed: true})

	bid, err := f.place(f.seller.ID, "150.00")
	require.NoError(t, err)
	require.Equal(t, f.seller.ID, bid.BidderID)
}

func TestPlaceBid_OutbidNotification(t *testing.T) {
	f := newEngineFixture(t, Config{})

	_, err := f.place(f.bidder.ID, "100.00")
	require.NoError(t, err)
	_, err = f.place(f.rival.ID, "120.00")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		outbid := f.recorder.ByKind(models.NotificationOutbid)
		return len(outbid) == 1 && outbid[0].UserID == f.bidder.ID
	}, time.Second, 10*time.Millisecond)
}

func TestPlaceBid_NoOutbidNotificationForSelf(t *testing.T) {
	f := newEngineFixture(t, Config{})

	_, err := f.place(f.bidder.ID, "100.00")
	require.NoError(t, err)
	_, err = f.place(f.bidder.ID, "120.00")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.Empty(t, f.recorder.ByKind(models.NotificationOutbid))
}

func TestPlaceBid_ConcurrentBidders(t *testing.T) {
	f := newEngineFixture(t, Config{})
	ctx := context.Background()

	const bidders = 16
	users := make([]models.User, bidders)
	for i := range users {
		users[i] = models.User{
			Username: fmt.Sprintf("user%02d", i),
			Email:    fmt.Sprintf("user%02d@example.com", i),
			Status:   models.UserStatusActive,
		}
		require.NoError(t, f.stores.Users().Create(ctx, &users[i]))
	}

	amounts := make([]int64, bidders)
	for i := range amounts {
		amounts[i] = 100 + int64(i)*10
	}
	rand.Shuffle(len(amounts), func(i, j int) { amounts[i], amounts[j] = amounts[j], amounts[i] })

	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Losing a race is expected; only the error class matters.
			_, err := f.engine.PlaceBid(ctx, PlaceBidInput{
				ItemID:   f.item.ID,
				BidderID: users[i].ID,
				Amount:   decimal.NewFromInt(amounts[i]),
			})
			if err != nil {
				require.True(t, auctionerrors.IsPrecondition(err), "unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	bids, err := f.stores.Bids().ListByItem(ctx, f.item.ID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, bids)

	for i, bid := range bids {
		require.Equal(t, int64(i+1), bid.ItemBidSeq, "sequence must be contiguous from 1")
		if i > 0 {
			require.True(t, bid.Amount.Cmp(bids[i-1].Amount) > 0,
				"each accepted bid must exceed the previous one")
		}
	}

	// The top amount always lands regardless of interleaving.
	highest, err := f.stores.Bids().Highest(ctx, f.item.ID)
	require.NoError(t, err)
	require.True(t, highest.Amount.Equal(decimal.NewFromInt(100+int64(bidders-1)*10)))

	item, err := f.stores.Items().Get(ctx, f.item.ID)
	require.NoError(t, err)
	require.Equal(t, int64(len(bids)), item.LastBidSeq)
}

func TestBidsForItem_UnknownItem(t *testing.T) {
	f := newEngineFixture(t, Config{})

	_, err := f.engine.BidsForItem(context.Background(), uuid.New(), 0)
	require.Equal(t, auctionerrors.CodeNotFound, auctionerrors.CodeOf(err))
}

func TestBidsForItem_AfterSeq(t *testing.T) {
	f := newEngineFixture(t, Config{})

	for _, amount := range []string{"100.00", "110.00", "120.00"} {
		_, err := f.place(f.bidder.ID, amount)
		require.NoError(t, err)
	}

	bids, err := f.engine.BidsForItem(context.Background(), f.item.ID, 1)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, int64(2), bids[0].ItemBidSeq)
}

func TestUserBids_OutbidFlags(t *testing.T) {
	f := newEngineFixture(t, Config{})

	_, err := f.place(f.bidder.ID, "100.00")
	require.NoError(t, err)
	_, err = f.place(f.rival.ID, "150.00")
	require.NoError(t, err)

	history, err := f.engine.UserBids(context.Background(), f.bidder.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "vintage radio", history[0].ItemTitle)
	require.True(t, history[0].IsOutbid)
	require.False(t, history[0].IsHighestBid)
	require.True(t, history[0].CurrentHighest.Equal(decimal.NewFromInt(150)))

	rivalHistory, err := f.engine.UserBids(context.Background(), f.rival.ID)
	require.NoError(t, err)
	require.Len(t, rivalHistory, 1)
	require.True(t, rivalHistory[0].IsHighestBid)
	require.False(t, rivalHistory[0].IsOutbid)
}

func TestHighestBid_NoBids(t *testing.T) {
	f := newEngineFixture(t, Config{})

	_, err := f.engine.HighestBid(context.Background(), f.item.ID)
	require.Equal(t, auctionerrors.CodeNotFound, auctionerrors.CodeOf(err))
}
