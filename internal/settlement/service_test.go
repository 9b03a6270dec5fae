package settlement

import (
	"context"
	"io"
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

type settleFixture struct {
	stores   *memstore.Stores
	clock    *clock.Fake
	recorder *notify.Recorder
	service  *Service

	seller models.User
	bidder models.User
}

func newSettleFixture(t *testing.T) *settleFixture {
	t.Helper()

	f := &settleFixture{
		stores:   memstore.New(),
		clock:    clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		recorder: notify.NewRecorder(),
	}
	f.service = NewService(f.stores, f.clock, f.recorder, testLogger())

	ctx := context.Background()
	f.seller = models.User{Username: "seller", Email: "seller@example.com", Status: models.UserStatusActive}
	f.bidder = models.User{Username: "bidder", Email: "bidder@example.com", Status: models.UserStatusActive}
	require.NoError(t, f.stores.Users().Create(ctx, &f.seller))
	require.NoError(t, f.stores.Users().Create(ctx, &f.bidder))
	return f
}

// expiredItem creates an active item whose window closed an hour ago.
func (f *settleFixture) expiredItem(t *testing.T) models.Item {
	t.Helper()

	start := f.clock.Now().Add(-3 * time.Hour)
	end := f.clock.Now().Add(-time.Hour)
	item := models.Item{
		SellerID:      f.seller.ID,
		Title:         "old clock",
		StartingPrice: decimal.NewFromInt(50),
		Status:        models.ItemStatusActive,
		StartTime:     &start,
		EndTime:       &end,
	}
	require.NoError(t, f.stores.Items().Create(context.Background(), &item))
	return item
}

func (f *settleFixture) addBid(t *testing.T, itemID uuid.UUID, seq int64, amount string) models.Bid {
	t.Helper()

	bid := models.Bid{
		ItemID:     itemID,
		BidderID:   f.bidder.ID,
		Amount:     decimal.RequireFromString(amount),
		PlacedAt:   f.clock.Now().Add(-2 * time.Hour),
		ItemBidSeq: seq,
	}
	require.NoError(t, f.stores.Bids().Create(context.Background(), &bid))
	return bid
}

func TestSettle_WithBids(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()
	item := f.expiredItem(t)
	f.addBid(t, item.ID, 1, "60.00")
	winning := f.addBid(t, item.ID, 2, "80.00")

	result, err := f.service.Settle(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ResultStatusPending, result.Status)
	require.NotNil(t, result.WinnerID)
	require.Equal(t, winning.BidderID, *result.WinnerID)
	require.True(t, result.FinalPrice.Equal(winning.Amount))

	settled, err := f.stores.Items().Get(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemStatusSold, settled.Status)

	pending, err := f.stores.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, models.TopicAuctionClosed, pending[0].Topic)

	require.Eventually(t, func() bool {
		won := f.recorder.ByKind(models.NotificationWon)
		closed := f.recorder.ByKind(models.NotificationListingClosed)
		return len(won) == 1 && won[0].UserID == f.bidder.ID &&
			len(closed) == 1 && closed[0].UserID == f.seller.ID
	}, time.Second, 10*time.Millisecond)
}

func TestSettle_NoBids(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()
	item := f.expiredItem(t)

	result, err := f.service.Settle(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ResultStatusCancelled, result.Status)
	require.Nil(t, result.WinnerID)
	require.True(t, result.FinalPrice.IsZero())

	settled, err := f.stores.Items().Get(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemStatusEnded, settled.Status)

	require.Eventually(t, func() bool {
		ended := f.recorder.ByKind(models.NotificationEndedNoBids)
		return len(ended) == 1 && ended[0].UserID == f.seller.ID
	}, time.Second, 10*time.Millisecond)
}

func TestSettle_Idempotent(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()
	item := f.expiredItem(t)
	f.addBid(t, item.ID, 1, "75.00")

	first, err := f.service.Settle(ctx, item.ID)
	require.NoError(t, err)

	second, err := f.service.Settle(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.Status, second.Status)

	// exactly one close event on the wire
	pending, err := f.stores.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.Eventually(t, func() bool {
		return len(f.recorder.ByKind(models.NotificationWon)) == 1
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Len(t, f.recorder.ByKind(models.NotificationWon), 1)
}

func TestSettle_DraftRejected(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()

	item := models.Item{
		SellerID:      f.seller.ID,
		Title:         "unpublished",
		StartingPrice: decimal.NewFromInt(10),
		Status:        models.ItemStatusDraft,
	}
	require.NoError(t, f.stores.Items().Create(ctx, &item))

	_, err := f.service.Settle(ctx, item.ID)
	require.Equal(t, auctionerrors.CodeInvalidState, auctionerrors.CodeOf(err))
}

func TestSettle_UnknownItem(t *testing.T) {
	f := newSettleFixture(t)

	_, err := f.service.Settle(context.Background(), uuid.New())
	require.Equal(t, auctionerrors.CodeNotFound, auctionerrors.CodeOf(err))
}

func TestUpdateResultStatus(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()
	item := f.expiredItem(t)
	f.addBid(t, item.ID, 1, "75.00")

	result, err := f.service.Settle(ctx, item.ID)
	require.NoError(t, err)

	updated, err := f.service.UpdateResultStatus(ctx, result.ID, models.ResultStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.ResultStatusCompleted, updated.Status)

	// completed is final
	_, err = f.service.UpdateResultStatus(ctx, result.ID, models.ResultStatusCompleted)
	require.Equal(t, auctionerrors.CodeInvalidState, auctionerrors.CodeOf(err))
}

func TestUpdateResultStatus_CancelledResultImmutable(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()
	item := f.expiredItem(t)

	result, err := f.service.Settle(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ResultStatusCancelled, result.Status)

	_, err = f.service.UpdateResultStatus(ctx, result.ID, models.ResultStatusCompleted)
	require.Equal(t, auctionerrors.CodeInvalidState, auctionerrors.CodeOf(err))
}

func TestResultsForWinner(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		item := f.expiredItem(t)
		f.addBid(t, item.ID, 1, "75.00")
		_, err := f.service.Settle(ctx, item.ID)
		require.NoError(t, err)
	}

	wins, err := f.service.ResultsForWinner(ctx, f.bidder.ID)
	require.NoError(t, err)
	require.Len(t, wins, 2)
}

// liveItem creates an active item whose window is still open.
func (f *settleFixture) liveItem(t *testing.T) models.Item {
	t.Helper()

	start := f.clock.Now().Add(-time.Hour)
	end := f.clock.Now().Add(time.Hour)
	item := models.Item{
		SellerID:      f.seller.ID,
		Title:         "live clock",
		StartingPrice: decimal.NewFromInt(50),
		Status:        models.ItemStatusActive,
		StartTime:     &start,
		EndTime:       &end,
	}
	require.NoError(t, f.stores.Items().Create(context.Background(), &item))
	return item
}

func TestCancelZeroBid_ClosesActiveListing(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()
	item := f.liveItem(t)

	result, err := f.service.CancelZeroBid(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ResultStatusCancelled, result.Status)
	require.Nil(t, result.WinnerID)

	got, err := f.stores.Items().Get(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemStatusEnded, got.Status)

	rows, err := f.stores.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.TopicAuctionClosed, rows[0].Topic)
}

func TestCancelZeroBid_RejectsOnceBidExists(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()
	item := f.liveItem(t)
	f.addBid(t, item.ID, 1, "75.00")

	_, err := f.service.CancelZeroBid(ctx, item.ID)
	require.Equal(t, auctionerrors.CodeInvalidState, auctionerrors.CodeOf(err))

	// The listing must stay live and unsettled; the bid check and the
	// close share one transaction so a concurrent bid can never be
	// converted into a sale by the cancel path.
	got, err := f.stores.Items().Get(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemStatusActive, got.Status)

	_, err = f.stores.Results().GetByItem(ctx, item.ID)
	require.Error(t, err)

	rows, err := f.stores.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestCancelZeroBid_TerminalItemRejected(t *testing.T) {
	f := newSettleFixture(t)
	ctx := context.Background()
	item := f.expiredItem(t)

	_, err := f.service.Settle(ctx, item.ID)
	require.NoError(t, err)

	_, err = f.service.CancelZeroBid(ctx, item.ID)
	require.Equal(t, auctionerrors.CodeInvalidState, auctionerrors.CodeOf(err))
}
