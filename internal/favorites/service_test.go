package favorites

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
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store/memstore"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type favoritesFixture struct {
	stores  *memstore.Stores
	service *Service

	watcher models.User
	seller  models.User
}

func newFavoritesFixture(t *testing.T) *favoritesFixture {
	t.Helper()

	f := &favoritesFixture{stores: memstore.New()}
	f.service = NewService(f.stores, testLogger())

	ctx := context.Background()
	f.watcher = models.User{Username: "watcher", Email: "watcher@example.com", Status: models.UserStatusActive}
	f.seller = models.User{Username: "seller", Email: "seller@example.com", Status: models.UserStatusActive}
	require.NoError(t, f.stores.Users().Create(ctx, &f.watcher))
	require.NoError(t, f.stores.Users().Create(ctx, &f.seller))
	return f
}

func (f *favoritesFixture) item(t *testing.T, title string, status models.ItemStatus) models.Item {
	t.Helper()

	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	item := models.Item{
		SellerID:      f.seller.ID,
		Title:         title,
		ImageURL:      "https://img.example.com/" + title + ".jpg",
		StartingPrice: decimal.NewFromInt(25),
		Status:        status,
	}
	if status != models.ItemStatusDraft {
		item.StartTime = &start
		item.EndTime = &end
	}
	require.NoError(t, f.stores.Items().Create(context.Background(), &item))
	return item
}

func TestAdd_ListsNewestFirst(t *testing.T) {
	f := newFavoritesFixture(t)
	ctx := context.Background()

	first := f.item(t, "teapot", models.ItemStatusActive)
	second := f.item(t, "lamp", models.ItemStatusActive)

	require.NoError(t, f.service.Add(ctx, f.watcher.ID, first.ID))
	require.NoError(t, f.service.Add(ctx, f.watcher.ID, second.ID))

	entries, err := f.service.List(ctx, f.watcher.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, second.ID, entries[0].ItemID)
	require.Equal(t, "lamp", entries[0].ItemTitle)
	require.Equal(t, second.ImageURL, entries[0].ItemImageURL)
	require.Equal(t, models.ItemStatusActive, entries[0].ItemStatus)
	require.Equal(t, first.ID, entries[1].ItemID)
}

func TestAdd_RepeatIsNoOp(t *testing.T) {
	f := newFavoritesFixture(t)
	ctx := context.Background()
	item := f.item(t, "teapot", models.ItemStatusActive)

	require.NoError(t, f.service.Add(ctx, f.watcher.ID, item.ID))
	require.NoError(t, f.service.Add(ctx, f.watcher.ID, item.ID))

	entries, err := f.service.List(ctx, f.watcher.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestAdd_DraftRejected(t *testing.T) {
	f := newFavoritesFixture(t)
	item := f.item(t, "hidden", models.ItemStatusDraft)

	err := f.service.Add(context.Background(), f.watcher.ID, item.ID)
	require.Equal(t, auctionerrors.CodeInvalidState, auctionerrors.CodeOf(err))
}

func TestAdd_UnknownItem(t *testing.T) {
	f := newFavoritesFixture(t)

	err := f.service.Add(context.Background(), f.watcher.ID, uuid.New())
	require.Equal(t, auctionerrors.CodeNotFound, auctionerrors.CodeOf(err))
}

func TestAdd_EndedItemStillWatchable(t *testing.T) {
	f := newFavoritesFixture(t)
	ctx := context.Background()
	item := f.item(t, "gone", models.ItemStatusEnded)

	require.NoError(t, f.service.Add(ctx, f.watcher.ID, item.ID))

	entries, err := f.service.List(ctx, f.watcher.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.ItemStatusEnded, entries[0].ItemStatus)
}

func TestRemove(t *testing.T) {
	f := newFavoritesFixture(t)
	ctx := context.Background()
	item := f.item(t, "teapot", models.ItemStatusActive)

	require.NoError(t, f.service.Add(ctx, f.watcher.ID, item.ID))
	require.NoError(t, f.service.Remove(ctx, f.watcher.ID, item.ID))

	entries, err := f.service.List(ctx, f.watcher.ID)
	require.NoError(t, err)
	require.Empty(t, entries)

	err = f.service.Remove(ctx, f.watcher.ID, item.ID)
	require.Equal(t, auctionerrors.CodeNotFound, auctionerrors.CodeOf(err))
}

func TestList_IsPerUser(t *testing.T) {
	f := newFavoritesFixture(t)
	ctx := context.Background()
	item := f.item(t, "teapot", models.ItemStatusActive)

	require.NoError(t, f.service.Add(ctx, f.watcher.ID, item.ID))

	entries, err := f.service.List(ctx, f.seller.ID)
	require.NoError(t, err)
	require.Empty(t, entries)
}
