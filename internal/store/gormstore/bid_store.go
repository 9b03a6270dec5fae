package gormstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type bidStore struct {
	s *Stores
}

func (r *bidStore) Create(ctx context.Context, bid *models.Bid) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()
	return translate(r.s.db.WithContext(ctx).Create(bid).Error)
}

func (r *bidStore) Highest(ctx context.Context, itemID uuid.UUID) (models.Bid, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	// Ties on amount are impossible under the strict-increase invariant;
	// the seq tie-break is kept for data-corruption scenarios.
	var bid models.Bid
	err := r.s.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("amount DESC, item_bid_seq ASC").
		First(&bid).Error
	return bid, translate(err)
}

func (r *bidStore) ListByItem(ctx context.Context, itemID uuid.UUID, afterSeq int64) ([]models.Bid, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var bids []models.Bid
	err := r.s.db.WithContext(ctx).
		Where("item_id = ? AND item_bid_seq > ?", itemID, afterSeq).
		Order("item_bid_seq ASC").
		Find(&bids).Error
	return bids, translate(err)
}

func (r *bidStore) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]models.Bid, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var bids []models.Bid
	err := r.s.db.WithContext(ctx).
		Where("bidder_id = ?", bidderID).
		Order("placed_at DESC").
		Find(&bids).Error
	return bids, translate(err)
}

func (r *bidStore) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var count int64
	err := r.s.db.WithContext(ctx).Model(&models.Bid{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count, translate(err)
}

func (r *bidStore) FindByRequestID(ctx context.Context, itemID uuid.UUID, requestID string) (models.Bid, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var bid models.Bid
	err := r.s.db.WithContext(ctx).
		Where("item_id = ? AND request_id = ?", itemID, requestID).
		First(&bid).Error
	return bid, translate(err)
}

func (r *bidStore) Stats(ctx context.Context) (store.BidStats, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var stats store.BidStats
	db := r.s.db.WithContext(ctx)

	if err := db.Model(&models.Bid{}).Count(&stats.TotalBids).Error; err != nil {
		return store.BidStats{}, translate(err)
	}

	var total decimal.NullDecimal
	if err := db.Model(&models.Bid{}).
		Select("SUM(amount)").Scan(&total).Error; err != nil {
		return store.BidStats{}, translate(err)
	}
	if total.Valid {
		stats.TotalValue = total.Decimal
	}

	if err := db.Model(&models.Bid{}).
		Distinct("bidder_id").Count(&stats.UniqueBidders).Error; err != nil {
		return store.BidStats{}, translate(err)
	}

	active, err := (&itemStore{r.s}).CountByStatus(ctx, models.ItemStatusActive)
	if err != nil {
		return store.BidStats{}, err
	}
	stats.ActiveAuctions = active
	return stats, nil
}
