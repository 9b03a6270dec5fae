package gormstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/models"
)

type resultStore struct {
	s *Stores
}

func (r *resultStore) Create(ctx context.Context, result *models.AuctionResult) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()
	return translate(r.s.db.WithContext(ctx).Create(result).Error)
}

func (r *resultStore) GetByItem(ctx context.Context, itemID uuid.UUID) (models.AuctionResult, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var result models.AuctionResult
	err := r.s.db.WithContext(ctx).First(&result, "item_id = ?", itemID).Error
	return result, translate(err)
}

func (r *resultStore) Get(ctx context.Context, id uuid.UUID) (models.AuctionResult, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var result models.AuctionResult
	err := r.s.db.WithContext(ctx).First(&result, "id = ?", id).Error
	return result, translate(err)
}

func (r *resultStore) ListByWinner(ctx context.Context, winnerID uuid.UUID) ([]models.AuctionResult, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var results []models.AuctionResult
	err := r.s.db.WithContext(ctx).
		Where("winner_id = ?", winnerID).
		Order("created_at DESC").
		Find(&results).Error
	return results, translate(err)
}

func (r *resultStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ResultStatus) (models.AuctionResult, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var result models.AuctionResult
	if err := r.s.db.WithContext(ctx).First(&result, "id = ?", id).Error; err != nil {
		return models.AuctionResult{}, translate(err)
	}
	result.Status = status
	if err := r.s.db.WithContext(ctx).Save(&result).Error; err != nil {
		return models.AuctionResult{}, translate(err)
	}
	return result, nil
}
