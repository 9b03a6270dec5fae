package gormstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type favoriteStore struct {
	s *Stores
}

func (r *favoriteStore) Add(ctx context.Context, favorite *models.Favorite) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()
	return translate(r.s.db.WithContext(ctx).Create(favorite).Error)
}

func (r *favoriteStore) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res := r.s.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *favoriteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var favorites []models.Favorite
	err := r.s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, translate(err)
}
