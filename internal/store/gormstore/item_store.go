package gormstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type itemStore struct {
	s *Stores
}

func (r *itemStore) Create(ctx context.Context, item *models.Item) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()
	return translate(r.s.db.WithContext(ctx).Create(item).Error)
}

func (r *itemStore) Get(ctx context.Context, id uuid.UUID) (models.Item, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var item models.Item
	err := r.s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	return item, translate(err)
}

func (r *itemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (models.Item, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var item models.Item
	err := r.s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	return item, translate(err)
}

func (r *itemStore) List(ctx context.Context, filter store.ItemFilter) ([]models.Item, int64, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	query := r.s.db.WithContext(ctx).Model(&models.Item{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	var items []models.Item
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

func (r *itemStore) Update(ctx context.Context, item *models.Item) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()
	return translate(r.s.db.WithContext(ctx).Save(item).Error)
}

func (r *itemStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res := r.s.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *itemStore) FindExpired(ctx context.Context, now time.Time) ([]models.Item, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var items []models.Item
	err := r.s.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", models.ItemStatusActive, now).
		Order("end_time ASC").
		Find(&items).Error
	return items, translate(err)
}

func (r *itemStore) AdvanceBidSeq(ctx context.Context, id uuid.UUID, expected int64) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res := r.s.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND last_bid_seq = ?", id, expected).
		Update("last_bid_seq", expected+1)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *itemStore) CountByStatus(ctx context.Context, status models.ItemStatus) (int64, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var count int64
	err := r.s.db.WithContext(ctx).Model(&models.Item{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, translate(err)
}
