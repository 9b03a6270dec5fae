package gormstore

import (
	"context"
	"time"

	"github.com/auctionhive/auction-backend/internal/models"
)

type outboxStore struct {
	s *Stores
}

func (r *outboxStore) Append(ctx context.Context, event *models.OutboxEvent) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()
	return translate(r.s.db.WithContext(ctx).Create(event).Error)
}

func (r *outboxStore) FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var rows []models.OutboxEvent
	err := r.s.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, translate(err)
}

func (r *outboxStore) MarkPublished(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	return translate(r.s.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("published_at", at).Error)
}
