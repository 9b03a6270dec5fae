package memstore

import (
	"context"
	"time"

	"github.com/auctionhive/auction-backend/internal/models"
)

type outboxStore struct {
	s *Stores
}

func (r *outboxStore) Append(ctx context.Context, event *models.OutboxEvent) error {
	unlock := r.s.lock()
	defer unlock()

	event.ID = r.s.d.nextOutbox
	r.s.d.nextOutbox++
	event.CreatedAt = time.Now().UTC()
	r.s.d.outbox = append(r.s.d.outbox, *event)
	return nil
}

func (r *outboxStore) FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	unlock := r.s.rlock()
	defer unlock()

	var out []models.OutboxEvent
	for _, row := range r.s.d.outbox {
		if row.PublishedAt == nil {
			out = append(out, row)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *outboxStore) MarkPublished(ctx context.Context, ids []int64, at time.Time) error {
	unlock := r.s.lock()
	defer unlock()

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range r.s.d.outbox {
		if _, ok := set[r.s.d.outbox[i].ID]; ok && r.s.d.outbox[i].PublishedAt == nil {
			ts := at
			r.s.d.outbox[i].PublishedAt = &ts
		}
	}
	return nil
}
