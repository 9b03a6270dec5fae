package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type itemStore struct {
	s *Stores
}

func (r *itemStore) Create(ctx context.Context, item *models.Item) error {
	unlock := r.s.lock()
	defer unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.s.d.items[item.ID] = *item
	return nil
}

func (r *itemStore) Get(ctx context.Context, id uuid.UUID) (models.Item, error) {
	unlock := r.s.rlock()
	defer unlock()

	item, ok := r.s.d.items[id]
	if !ok {
		return models.Item{}, store.ErrNotFound
	}
	return item, nil
}

func (r *itemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (models.Item, error) {
	// The Tx exclusive lock already serializes writers.
	return r.Get(ctx, id)
}

func (r *itemStore) List(ctx context.Context, filter store.ItemFilter) ([]models.Item, int64, error) {
	unlock := r.s.rlock()
	defer unlock()

	var items []models.Item
	for _, item := range r.s.d.items {
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		if filter.SellerID != nil && item.SellerID != *filter.SellerID {
			continue
		}
		if filter.CategoryID != nil && (item.CategoryID == nil || *item.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.Search != "" {
			term := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(item.Title), term) &&
				!strings.Contains(strings.ToLower(item.Description), term) {
				continue
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := int64(len(items))
	if filter.Limit > 0 {
		if filter.Offset >= len(items) {
			return nil, total, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(items) {
			end = len(items)
		}
		items = items[filter.Offset:end]
	}
	return items, total, nil
}

func (r *itemStore) Update(ctx context.Context, item *models.Item) error {
	unlock := r.s.lock()
	defer unlock()

	if _, ok := r.s.d.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	item.UpdatedAt = time.Now().UTC()
	r.s.d.items[item.ID] = *item
	return nil
}

func (r *itemStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error {
	unlock := r.s.lock()
	defer unlock()

	item, ok := r.s.d.items[id]
	if !ok {
		return store.ErrNotFound
	}
	item.Status = status
	item.UpdatedAt = time.Now().UTC()
	r.s.d.items[id] = item
	return nil
}

func (r *itemStore) FindExpired(ctx context.Context, now time.Time) ([]models.Item, error) {
	unlock := r.s.rlock()
	defer unlock()

	var expired []models.Item
	for _, item := range r.s.d.items {
		if item.Status == models.ItemStatusActive && item.EndTime != nil && !item.EndTime.After(now) {
			expired = append(expired, item)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].EndTime.Before(*expired[j].EndTime)
	})
	return expired, nil
}

func (r *itemStore) AdvanceBidSeq(ctx context.Context, id uuid.UUID, expected int64) error {
	unlock := r.s.lock()
	defer unlock()

	item, ok := r.s.d.items[id]
	if !ok {
		return store.ErrNotFound
	}
	if item.LastBidSeq != expected {
		return store.ErrConflict
	}
	item.LastBidSeq = expected + 1
	item.UpdatedAt = time.Now().UTC()
	r.s.d.items[id] = item
	return nil
}

func (r *itemStore) CountByStatus(ctx context.Context, status models.ItemStatus) (int64, error) {
	unlock := r.s.rlock()
	defer unlock()

	var count int64
	for _, item := range r.s.d.items {
		if item.Status == status {
			count++
		}
	}
	return count, nil
}
