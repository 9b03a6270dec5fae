package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type resultStore struct {
	s *Stores
}

func (r *resultStore) Create(ctx context.Context, result *models.AuctionResult) error {
	unlock := r.s.lock()
	defer unlock()

	if _, exists := r.s.d.results[result.ItemID]; exists {
		return store.ErrConflict
	}
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	result.CreatedAt = time.Now().UTC()
	result.UpdatedAt = result.CreatedAt
	r.s.d.results[result.ItemID] = *result
	r.s.d.resultItems[result.ID] = result.ItemID
	return nil
}

func (r *resultStore) GetByItem(ctx context.Context, itemID uuid.UUID) (models.AuctionResult, error) {
	unlock := r.s.rlock()
	defer unlock()

	result, ok := r.s.d.results[itemID]
	if !ok {
		return models.AuctionResult{}, store.ErrNotFound
	}
	return result, nil
}

func (r *resultStore) Get(ctx context.Context, id uuid.UUID) (models.AuctionResult, error) {
	unlock := r.s.rlock()
	defer unlock()

	itemID, ok := r.s.d.resultItems[id]
	if !ok {
		return models.AuctionResult{}, store.ErrNotFound
	}
	return r.s.d.results[itemID], nil
}

func (r *resultStore) ListByWinner(ctx context.Context, winnerID uuid.UUID) ([]models.AuctionResult, error) {
	unlock := r.s.rlock()
	defer unlock()

	var out []models.AuctionResult
	for _, result := range r.s.d.results {
		if result.WinnerID != nil && *result.WinnerID == winnerID {
			out = append(out, result)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *resultStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ResultStatus) (models.AuctionResult, error) {
	unlock := r.s.lock()
	defer unlock()

	itemID, ok := r.s.d.resultItems[id]
	if !ok {
		return models.AuctionResult{}, store.ErrNotFound
	}
	result := r.s.d.results[itemID]
	result.Status = status
	result.UpdatedAt = time.Now().UTC()
	r.s.d.results[itemID] = result
	return result, nil
}
