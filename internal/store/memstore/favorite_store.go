package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type favoriteStore struct {
	s *Stores
}

func (r *favoriteStore) Add(ctx context.Context, favorite *models.Favorite) error {
	unlock := r.s.lock()
	defer unlock()

	for _, existing := range r.s.d.favorites[favorite.UserID] {
		if existing.ItemID == favorite.ItemID {
			return store.ErrConflict
		}
	}
	if favorite.ID == uuid.Nil {
		favorite.ID = uuid.New()
	}
	favorite.CreatedAt = time.Now().UTC()
	favorite.UpdatedAt = favorite.CreatedAt
	r.s.d.favorites[favorite.UserID] = append(
		[]models.Favorite{*favorite}, r.s.d.favorites[favorite.UserID]...)
	return nil
}

func (r *favoriteStore) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	unlock := r.s.lock()
	defer unlock()

	list := r.s.d.favorites[userID]
	for i, existing := range list {
		if existing.ItemID == itemID {
			r.s.d.favorites[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *favoriteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	unlock := r.s.rlock()
	defer unlock()

	return append([]models.Favorite(nil), r.s.d.favorites[userID]...), nil
}
