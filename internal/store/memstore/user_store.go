package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type userStore struct {
	s *Stores
}

func (r *userStore) Create(ctx context.Context, user *models.User) error {
	unlock := r.s.lock()
	defer unlock()

	for _, existing := range r.s.d.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return store.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *userStore) Get(ctx context.Context, id uuid.UUID) (models.User, error) {
	unlock := r.s.rlock()
	defer unlock()

	user, ok := r.s.d.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return user, nil
}

type categoryStore struct {
	s *Stores
}

func (r *categoryStore) Get(ctx context.Context, id uuid.UUID) (models.Category, error) {
	unlock := r.s.rlock()
	defer unlock()

	category, ok := r.s.d.categories[id]
	if !ok {
		return models.Category{}, store.ErrNotFound
	}
	return category, nil
}

func (r *categoryStore) List(ctx context.Context) ([]models.Category, error) {
	unlock := r.s.rlock()
	defer unlock()

	out := make([]models.Category, 0, len(r.s.d.categories))
	for _, category := range r.s.d.categories {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// AddCategory seeds a category. Intended for tests and local runs; the
// taxonomy is otherwise maintained out of core.
func (s *Stores) AddCategory(category models.Category) {
	unlock := s.lock()
	defer unlock()

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	s.d.categories[category.ID] = category
}

// PutUser overwrites a user record directly. Intended for tests that
// flip account status; production status changes happen out of core.
func (s *Stores) PutUser(user models.User) {
	unlock := s.lock()
	defer unlock()

	s.d.users[user.ID] = user
}
