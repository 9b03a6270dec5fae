package gormstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/models"
)

type userStore struct {
	s *Stores
}

func (r *userStore) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()
	return translate(r.s.db.WithContext(ctx).Create(user).Error)
}

func (r *userStore) Get(ctx context.Context, id uuid.UUID) (models.User, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var user models.User
	err := r.s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	return user, translate(err)
}

type categoryStore struct {
	s *Stores
}

func (r *categoryStore) Get(ctx context.Context, id uuid.UUID) (models.Category, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var category models.Category
	err := r.s.db.WithContext(ctx).First(&category, "id = ?", id).Error
	return category, translate(err)
}

func (r *categoryStore) List(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var categories []models.Category
	err := r.s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, translate(err)
}
