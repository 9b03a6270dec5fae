package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/auctionhive/auction-backend/internal/store"
)

// Stores is the PostgreSQL-backed bundle. Every operation runs under
// the configured per-call deadline; on expiry the caller sees a
// transient error and the statement is rolled back by the database.
type Stores struct {
	db       *gorm.DB
	deadline time.Duration
}

func New(db *gorm.DB, deadline time.Duration) *Stores {
	if deadline <= 0 {
		deadline = 5 * time.Second
	}
	return &Stores{db: db, deadline: deadline}
}

func (s *Stores) Items() store.ItemStore          { return &itemStore{s} }
func (s *Stores) Bids() store.BidStore            { return &bidStore{s} }
func (s *Stores) Results() store.ResultStore      { return &resultStore{s} }
func (s *Stores) Outbox() store.OutboxStore       { return &outboxStore{s} }
func (s *Stores) Users() store.UserStore          { return &userStore{s} }
func (s *Stores) Categories() store.CategoryStore { return &categoryStore{s} }
func (s *Stores) Favorites() store.FavoriteStore  { return &favoriteStore{s} }

// Tx runs fn against a transactional bundle. Nested calls reuse the
// surrounding transaction via gorm's savepoint support.
func (s *Stores) Tx(ctx context.Context, fn func(store.Stores) error) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Stores{db: tx, deadline: s.deadline})
	})
}

func (s *Stores) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.deadline)
}

// translate maps driver errors onto the storage sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrConflict
	default:
		return err
	}
}
