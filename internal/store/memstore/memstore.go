// Package memstore is a concurrency-safe in-memory implementation of
// the store interfaces. It backs unit tests and local development runs
// without a database, with the same transactional semantics: a Tx
// snapshot is restored on error, so no half-writes are observable.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type data struct {
	users       map[uuid.UUID]models.User
	categories  map[uuid.UUID]models.Category
	items       map[uuid.UUID]models.Item
	bids        map[uuid.UUID][]models.Bid // itemID -> bids in seq order
	results     map[uuid.UUID]models.AuctionResult
	resultItems map[uuid.UUID]uuid.UUID         // resultID -> itemID
	favorites   map[uuid.UUID][]models.Favorite // userID -> favorites, newest first
	outbox      []models.OutboxEvent
	nextOutbox  int64
}

func newData() *data {
	return &data{
		users:       make(map[uuid.UUID]models.User),
		categories:  make(map[uuid.UUID]models.Category),
		items:       make(map[uuid.UUID]models.Item),
		bids:        make(map[uuid.UUID][]models.Bid),
		results:     make(map[uuid.UUID]models.AuctionResult),
		resultItems: make(map[uuid.UUID]uuid.UUID),
		favorites:   make(map[uuid.UUID][]models.Favorite),
		nextOutbox:  1,
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.bids {
		c.bids[k] = append([]models.Bid(nil), v...)
	}
	for k, v := range d.results {
		c.results[k] = v
	}
	for k, v := range d.resultItems {
		c.resultItems[k] = v
	}
	for k, v := range d.favorites {
		c.favorites[k] = append([]models.Favorite(nil), v...)
	}
	c.outbox = append([]models.OutboxEvent(nil), d.outbox...)
	c.nextOutbox = d.nextOutbox
	return c
}

// Stores is the in-memory bundle. The zero value is not usable; call New.
type Stores struct {
	mu   *sync.RWMutex
	d    *data
	inTx bool
}

func New() *Stores {
	return &Stores{mu: &sync.RWMutex{}, d: newData()}
}

func (s *Stores) Items() store.ItemStore          { return &itemStore{s} }
func (s *Stores) Bids() store.BidStore            { return &bidStore{s} }
func (s *Stores) Results() store.ResultStore      { return &resultStore{s} }
func (s *Stores) Outbox() store.OutboxStore       { return &outboxStore{s} }
func (s *Stores) Users() store.UserStore          { return &userStore{s} }
func (s *Stores) Categories() store.CategoryStore { return &categoryStore{s} }
func (s *Stores) Favorites() store.FavoriteStore  { return &favoriteStore{s} }

// Tx serializes writers under the exclusive lock and rolls the data set
// back to its pre-transaction snapshot when fn fails.
func (s *Stores) Tx(ctx context.Context, fn func(store.Stores) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	tx := &Stores{mu: s.mu, d: s.d, inTx: true}
	if err := fn(tx); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func (s *Stores) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Stores) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
