package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhive/auction-backend/internal/models"
)

// Storage-level sentinels. Services translate these into the error
// taxonomy at their boundary; nothing above the services sees them.
var (
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict signals a lost conditional update or a unique-index
	// violation, e.g. a concurrent writer advanced last_bid_seq first.
	ErrConflict = errors.New("store: conflict")
)

// ItemFilter narrows item listings.
type ItemFilter struct {
	Status     *models.ItemStatus
	SellerID   *uuid.UUID
	CategoryID *uuid.UUID
	Search     string
	Offset     int
	Limit      int
}

// BidStats is the aggregate projection served on the stats endpoint.
type BidStats struct {
	TotalBids      int64           `json:"total_bids"`
	TotalValue     decimal.Decimal `json:"total_value"`
	UniqueBidders  int64           `json:"unique_bidders"`
	ActiveAuctions int64           `json:"active_auctions"`
}

type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	Get(ctx context.Context, id uuid.UUID) (models.Item, error)
	// GetForUpdate loads the item row under an exclusive lock. Callers
	// must be inside a Tx; the lock pins the per-item seam between bid
	// placement and settlement.
	GetForUpdate(ctx context.Context, id uuid.UUID) (models.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]models.Item, int64, error)
	Update(ctx context.Context, item *models.Item) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error
	// FindExpired returns items with status=active and end_time <= now.
	FindExpired(ctx context.Context, now time.Time) ([]models.Item, error)
	// AdvanceBidSeq sets last_bid_seq = expected+1 iff it still equals
	// expected, returning ErrConflict when a concurrent bid won.
	AdvanceBidSeq(ctx context.Context, id uuid.UUID, expected int64) error
	CountByStatus(ctx context.Context, status models.ItemStatus) (int64, error)
}

type BidStore interface {
	// Create appends an accepted bid. The (item_id, item_bid_seq) pair
	// is unique; violations surface as ErrConflict.
	Create(ctx context.Context, bid *models.Bid) error
	// Highest returns the bid with maximum amount for the item,
	// tie-broken by smallest item_bid_seq. ErrNotFound when no bids.
	Highest(ctx context.Context, itemID uuid.UUID) (models.Bid, error)
	// ListByItem returns bids ordered by item_bid_seq ascending,
	// optionally starting after a sequence watermark.
	ListByItem(ctx context.Context, itemID uuid.UUID, afterSeq int64) ([]models.Bid, error)
	ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]models.Bid, error)
	CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error)
	// FindByRequestID resolves an idempotent retry to the bid it
	// originally produced.
	FindByRequestID(ctx context.Context, itemID uuid.UUID, requestID string) (models.Bid, error)
	Stats(ctx context.Context) (BidStats, error)
}

type ResultStore interface {
	// Create inserts the one-row-per-item settlement record; a second
	// insert for the same item surfaces as ErrConflict.
	Create(ctx context.Context, result *models.AuctionResult) error
	GetByItem(ctx context.Context, itemID uuid.UUID) (models.AuctionResult, error)
	Get(ctx context.Context, id uuid.UUID) (models.AuctionResult, error)
	ListByWinner(ctx context.Context, winnerID uuid.UUID) ([]models.AuctionResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ResultStatus) (models.AuctionResult, error)
}

type OutboxStore interface {
	Append(ctx context.Context, event *models.OutboxEvent) error
	// FetchPending returns unpublished events oldest-first.
	FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64, at time.Time) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uuid.UUID) (models.User, error)
}

type FavoriteStore interface {
	// Add inserts a watch entry; a second insert for the same user and
	// item surfaces as ErrConflict.
	Add(ctx context.Context, favorite *models.Favorite) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	// ListByUser returns a user's watch list, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error)
}

type CategoryStore interface {
	Get(ctx context.Context, id uuid.UUID) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

// Stores bundles the per-entity stores with a transaction boundary.
// Tx runs fn against a transactional view; all writes inside fn commit
// or roll back together.
type Stores interface {
	Items() ItemStore
	Bids() BidStore
	Results() ResultStore
	Outbox() OutboxStore
	Users() UserStore
	Categories() CategoryStore
	Favorites() FavoriteStore
	Tx(ctx context.Context, fn func(Stores) error) error
}
