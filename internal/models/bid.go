package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is an accepted offer. Rows are append-only: never updated or
// deleted once the placement transaction commits.
type Bid struct {
	BaseModel
	ItemID   uuid.UUID       `json:"item_id" gorm:"type:uuid;not null;uniqueIndex:idx_bids_item_seq;index:idx_bids_item_amount;uniqueIndex:idx_bids_item_request"`
	BidderID uuid.UUID       `json:"bidder_id" gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null;index:idx_bids_item_amount,sort:desc"`
	PlacedAt time.Time       `json:"placed_at" gorm:"not null"`
	// ItemBidSeq is the per-item monotonic sequence, starting at 1.
	ItemBidSeq int64 `json:"item_bid_seq" gorm:"not null;uniqueIndex:idx_bids_item_seq"`
	// RequestID is the caller-supplied idempotency key. Retries with the
	// same key return the original bid instead of inserting a duplicate.
	RequestID *string `json:"request_id,omitempty" gorm:"size:64;uniqueIndex:idx_bids_item_request"`
}
