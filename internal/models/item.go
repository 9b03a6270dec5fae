package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Item struct {
	BaseModel
	SellerID      uuid.UUID       `json:"seller_id" gorm:"type:uuid;not null;index"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty" gorm:"type:uuid;index"`
	Title         string          `json:"title" gorm:"size:255;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	ImageURL      string          `json:"image_url" gorm:"size:512"`
	StartingPrice decimal.Decimal `json:"starting_price" gorm:"type:numeric(14,2);not null"`
	Status        ItemStatus      `json:"status" gorm:"type:varchar(20);default:'draft';index:idx_items_status_end_time"`
	StartTime     *time.Time      `json:"start_time"`
	EndTime       *time.Time      `json:"end_time" gorm:"index:idx_items_status_end_time"`
	// LastBidSeq equals the count of accepted bids on the item. It is
	// advanced only inside the bid-placement transaction.
	LastBidSeq int64 `json:"last_bid_seq" gorm:"not null;default:0"`
}

// Expired reports whether the bidding window has closed. Items are
// biddable from the moment they go active; a future start_time does
// not hold bids back, only end_time closes the window.
func (i *Item) Expired(now time.Time) bool {
	return i.EndTime != nil && !now.Before(*i.EndTime)
}
