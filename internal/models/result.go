package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionResult is the settlement record, created exactly once per item.
// WinnerID is nil iff the status is cancelled iff the item closed with
// zero accepted bids.
type AuctionResult struct {
	BaseModel
	ItemID     uuid.UUID       `json:"item_id" gorm:"type:uuid;not null;uniqueIndex"`
	WinnerID   *uuid.UUID      `json:"winner_id,omitempty" gorm:"type:uuid;index"`
	FinalPrice decimal.Decimal `json:"final_price" gorm:"type:numeric(14,2);not null"`
	Status     ResultStatus    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
}
