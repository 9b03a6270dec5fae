package models

import (
	"time"

	"github.com/google/uuid"
)

// Outbox topics.
const (
	TopicBidAccepted   = "bid.accepted"
	TopicAuctionClosed = "auction.closed"
)

// OutboxEvent is written in the same transaction as the bid or result
// row it describes and drained asynchronously by the publisher. This is
// what keeps broadcast order consistent with the persisted bid order.
type OutboxEvent struct {
	ID          int64      `json:"id" gorm:"primary_key;autoIncrement"`
	Topic       string     `json:"topic" gorm:"size:64;not null;index:idx_outbox_pending"`
	ItemID      uuid.UUID  `json:"item_id" gorm:"type:uuid;not null"`
	Payload     []byte     `json:"payload" gorm:"type:jsonb;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty" gorm:"index:idx_outbox_pending"`
}
