package models

import "github.com/google/uuid"

// Favorite marks an item a user is watching. One row per user/item
// pair; favoriting again is a no-op.
type Favorite struct {
	BaseModel
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_item"`
	ItemID uuid.UUID `json:"item_id" gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_item;index"`
}
