package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Enums
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type ItemStatus string

const (
	ItemStatusDraft  ItemStatus = "draft"
	ItemStatusActive ItemStatus = "active"
	ItemStatusEnded  ItemStatus = "ended"
	ItemStatusSold   ItemStatus = "sold"
)

// Terminal reports whether the item accepts no further bids or edits.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusEnded || s == ItemStatusSold
}

type ResultStatus string

const (
	ResultStatusPending   ResultStatus = "pending"
	ResultStatusCompleted ResultStatus = "completed"
	ResultStatusCancelled ResultStatus = "cancelled"
)

type NotificationKind string

const (
	NotificationOutbid        NotificationKind = "outbid"
	NotificationWon           NotificationKind = "won"
	NotificationEndedNoBids   NotificationKind = "ended_no_bids"
	NotificationListingClosed NotificationKind = "listing_closed_for_seller"
)
