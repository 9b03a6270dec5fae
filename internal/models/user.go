package models

import "time"

type User struct {
	BaseModel
	Username    string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email       string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Status      UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	Role        UserRole   `json:"role" gorm:"type:varchar(20);default:'user'"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// CanBid reports whether the user may place bids or publish items.
// Only active accounts participate; suspension blocks new activity but
// does not void bids already accepted.
func (u *User) CanBid() bool {
	return u.Status == UserStatusActive
}
