package models

import "github.com/google/uuid"

// Category is a read-only taxonomy node for the core. The tree is
// maintained by an external admin flow; the core only resolves and
// lists nodes, and guards against cycles when a parent is reassigned.
type Category struct {
	BaseModel
	Name     string     `json:"name" gorm:"uniqueIndex;size:100;not null"`
	ParentID *uuid.UUID `json:"parent_id,omitempty" gorm:"type:uuid;index"`
}
