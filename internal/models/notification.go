package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Notification struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"size:36;index;not null" json:"userId"`
	Type      string         `gorm:"size:50;not null" json:"type"` // "pickup_rejected", "pickup_completed", ...
	Title     string         `gorm:"size:150;not null" json:"title"`
	Message   string         `gorm:"size:500" json:"message"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	Read      bool           `gorm:"default:false" json:"read"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = NewID()
	}
	return nil
}
