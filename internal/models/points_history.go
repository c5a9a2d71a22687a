package models

import (
	"time"

	"gorm.io/gorm"
)

type PointsHistory struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;index;not null" json:"userId"`
	Points       int       `gorm:"not null" json:"points"`
	Reason       string    `gorm:"size:255" json:"reason"`
	WasteEntryID *string   `gorm:"size:36;index" json:"wasteEntryId"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

func (p *PointsHistory) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}
