package models

import (
	"time"

	"gorm.io/gorm"
)

type BusinessType string

const (
	BusinessCafe       BusinessType = "CAFE"
	BusinessRestaurant BusinessType = "RESTAURANT"
	BusinessNGO        BusinessType = "NGO"
	BusinessFarm       BusinessType = "FARM"
	BusinessOther      BusinessType = "OTHER"
)

// Business is the tenant: a cafe, restaurant, charity or farm.
type Business struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	Name      string       `gorm:"size:150;not null" json:"name"`
	Type      BusinessType `gorm:"size:20;index;not null" json:"type"`
	Address   string       `gorm:"size:255" json:"address"`
	Email     string       `gorm:"size:100" json:"email"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}
