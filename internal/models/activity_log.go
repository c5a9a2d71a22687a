package models

import (
	"time"

	"gorm.io/gorm"
)

type ActivityAction string

const (
	ActivityWasteLogged     ActivityAction = "WASTE_LOGGED"
	ActivityWasteDropped    ActivityAction = "WASTE_DROPPED"
	ActivityPickupRequested ActivityAction = "PICKUP_REQUESTED"
	ActivityPickupApproved  ActivityAction = "PICKUP_APPROVED"
	ActivityPickupRejected  ActivityAction = "PICKUP_REJECTED"
	ActivityPickupCollected ActivityAction = "PICKUP_COLLECTED"
)

type ActivityLog struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	BusinessID *string        `gorm:"size:36;index" json:"businessId"`
	UserID     string         `gorm:"size:36;index;not null" json:"userId"`
	UserName   string         `gorm:"size:100" json:"userName"` // denormalized
	ActionType ActivityAction `gorm:"size:30;not null" json:"actionType"`
	ItemName   string         `gorm:"size:150" json:"itemName"`
	// "charity", "farmer" or empty when no partner is involved
	RequesterType string    `gorm:"size:20" json:"requesterType"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}
