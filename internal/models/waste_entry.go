package models

import (
	"time"

	"gorm.io/gorm"
)

type WasteType string

const (
	WasteEdible        WasteType = "EDIBLE"
	WasteOrganic       WasteType = "ORGANIC"
	WasteCoffeeGrounds WasteType = "COFFEE_GROUNDS"
	WasteRecyclable    WasteType = "RECYCLABLE"
	WasteOther         WasteType = "OTHER"
)

func (t WasteType) Valid() bool {
	switch t {
	case WasteEdible, WasteOrganic, WasteCoffeeGrounds, WasteRecyclable, WasteOther:
		return true
	}
	return false
}

type ActionType string

const (
	ActionDonate  ActionType = "DONATE"
	ActionCompost ActionType = "COMPOST"
	ActionFarm    ActionType = "FARM"
	ActionReuse   ActionType = "REUSE"
	ActionDropped ActionType = "DROPPED"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionDonate, ActionCompost, ActionFarm, ActionReuse, ActionDropped:
		return true
	}
	return false
}

type WasteStatus string

const (
	WasteAvailable WasteStatus = "AVAILABLE"
	WasteCompleted WasteStatus = "COMPLETED"
	WasteDropped   WasteStatus = "DROPPED"
)

// WasteEntry is one logged batch of surplus food or waste (kg).
type WasteEntry struct {
	ID         string      `gorm:"primaryKey;size:36" json:"id"`
	BusinessID string      `gorm:"size:36;index;not null" json:"businessId"`
	Business   *Business   `json:"business,omitempty"`
	LoggedByID string      `gorm:"size:36;index;not null" json:"loggedById"`
	ItemName   string      `gorm:"size:150" json:"itemName"`
	WasteType  WasteType   `gorm:"size:30;not null" json:"wasteType"`
	SubType    string      `gorm:"size:100" json:"subType"`
	Quantity   float64     `gorm:"not null" json:"quantity"`
	ActionType ActionType  `gorm:"size:20;not null" json:"actionType"`
	Status     WasteStatus `gorm:"size:20;index;not null" json:"status"`
	ExpiryDate *time.Time  `gorm:"index" json:"expiryDate"`
	Notes      string      `gorm:"size:500" json:"notes"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (w *WasteEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = NewID()
	}
	return nil
}
