package models

import (
	"time"

	"gorm.io/gorm"
)

type PickupStatus string

const (
	PickupPending   PickupStatus = "PENDING"
	PickupApproved  PickupStatus = "APPROVED"
	PickupRejected  PickupStatus = "REJECTED"
	PickupCancelled PickupStatus = "CANCELLED"
	PickupCompleted PickupStatus = "COMPLETED"
)

// Open reports whether the request can still move forward.
func (s PickupStatus) Open() bool {
	return s == PickupPending || s == PickupApproved
}

// PickupRequest is a partner's claim against a waste entry.
type PickupRequest struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	WasteEntryID string       `gorm:"size:36;index;not null" json:"wasteEntryId"`
	WasteEntry   *WasteEntry  `json:"wasteEntry,omitempty"`
	BusinessID   string       `gorm:"size:36;index;not null" json:"businessId"` // owner of the entry
	RequesterID  string       `gorm:"size:36;index;not null" json:"requesterId"`
	Requester    *User        `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Status       PickupStatus `gorm:"size:20;index;not null" json:"status"`
	Notes        string       `gorm:"size:1000" json:"notes"`
	ApprovedAt   *time.Time   `json:"approvedAt"`
	RejectedAt   *time.Time   `json:"rejectedAt"`
	CompletedAt  *time.Time   `json:"completedAt"`
	CancelledAt  *time.Time   `json:"cancelledAt"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (p *PickupRequest) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}
