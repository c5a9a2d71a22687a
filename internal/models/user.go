package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStaff   UserRole = "STAFF"
	RolePartner UserRole = "PARTNER"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RolePartner:
		return true
	}
	return false
}

type User struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Email      string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name       string    `gorm:"size:100" json:"name"`
	Password   string    `gorm:"size:255;not null" json:"-"` // legacy plaintext or bcrypt hash
	Role       UserRole  `gorm:"size:20;not null" json:"role"`
	BusinessID *string   `gorm:"size:36;index" json:"businessId"`
	Business   *Business `json:"business,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// NewID returns a fresh primary key for any entity.
func NewID() string {
	return uuid.NewString()
}
