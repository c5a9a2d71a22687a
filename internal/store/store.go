// Package store is the data-access layer. Handlers depend on the Store
// interface; GormStore backs it with Postgres and MemoryStore keeps
// everything in process for demo mode and tests.
package store

import (
	"context"
	"errors"

	"foodloop-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type WasteFilter struct {
	BusinessID  string
	LoggedByID  string
	Statuses    []models.WasteStatus
	ActionTypes []models.ActionType
	Limit       int
}

type PickupFilter struct {
	BusinessID   string
	RequesterID  string
	WasteEntryID string
	Statuses     []models.PickupStatus
}

type ActivityFilter struct {
	BusinessID string
	Limit      int
}

type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SetUserBusiness(ctx context.Context, userID, businessID string) error
	SetUserPassword(ctx context.Context, userID, password string) error

	GetBusiness(ctx context.Context, id string) (*models.Business, error)
	FirstBusinessByType(ctx context.Context, t models.BusinessType) (*models.Business, error)
	CreateBusiness(ctx context.Context, b *models.Business) error

	CreateWasteEntry(ctx context.Context, e *models.WasteEntry) error
	GetWasteEntry(ctx context.Context, id string) (*models.WasteEntry, error)
	UpdateWasteEntry(ctx context.Context, e *models.WasteEntry) error
	ListWasteEntries(ctx context.Context, f WasteFilter) ([]models.WasteEntry, error)

	CreatePickupRequest(ctx context.Context, p *models.PickupRequest) error
	GetPickupRequest(ctx context.Context, id string) (*models.PickupRequest, error)
	UpdatePickupRequest(ctx context.Context, p *models.PickupRequest) error
	ListPickupRequests(ctx context.Context, f PickupFilter) ([]models.PickupRequest, error)

	CreatePoints(ctx context.Context, p *models.PointsHistory) error
	ListPoints(ctx context.Context, userID string, offset, limit int) ([]models.PointsHistory, int64, error)
	SumPoints(ctx context.Context, userID string) (int, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (*models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)

	CreateActivityLog(ctx context.Context, a *models.ActivityLog) error
	ListActivityLogs(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, error)

	// Transaction runs fn against a Store bound to one unit of work. Every
	// write made through tx is committed together or not at all.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
