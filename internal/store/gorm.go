package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodloop-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ---- users ----

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Preload("Business").First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.conn(ctx).Preload("Business").First(&u, "LOWER(email) = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.conn(ctx).Omit(clause.Associations).Create(u).Error
}

func (s *GormStore) SetUserBusiness(ctx context.Context, userID, businessID string) error {
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Update("business_id", businessID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SetUserPassword(ctx context.Context, userID, password string) error {
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", password)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- businesses ----

func (s *GormStore) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	var b models.Business
	if err := s.conn(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *GormStore) FirstBusinessByType(ctx context.Context, t models.BusinessType) (*models.Business, error) {
	var b models.Business
	if err := s.conn(ctx).Where("type = ?", t).Order("created_at ASC").First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *GormStore) CreateBusiness(ctx context.Context, b *models.Business) error {
	return s.conn(ctx).Create(b).Error
}

// ---- waste entries ----

func (s *GormStore) CreateWasteEntry(ctx context.Context, e *models.WasteEntry) error {
	return s.conn(ctx).Omit(clause.Associations).Create(e).Error
}

func (s *GormStore) GetWasteEntry(ctx context.Context, id string) (*models.WasteEntry, error) {
	var e models.WasteEntry
	if err := s.conn(ctx).Preload("Business").First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *GormStore) UpdateWasteEntry(ctx context.Context, e *models.WasteEntry) error {
	return s.conn(ctx).Omit(clause.Associations).Save(e).Error
}

func (s *GormStore) ListWasteEntries(ctx context.Context, f WasteFilter) ([]models.WasteEntry, error) {
	q := s.conn(ctx).Model(&models.WasteEntry{}).Preload("Business")
	if f.BusinessID != "" {
		q = q.Where("business_id = ?", f.BusinessID)
	}
	if f.LoggedByID != "" {
		q = q.Where("logged_by_id = ?", f.LoggedByID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if len(f.ActionTypes) > 0 {
		q = q.Where("action_type IN ?", f.ActionTypes)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var entries []models.WasteEntry
	if err := q.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list waste entries: %w", err)
	}
	return entries, nil
}

// ---- pickup requests ----

func (s *GormStore) CreatePickupRequest(ctx context.Context, p *models.PickupRequest) error {
	return s.conn(ctx).Omit(clause.Associations).Create(p).Error
}

func (s *GormStore) GetPickupRequest(ctx context.Context, id string) (*models.PickupRequest, error) {
	var p models.PickupRequest
	err := s.conn(ctx).
		Preload("WasteEntry").
		Preload("Requester.Business").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *GormStore) UpdatePickupRequest(ctx context.Context, p *models.PickupRequest) error {
	return s.conn(ctx).Omit(clause.Associations).Save(p).Error
}

func (s *GormStore) ListPickupRequests(ctx context.Context, f PickupFilter) ([]models.PickupRequest, error) {
	q := s.conn(ctx).Model(&models.PickupRequest{}).
		Preload("WasteEntry").
		Preload("Requester.Business")
	if f.BusinessID != "" {
		q = q.Where("business_id = ?", f.BusinessID)
	}
	if f.RequesterID != "" {
		q = q.Where("requester_id = ?", f.RequesterID)
	}
	if f.WasteEntryID != "" {
		q = q.Where("waste_entry_id = ?", f.WasteEntryID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}

	var requests []models.PickupRequest
	if err := q.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list pickup requests: %w", err)
	}
	return requests, nil
}

// ---- points ----

func (s *GormStore) CreatePoints(ctx context.Context, p *models.PointsHistory) error {
	return s.conn(ctx).Create(p).Error
}

func (s *GormStore) ListPoints(ctx context.Context, userID string, offset, limit int) ([]models.PointsHistory, int64, error) {
	q := s.conn(ctx).Model(&models.PointsHistory{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count points: %w", err)
	}

	var rows []models.PointsHistory
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list points: %w", err)
	}
	return rows, total, nil
}

func (s *GormStore) SumPoints(ctx context.Context, userID string) (int, error) {
	var sum int
	err := s.conn(ctx).Model(&models.PointsHistory{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return sum, nil
}

// ---- notifications ----

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.conn(ctx).Create(n).Error
}

func (s *GormStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	var rows []models.Notification
	if err := s.conn(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return rows, nil
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	var n models.Notification
	if err := s.conn(ctx).First(&n, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, notFound(err)
	}
	n.Read = true
	if err := s.conn(ctx).Model(&n).Update("read", true).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *GormStore) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res := s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

// ---- activity ----

func (s *GormStore) CreateActivityLog(ctx context.Context, a *models.ActivityLog) error {
	return s.conn(ctx).Create(a).Error
}

func (s *GormStore) ListActivityLogs(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, error) {
	q := s.conn(ctx).Model(&models.ActivityLog{})
	if f.BusinessID != "" {
		q = q.Where("business_id = ?", f.BusinessID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []models.ActivityLog
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return rows, nil
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
