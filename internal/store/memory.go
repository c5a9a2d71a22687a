package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"foodloop-backend/internal/models"
)

type memData struct {
	users         map[string]models.User
	businesses    map[string]models.Business
	entries       map[string]models.WasteEntry
	pickups       map[string]models.PickupRequest
	points        map[string]models.PointsHistory
	notifications map[string]models.Notification
	activity      map[string]models.ActivityLog
	last          time.Time
}

func newMemData() *memData {
	return &memData{
		users:         map[string]models.User{},
		businesses:    map[string]models.Business{},
		entries:       map[string]models.WasteEntry{},
		pickups:       map[string]models.PickupRequest{},
		points:        map[string]models.PointsHistory{},
		notifications: map[string]models.Notification{},
		activity:      map[string]models.ActivityLog{},
	}
}

func (d *memData) clone() *memData {
	return &memData{
		users:         maps.Clone(d.users),
		businesses:    maps.Clone(d.businesses),
		entries:       maps.Clone(d.entries),
		pickups:       maps.Clone(d.pickups),
		points:        maps.Clone(d.points),
		notifications: maps.Clone(d.notifications),
		activity:      maps.Clone(d.activity),
		last:          d.last,
	}
}

// MemoryStore keeps all rows in process. Stored values never carry their
// preloaded associations; those are attached on read.
type MemoryStore struct {
	mu   *sync.RWMutex
	data *memData
	inTx bool
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.RWMutex{}, data: newMemData(), now: time.Now}
}

// WithClock swaps the clock used for CreatedAt/UpdatedAt stamps.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryStore) rlock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

// next returns a strictly increasing time so newest-first ordering is stable
// even when two rows are written within the clock's resolution.
func (m *MemoryStore) next() time.Time {
	t := m.now()
	if !t.After(m.data.last) {
		t = m.data.last.Add(time.Microsecond)
	}
	m.data.last = t
	return t
}

func (m *MemoryStore) stamp(t *time.Time) {
	if t.IsZero() {
		*t = m.next()
	}
}

// ---- users ----

func (m *MemoryStore) withBusiness(u models.User) *models.User {
	if u.BusinessID != nil {
		if b, ok := m.data.businesses[*u.BusinessID]; ok {
			u.Business = &b
		}
	}
	return &u
}

func (m *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	defer m.rlock()()
	u, ok := m.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.withBusiness(u), nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer m.rlock()()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.data.users {
		if strings.ToLower(u.Email) == email {
			return m.withBusiness(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	defer m.lock()()
	if u.ID == "" {
		u.ID = models.NewID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range m.data.users {
		if other.Email == u.Email {
			return ErrDuplicate
		}
	}
	m.stamp(&u.CreatedAt)
	m.stamp(&u.UpdatedAt)
	row := *u
	row.Business = nil
	m.data.users[u.ID] = row
	return nil
}

func (m *MemoryStore) SetUserBusiness(ctx context.Context, userID, businessID string) error {
	defer m.lock()()
	u, ok := m.data.users[userID]
	if !ok {
		return ErrNotFound
	}
	id := businessID
	u.BusinessID = &id
	u.UpdatedAt = m.next()
	m.data.users[userID] = u
	return nil
}

func (m *MemoryStore) SetUserPassword(ctx context.Context, userID, password string) error {
	defer m.lock()()
	u, ok := m.data.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Password = password
	u.UpdatedAt = m.next()
	m.data.users[userID] = u
	return nil
}

// ---- businesses ----

func (m *MemoryStore) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	defer m.rlock()()
	b, ok := m.data.businesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MemoryStore) FirstBusinessByType(ctx context.Context, t models.BusinessType) (*models.Business, error) {
	defer m.rlock()()
	var first *models.Business
	for _, b := range m.data.businesses {
		if b.Type != t {
			continue
		}
		if first == nil || b.CreatedAt.Before(first.CreatedAt) {
			b := b
			first = &b
		}
	}
	if first == nil {
		return nil, ErrNotFound
	}
	return first, nil
}

func (m *MemoryStore) CreateBusiness(ctx context.Context, b *models.Business) error {
	defer m.lock()()
	if b.ID == "" {
		b.ID = models.NewID()
	}
	m.stamp(&b.CreatedAt)
	m.stamp(&b.UpdatedAt)
	m.data.businesses[b.ID] = *b
	return nil
}

// ---- waste entries ----

func (m *MemoryStore) entryView(e models.WasteEntry) models.WasteEntry {
	if b, ok := m.data.businesses[e.BusinessID]; ok {
		e.Business = &b
	}
	return e
}

func (m *MemoryStore) CreateWasteEntry(ctx context.Context, e *models.WasteEntry) error {
	defer m.lock()()
	if e.ID == "" {
		e.ID = models.NewID()
	}
	m.stamp(&e.CreatedAt)
	m.stamp(&e.UpdatedAt)
	row := *e
	row.Business = nil
	m.data.entries[e.ID] = row
	return nil
}

func (m *MemoryStore) GetWasteEntry(ctx context.Context, id string) (*models.WasteEntry, error) {
	defer m.rlock()()
	e, ok := m.data.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := m.entryView(e)
	return &v, nil
}

func (m *MemoryStore) UpdateWasteEntry(ctx context.Context, e *models.WasteEntry) error {
	defer m.lock()()
	if _, ok := m.data.entries[e.ID]; !ok {
		return ErrNotFound
	}
	e.UpdatedAt = m.next()
	row := *e
	row.Business = nil
	m.data.entries[e.ID] = row
	return nil
}

func (m *MemoryStore) ListWasteEntries(ctx context.Context, f WasteFilter) ([]models.WasteEntry, error) {
	defer m.rlock()()
	out := make([]models.WasteEntry, 0)
	for _, e := range m.data.entries {
		if f.BusinessID != "" && e.BusinessID != f.BusinessID {
			continue
		}
		if f.LoggedByID != "" && e.LoggedByID != f.LoggedByID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, e.Status) {
			continue
		}
		if len(f.ActionTypes) > 0 && !slices.Contains(f.ActionTypes, e.ActionType) {
			continue
		}
		out = append(out, m.entryView(e))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ---- pickup requests ----

func (m *MemoryStore) pickupView(p models.PickupRequest) models.PickupRequest {
	if e, ok := m.data.entries[p.WasteEntryID]; ok {
		p.WasteEntry = &e
	}
	if u, ok := m.data.users[p.RequesterID]; ok {
		p.Requester = m.withBusiness(u)
	}
	return p
}

func (m *MemoryStore) CreatePickupRequest(ctx context.Context, p *models.PickupRequest) error {
	defer m.lock()()
	if p.ID == "" {
		p.ID = models.NewID()
	}
	m.stamp(&p.CreatedAt)
	m.stamp(&p.UpdatedAt)
	row := *p
	row.WasteEntry = nil
	row.Requester = nil
	m.data.pickups[p.ID] = row
	return nil
}

func (m *MemoryStore) GetPickupRequest(ctx context.Context, id string) (*models.PickupRequest, error) {
	defer m.rlock()()
	p, ok := m.data.pickups[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := m.pickupView(p)
	return &v, nil
}

func (m *MemoryStore) UpdatePickupRequest(ctx context.Context, p *models.PickupRequest) error {
	defer m.lock()()
	if _, ok := m.data.pickups[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = m.next()
	row := *p
	row.WasteEntry = nil
	row.Requester = nil
	m.data.pickups[p.ID] = row
	return nil
}

func (m *MemoryStore) ListPickupRequests(ctx context.Context, f PickupFilter) ([]models.PickupRequest, error) {
	defer m.rlock()()
	out := make([]models.PickupRequest, 0)
	for _, p := range m.data.pickups {
		if f.BusinessID != "" && p.BusinessID != f.BusinessID {
			continue
		}
		if f.RequesterID != "" && p.RequesterID != f.RequesterID {
			continue
		}
		if f.WasteEntryID != "" && p.WasteEntryID != f.WasteEntryID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, p.Status) {
			continue
		}
		out = append(out, m.pickupView(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- points ----

func (m *MemoryStore) CreatePoints(ctx context.Context, p *models.PointsHistory) error {
	defer m.lock()()
	if p.ID == "" {
		p.ID = models.NewID()
	}
	m.stamp(&p.CreatedAt)
	m.data.points[p.ID] = *p
	return nil
}

func (m *MemoryStore) userPoints(userID string) []models.PointsHistory {
	out := make([]models.PointsHistory, 0)
	for _, p := range m.data.points {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryStore) ListPoints(ctx context.Context, userID string, offset, limit int) ([]models.PointsHistory, int64, error) {
	defer m.rlock()()
	all := m.userPoints(userID)
	total := int64(len(all))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []models.PointsHistory{}, total, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (m *MemoryStore) SumPoints(ctx context.Context, userID string) (int, error) {
	defer m.rlock()()
	sum := 0
	for _, p := range m.data.points {
		if p.UserID == userID {
			sum += p.Points
		}
	}
	return sum, nil
}

// ---- notifications ----

func (m *MemoryStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	defer m.lock()()
	if n.ID == "" {
		n.ID = models.NewID()
	}
	m.stamp(&n.CreatedAt)
	m.data.notifications[n.ID] = *n
	return nil
}

func (m *MemoryStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	defer m.rlock()()
	out := make([]models.Notification, 0)
	for _, n := range m.data.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) MarkNotificationRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	defer m.lock()()
	n, ok := m.data.notifications[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	n.Read = true
	m.data.notifications[id] = n
	return &n, nil
}

func (m *MemoryStore) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	defer m.lock()()
	var count int64
	for id, n := range m.data.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			m.data.notifications[id] = n
			count++
		}
	}
	return count, nil
}

// ---- activity ----

func (m *MemoryStore) CreateActivityLog(ctx context.Context, a *models.ActivityLog) error {
	defer m.lock()()
	if a.ID == "" {
		a.ID = models.NewID()
	}
	m.stamp(&a.CreatedAt)
	m.data.activity[a.ID] = *a
	return nil
}

func (m *MemoryStore) ListActivityLogs(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, error) {
	defer m.rlock()()
	out := make([]models.ActivityLog, 0)
	for _, a := range m.data.activity {
		if f.BusinessID != "" && (a.BusinessID == nil || *a.BusinessID != f.BusinessID) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Transaction holds the write lock for the whole of fn and restores the
// snapshot taken beforehand when fn fails or panics. A panic is re-raised
// after the restore.
func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	committed := false
	defer func() {
		if !committed {
			*m.data = *snapshot
		}
	}()

	tx := &MemoryStore{mu: m.mu, data: m.data, inTx: true, now: m.now}
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}
