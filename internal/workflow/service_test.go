package workflow

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	st      *store.MemoryStore
	svc     *Service
	cafe    *models.Business
	other   *models.Business
	ngo     *models.Business
	admin   *auth.Identity
	staff   *auth.Identity
	charity *auth.Identity
	rival   *auth.Identity
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	st := store.NewMemoryStore()

	f := &fixture{st: st, now: now}
	f.svc = NewService(st, WithClock(func() time.Time { return now }))

	f.cafe = &models.Business{Name: "Cafe", Type: models.BusinessCafe}
	f.other = &models.Business{Name: "Other Cafe", Type: models.BusinessCafe}
	f.ngo = &models.Business{Name: "Food Bank", Type: models.BusinessNGO}
	for _, b := range []*models.Business{f.cafe, f.other, f.ngo} {
		require.NoError(t, st.CreateBusiness(ctx, b))
	}

	mk := func(email string, role models.UserRole, b *models.Business) *auth.Identity {
		bid := b.ID
		u := &models.User{Email: email, Name: email, Password: "pw", Role: role, BusinessID: &bid}
		require.NoError(t, st.CreateUser(ctx, u))
		stored, err := st.GetUser(ctx, u.ID)
		require.NoError(t, err)
		return auth.IdentityFromUser(stored)
	}
	f.admin = mk("admin@x.test", models.RoleAdmin, f.cafe)
	f.staff = mk("staff@x.test", models.RoleStaff, f.cafe)
	f.charity = mk("charity@x.test", models.RolePartner, f.ngo)
	f.rival = mk("rival@x.test", models.RolePartner, f.ngo)
	return f
}

func (f *fixture) logEntry(t *testing.T, qty float64) *models.WasteEntry {
	t.Helper()
	e, err := f.svc.LogWaste(context.Background(), f.staff, f.cafe.ID, LogWasteInput{
		ItemName:   "Bagels",
		WasteType:  models.WasteEdible,
		Quantity:   qty,
		ActionType: models.ActionDonate,
	})
	require.NoError(t, err)
	return e
}

func TestLogWaste(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := f.logEntry(t, 4.4)
	assert.Equal(t, models.WasteAvailable, e.Status)
	assert.Equal(t, f.staff.ID, e.LoggedByID)

	total, err := f.st.SumPoints(ctx, f.staff.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, total)

	logs, err := f.st.ListActivityLogs(ctx, store.ActivityFilter{BusinessID: f.cafe.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityWasteLogged, logs[0].ActionType)
}

func TestLogWaste_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.LogWaste(ctx, f.staff, f.cafe.ID, LogWasteInput{WasteType: "PLASTIC", ActionType: models.ActionDonate, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.LogWaste(ctx, f.staff, f.cafe.ID, LogWasteInput{WasteType: models.WasteEdible, ActionType: models.ActionDonate, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, q := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), MaxQuantity + 1} {
		_, err = f.svc.LogWaste(ctx, f.staff, f.cafe.ID, LogWasteInput{WasteType: models.WasteEdible, ActionType: models.ActionDonate, Quantity: q})
		assert.ErrorIs(t, err, ErrInvalidInput, "quantity %v", q)
	}

	e, err := f.svc.LogWaste(ctx, f.staff, f.cafe.ID, LogWasteInput{WasteType: "organic", ActionType: "dropped", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, models.WasteDropped, e.Status)
}

func TestReject_LeavesEntryAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.logEntry(t, 3)

	req, err := f.svc.Request(ctx, f.charity, e.ID, "pickup at 5")
	require.NoError(t, err)
	assert.Equal(t, models.PickupPending, req.Status)

	rejected, err := f.svc.Reject(ctx, f.staff, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupRejected, rejected.Status)
	require.NotNil(t, rejected.RejectedAt)
	assert.True(t, rejected.RejectedAt.Equal(f.now))

	stored, err := f.st.GetWasteEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WasteAvailable, stored.Status)
	assert.Equal(t, models.ActionDonate, stored.ActionType)

	notes, err := f.st.ListNotifications(ctx, f.charity.ID)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, "pickup_rejected", notes[0].Type)

	_, err = f.svc.Reject(ctx, f.staff, req.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReject_TerminalRequestConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rejected, err := f.svc.Request(ctx, f.charity, f.logEntry(t, 1).ID, "")
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, f.staff, rejected.ID)
	require.NoError(t, err)

	collected, err := f.svc.Request(ctx, f.charity, f.logEntry(t, 1).ID, "")
	require.NoError(t, err)
	_, err = f.svc.CollectAsRequester(ctx, f.charity, collected.ID)
	require.NoError(t, err)

	dropEntry := f.logEntry(t, 1)
	cancelled, err := f.svc.Request(ctx, f.charity, dropEntry.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Drop(ctx, f.staff, dropEntry.ID)
	require.NoError(t, err)

	for name, id := range map[string]string{"rejected": rejected.ID, "completed": collected.ID, "cancelled": cancelled.ID} {
		_, err := f.svc.Reject(ctx, f.staff, id)
		assert.ErrorIs(t, err, ErrInvalidTransition, name)
		assert.Equal(t, fiber.StatusConflict, HTTPError(err, "").(*fiber.Error).Code, name)
	}
}

func TestReject_CrossTenantForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.logEntry(t, 3)
	req, err := f.svc.Request(ctx, f.charity, e.ID, "")
	require.NoError(t, err)

	otherID := f.other.ID
	outsider := &auth.Identity{ID: "x", Role: models.RoleAdmin, BusinessID: &otherID}
	_, err = f.svc.Reject(ctx, outsider, req.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Reject(ctx, f.staff, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCollect_CompletesBoth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.logEntry(t, 10)

	mine, err := f.svc.Request(ctx, f.charity, e.ID, "")
	require.NoError(t, err)
	theirs, err := f.svc.Request(ctx, f.rival, e.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.staff, mine.ID)
	require.NoError(t, err)

	got, err := f.svc.CollectAsRequester(ctx, f.charity, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupCompleted, got.Request.Status)
	require.NotNil(t, got.Request.CompletedAt)
	assert.Equal(t, models.WasteCompleted, got.Entry.Status)
	require.Len(t, got.Cancelled, 1)
	assert.Equal(t, theirs.ID, got.Cancelled[0].ID)

	storedEntry, err := f.st.GetWasteEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WasteCompleted, storedEntry.Status)

	storedRival, err := f.st.GetPickupRequest(ctx, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupCancelled, storedRival.Status)
	assert.Contains(t, storedRival.Notes, noteCollected)

	total, err := f.st.SumPoints(ctx, f.charity.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, total)
}

func TestCollect_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.logEntry(t, 1)
	req, err := f.svc.Request(ctx, f.charity, e.ID, "")
	require.NoError(t, err)

	_, err = f.svc.CollectAsRequester(ctx, f.rival, req.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CollectAsAdmin(ctx, f.staff, req.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.CollectAsAdmin(ctx, f.admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupCompleted, got.Request.Status)

	_, err = f.svc.CollectAsAdmin(ctx, f.admin, req.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDrop_CancelsOpenRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.logEntry(t, 2)

	pending, err := f.svc.Request(ctx, f.charity, e.ID, "first")
	require.NoError(t, err)
	approved, err := f.svc.Request(ctx, f.rival, e.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, f.staff, approved.ID)
	require.NoError(t, err)

	res, err := f.svc.Drop(ctx, f.staff, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WasteDropped, res.Entry.Status)
	assert.Equal(t, models.ActionDropped, res.Entry.ActionType)
	assert.Len(t, res.Cancelled, 2)

	for _, id := range []string{pending.ID, approved.ID} {
		p, err := f.st.GetPickupRequest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.PickupCancelled, p.Status)
		assert.NotNil(t, p.CancelledAt)
		assert.Contains(t, p.Notes, noteDropped)
	}
	p, err := f.st.GetPickupRequest(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, "first\n"+noteDropped, p.Notes)

	_, err = f.svc.Request(ctx, f.charity, e.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRequest_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.logEntry(t, 2)

	_, err := f.svc.Request(ctx, f.charity, e.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Request(ctx, f.charity, e.ID, "")
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	notes, err := f.st.ListNotifications(ctx, f.staff.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

type failingActivity struct {
	store.Store
}

func (f failingActivity) CreateActivityLog(ctx context.Context, a *models.ActivityLog) error {
	return errors.New("activity table unavailable")
}

func (f failingActivity) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return f.Store.Transaction(ctx, func(tx store.Store) error {
		return fn(failingActivity{tx})
	})
}

func TestCollect_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.logEntry(t, 5)
	req, err := f.svc.Request(ctx, f.charity, e.ID, "")
	require.NoError(t, err)

	broken := NewService(failingActivity{f.st})
	_, err = broken.CollectAsRequester(ctx, f.charity, req.ID)
	require.Error(t, err)

	p, err := f.st.GetPickupRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupPending, p.Status)
	assert.Nil(t, p.CompletedAt)

	entry, err := f.st.GetWasteEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WasteAvailable, entry.Status)

	total, err := f.st.SumPoints(ctx, f.charity.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

type countingRecorder map[string]int

func (c countingRecorder) Transition(kind string) { c[kind]++ }

func TestRecorder(t *testing.T) {
	f := newFixture(t)
	rec := countingRecorder{}
	f.svc = NewService(f.st, WithRecorder(rec))

	e := f.logEntry(t, 1)
	_, err := f.svc.Drop(context.Background(), f.admin, e.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, rec["waste_logged"])
	assert.Equal(t, 1, rec["waste_dropped"])
}
