package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodloop-backend/internal/demo"
	"foodloop-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestMemoryStore_UserEmailIsUnique(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	require.NoError(t, st.CreateUser(ctx, &models.User{Email: "Ana@Cafe.test", Role: models.RoleStaff}))
	err := st.CreateUser(ctx, &models.User{Email: "ana@cafe.test ", Role: models.RoleStaff})
	assert.ErrorIs(t, err, ErrDuplicate)

	u, err := st.GetUserByEmail(ctx, "ANA@cafe.test")
	require.NoError(t, err)
	assert.Equal(t, "ana@cafe.test", u.Email)

	_, err = st.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore().WithClock(fixedClock())

	var ids []string
	for i := 0; i < 3; i++ {
		e := &models.WasteEntry{BusinessID: "b", LoggedByID: "u", WasteType: models.WasteEdible, ActionType: models.ActionDonate, Status: models.WasteAvailable, Quantity: 1}
		require.NoError(t, st.CreateWasteEntry(ctx, e))
		ids = append(ids, e.ID)
	}

	got, err := st.ListWasteEntries(ctx, WasteFilter{BusinessID: "b"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{got[0].ID, got[1].ID, got[2].ID})

	latest, err := st.ListWasteEntries(ctx, WasteFilter{LoggedByID: "u", Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, ids[2], latest[0].ID)
}

func TestMemoryStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	b := &models.Business{Name: "Cafe", Type: models.BusinessCafe}
	require.NoError(t, st.CreateBusiness(ctx, b))

	boom := errors.New("boom")
	err := st.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.CreateWasteEntry(ctx, &models.WasteEntry{BusinessID: b.ID, Quantity: 1}))
		require.NoError(t, tx.CreateNotification(ctx, &models.Notification{UserID: "u", Title: "t"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := st.ListWasteEntries(ctx, WasteFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	notes, err := st.ListNotifications(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, notes)

	require.NoError(t, st.Transaction(ctx, func(tx Store) error {
		return tx.CreateWasteEntry(ctx, &models.WasteEntry{BusinessID: b.ID, Quantity: 2})
	}))
	entries, err = st.ListWasteEntries(ctx, WasteFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemoryStore_TransactionRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	assert.PanicsWithValue(t, "boom", func() {
		_ = st.Transaction(ctx, func(tx Store) error {
			require.NoError(t, tx.CreateNotification(ctx, &models.Notification{UserID: "u", Title: "t"}))
			panic("boom")
		})
	})

	notes, err := st.ListNotifications(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, notes)

	// The lock was released.
	require.NoError(t, st.CreateNotification(ctx, &models.Notification{UserID: "u", Title: "after"}))
}

func TestMemoryStore_PointsPagination(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	for i := 1; i <= 5; i++ {
		require.NoError(t, st.CreatePoints(ctx, &models.PointsHistory{UserID: "u", Points: i}))
	}
	require.NoError(t, st.CreatePoints(ctx, &models.PointsHistory{UserID: "other", Points: 100}))

	total, err := st.SumPoints(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 15, total)

	page, count, err := st.ListPoints(ctx, "u", 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].Points)
	assert.Equal(t, 2, page[1].Points)

	page, _, err = st.ListPoints(ctx, "u", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, _, err = st.ListPoints(ctx, "u", -8, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestMemoryStore_MarkNotificationRead(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	mine := &models.Notification{UserID: "u", Title: "a"}
	theirs := &models.Notification{UserID: "v", Title: "b"}
	require.NoError(t, st.CreateNotification(ctx, mine))
	require.NoError(t, st.CreateNotification(ctx, theirs))
	require.NoError(t, st.CreateNotification(ctx, &models.Notification{UserID: "u", Title: "c"}))

	_, err := st.MarkNotificationRead(ctx, theirs.ID, "u")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := st.MarkNotificationRead(ctx, mine.ID, "u")
	require.NoError(t, err)
	assert.True(t, n.Read)

	count, err := st.MarkAllNotificationsRead(ctx, "u")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSeedDemo_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	require.NoError(t, SeedDemo(ctx, st))
	require.NoError(t, SeedDemo(ctx, st))

	entries, err := st.ListWasteEntries(ctx, WasteFilter{BusinessID: demo.CafeID})
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	u, err := st.GetUserByEmail(ctx, "farmer@foodloop.demo")
	require.NoError(t, err)
	require.NotNil(t, u.Business)
	assert.Equal(t, models.BusinessFarm, u.Business.Type)
	assert.NotEqual(t, "farmer123", u.Password)
}
