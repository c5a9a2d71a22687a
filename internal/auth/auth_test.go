package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "unit-test-secret-with-enough-length!"

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "other"))
	assert.True(t, CheckPassword("legacy", "legacy"))
	assert.False(t, CheckPassword("legacy", "Legacy"))
	assert.False(t, CheckPassword("", ""))
}

func TestFrontendRole(t *testing.T) {
	cases := []struct {
		role models.UserRole
		bt   models.BusinessType
		want string
	}{
		{models.RoleAdmin, models.BusinessCafe, "admin"},
		{models.RoleStaff, models.BusinessCafe, "staff"},
		{models.RolePartner, models.BusinessNGO, "charity"},
		{models.RolePartner, models.BusinessFarm, "farmer"},
		{models.RolePartner, models.BusinessOther, "staff"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FrontendRole(tc.role, tc.bt), "%s/%s", tc.role, tc.bt)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	bid := "biz-1"
	in := &Identity{ID: "u-1", Email: "a@b.test", Name: "A", Role: models.RolePartner, BusinessID: &bid, BusinessType: models.BusinessFarm, BusinessName: "Farm"}

	tok, err := GenerateToken(secret, in)
	require.NoError(t, err)

	out, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = ParseToken("another-secret-of-sufficient-size!!", tok)
	assert.Error(t, err)
}

type users struct {
	rows map[string]*models.User
	err  error
}

func (u users) GetUser(_ context.Context, id string) (*models.User, error) {
	if u.err != nil {
		return nil, u.err
	}
	if r, ok := u.rows[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func guarded(lookup UserLookup, permits ...Permit) *fiber.App {
	app := fiber.New()
	app.Use(IdentityMiddleware(secret, lookup))
	app.Get("/", Require(permits...), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	return app
}

func status(t *testing.T, app *fiber.App, req *http.Request) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestIdentityMiddleware(t *testing.T) {
	ngo := &models.Business{ID: "ngo", Type: models.BusinessNGO}
	lookup := users{rows: map[string]*models.User{
		"staff":   {ID: "staff", Role: models.RoleStaff},
		"charity": {ID: "charity", Role: models.RolePartner, Business: ngo},
	}}

	t.Run("no identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusUnauthorized, status(t, guarded(lookup), req))
	})

	t.Run("header identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, "staff")
		assert.Equal(t, http.StatusOK, status(t, guarded(lookup, Roles(models.RoleStaff)), req))
	})

	t.Run("wrong role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, "staff")
		assert.Equal(t, http.StatusForbidden, status(t, guarded(lookup, Roles(models.RoleAdmin), Partner(models.BusinessNGO)), req))
	})

	t.Run("partner type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, "charity")
		assert.Equal(t, http.StatusOK, status(t, guarded(lookup, Partner(models.BusinessNGO)), req))
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, "charity")
		assert.Equal(t, http.StatusForbidden, status(t, guarded(lookup, Partner(models.BusinessFarm)), req))
	})

	t.Run("store error is no identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, "staff")
		broken := users{err: errors.New("db down")}
		assert.Equal(t, http.StatusUnauthorized, status(t, guarded(broken), req))
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		tok, err := GenerateToken(secret, &Identity{ID: "from-token", Role: models.RoleAdmin})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
		req.Header.Set(UserIDHeader, "staff")
		resp, err := guarded(lookup, Roles(models.RoleAdmin)).Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("token claims refreshed from store", func(t *testing.T) {
		// Signed while "staff" was still an admin.
		tok, err := GenerateToken(secret, &Identity{ID: "staff", Role: models.RoleAdmin})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
		assert.Equal(t, http.StatusForbidden, status(t, guarded(lookup, Roles(models.RoleAdmin)), req))
	})

	t.Run("token kept on store error", func(t *testing.T) {
		tok, err := GenerateToken(secret, &Identity{ID: "staff", Role: models.RoleAdmin})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
		broken := users{err: errors.New("db down")}
		assert.Equal(t, http.StatusOK, status(t, guarded(broken, Roles(models.RoleAdmin)), req))
	})

	t.Run("bad token falls back to header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-jwt")
		req.Header.Set(UserIDHeader, "staff")
		assert.Equal(t, http.StatusOK, status(t, guarded(lookup, Roles(models.RoleStaff)), req))
	})
}
