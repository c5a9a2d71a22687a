package auth

import (
	"context"
	"errors"
	"slices"
	"strings"

	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	CtxIdentityKey = "identity"

	SessionCookie = "session"
	UserIDHeader  = "x-user-id"
)

// UserLookup is the slice of the store the resolver needs.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// IdentityMiddleware resolves the acting user once per request: a session
// token (bearer header or cookie) first, re-read from the store, then the
// x-user-id header. It never rejects a request; guards decide what an absent
// identity means.
func IdentityMiddleware(secret string, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := resolve(c, secret, users); id != nil {
			c.Locals(CtxIdentityKey, id)
		}
		return c.Next()
	}
}

func resolve(c *fiber.Ctx, secret string, users UserLookup) *Identity {
	if tok := sessionToken(c); tok != "" {
		id, err := ParseToken(secret, tok)
		if err == nil {
			return refresh(c, users, id)
		}
		log.Debug().Err(err).Str("path", c.Path()).Msg("session token rejected")
	}

	userID := strings.TrimSpace(c.Get(UserIDHeader))
	if userID == "" {
		return nil
	}

	u, err := users.GetUser(c.UserContext(), userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("user_id", userID).Msg("header identity lookup failed")
		}
		return nil
	}
	return IdentityFromUser(u)
}

// refresh replaces token claims with the stored user so role and business
// changes apply before the token expires. Demo sessions without a user row
// keep their claims, as does a store error.
func refresh(c *fiber.Ctx, users UserLookup, claims *Identity) *Identity {
	u, err := users.GetUser(c.UserContext(), claims.ID)
	switch {
	case err == nil:
		return IdentityFromUser(u)
	case !errors.Is(err, store.ErrNotFound):
		log.Warn().Err(err).Str("user_id", claims.ID).Msg("session user lookup failed, using token claims")
	}
	return claims
}

func sessionToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(SessionCookie)
}

// CurrentUser returns the identity resolved by IdentityMiddleware.
func CurrentUser(c *fiber.Ctx) (*Identity, bool) {
	id, ok := c.Locals(CtxIdentityKey).(*Identity)
	return id, ok && id != nil
}

// UserID is the logging hook for the request logger.
func UserID(c *fiber.Ctx) string {
	if id, ok := CurrentUser(c); ok {
		return id.ID
	}
	return ""
}

// Permit decides whether an identity may use a route.
type Permit func(id *Identity) bool

func Roles(roles ...models.UserRole) Permit {
	return func(id *Identity) bool {
		return slices.Contains(roles, id.Role)
	}
}

// Authenticated admits any resolved identity.
func Authenticated() Permit {
	return func(*Identity) bool { return true }
}

// Partner admits PARTNER users whose business has one of the given types.
func Partner(types ...models.BusinessType) Permit {
	return func(id *Identity) bool {
		return id.Role == models.RolePartner && slices.Contains(types, id.BusinessType)
	}
}

// Require answers 401 without an identity and 403 when no permit matches.
// With no permits any authenticated user passes.
func Require(permits ...Permit) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		if len(permits) == 0 {
			return c.Next()
		}
		for _, p := range permits {
			if p(id) {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
}
