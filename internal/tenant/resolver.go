// Package tenant finds the business a request acts on behalf of.
package tenant

import (
	"context"
	"errors"
	"fmt"

	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var ErrNoBusiness = errors.New("no business could be resolved for this user")

// Resolve returns the caller's business id. Users without one get it
// inferred from the last entry they logged, then from the first CAFE, and the
// inferred value is written back to the user row. Two racing requests write
// the same value, so the write is not synchronised.
func Resolve(ctx context.Context, st store.Store, id *auth.Identity) (string, error) {
	if bid := id.Business(); bid != "" {
		return bid, nil
	}

	u, err := st.GetUser(ctx, id.ID)
	switch {
	case err == nil && u.BusinessID != nil:
		if u.Business != nil {
			id.SetBusiness(u.Business)
		} else {
			id.BusinessID = u.BusinessID
		}
		return *u.BusinessID, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return "", fmt.Errorf("load user: %w", err)
	}

	b, err := infer(ctx, st, id.ID)
	if err != nil {
		return "", err
	}

	if err := st.SetUserBusiness(ctx, id.ID, b.ID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("assign business: %w", err)
		}
		log.Debug().Str("user_id", id.ID).Msg("inferred business not persisted, user row missing")
	} else {
		log.Info().Str("user_id", id.ID).Str("business_id", b.ID).Msg("business assigned to user")
	}
	id.SetBusiness(b)
	return b.ID, nil
}

func infer(ctx context.Context, st store.Store, userID string) (*models.Business, error) {
	entries, err := st.ListWasteEntries(ctx, store.WasteFilter{LoggedByID: userID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		if entries[0].Business != nil {
			return entries[0].Business, nil
		}
		b, err := st.GetBusiness(ctx, entries[0].BusinessID)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	b, err := st.FirstBusinessByType(ctx, models.BusinessCafe)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoBusiness
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FromRequest resolves the tenant for the current fiber request and maps
// ErrNoBusiness to a 400.
func FromRequest(c *fiber.Ctx, st store.Store) (string, error) {
	id, ok := auth.CurrentUser(c)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	bid, err := Resolve(c.UserContext(), st, id)
	if errors.Is(err, ErrNoBusiness) {
		return "", fiber.NewError(fiber.StatusBadRequest, "No business associated with this user")
	}
	return bid, err
}
