package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodloop-backend/internal/demo"
	"foodloop-backend/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// SeedDemo writes the demo businesses, accounts and a handful of waste
// entries. Rows that already exist are left alone.
func SeedDemo(ctx context.Context, st Store) error {
	return st.Transaction(ctx, func(tx Store) error {
		for _, b := range demo.Businesses {
			if _, err := tx.GetBusiness(ctx, b.ID); err == nil {
				continue
			} else if !errors.Is(err, ErrNotFound) {
				return err
			}
			b := b
			if err := tx.CreateBusiness(ctx, &b); err != nil {
				return fmt.Errorf("seed business %s: %w", b.Name, err)
			}
		}

		created := false
		for _, du := range demo.Users {
			if _, err := tx.GetUserByEmail(ctx, du.Email); err == nil {
				continue
			} else if !errors.Is(err, ErrNotFound) {
				return err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(du.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash demo password: %w", err)
			}
			businessID := du.Business.ID
			u := models.User{
				ID:         du.ID,
				Email:      du.Email,
				Name:       du.Name,
				Password:   string(hash),
				Role:       du.Role,
				BusinessID: &businessID,
			}
			if err := tx.CreateUser(ctx, &u); err != nil {
				return fmt.Errorf("seed user %s: %w", du.Email, err)
			}
			created = true
		}

		if !created {
			log.Info().Msg("demo accounts already present, skipping sample entries")
			return nil
		}
		return seedEntries(ctx, tx)
	})
}

func seedEntries(ctx context.Context, tx Store) error {
	staffID := demo.Users[1].ID
	today := time.Now().Truncate(24 * time.Hour)
	day := func(n int) *time.Time {
		t := today.AddDate(0, 0, n)
		return &t
	}

	entries := []models.WasteEntry{
		{ItemName: "Croissants", WasteType: models.WasteEdible, SubType: "Bakery", Quantity: 4.5, ActionType: models.ActionDonate, ExpiryDate: day(1)},
		{ItemName: "Sandwiches", WasteType: models.WasteEdible, SubType: "Prepared", Quantity: 3, ActionType: models.ActionDonate, ExpiryDate: day(3)},
		{ItemName: "Coffee grounds", WasteType: models.WasteCoffeeGrounds, Quantity: 12, ActionType: models.ActionCompost},
		{ItemName: "Vegetable peel", WasteType: models.WasteOrganic, SubType: "Produce", Quantity: 8.25, ActionType: models.ActionFarm, ExpiryDate: day(5)},
		{ItemName: "Milk cartons", WasteType: models.WasteRecyclable, Quantity: 2, ActionType: models.ActionReuse},
	}
	for i := range entries {
		e := &entries[i]
		e.BusinessID = demo.CafeID
		e.LoggedByID = staffID
		e.Status = models.WasteAvailable
		if err := tx.CreateWasteEntry(ctx, e); err != nil {
			return fmt.Errorf("seed waste entry %s: %w", e.ItemName, err)
		}
	}
	log.Info().Int("entries", len(entries)).Msg("demo data seeded")
	return nil
}
