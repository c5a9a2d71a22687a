package admin

import (
	"foodloop-backend/internal/report"
	"foodloop-backend/internal/store"
	"foodloop-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
)

// GET /api/admin/stats
func StatsHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := tenant.FromRequest(c, st)
		if err != nil {
			return err
		}

		entries, err := st.ListWasteEntries(c.UserContext(), store.WasteFilter{BusinessID: businessID})
		if err != nil {
			return err
		}
		requests, err := st.ListPickupRequests(c.UserContext(), store.PickupFilter{BusinessID: businessID})
		if err != nil {
			return err
		}

		return c.JSON(report.Stats(entries, requests))
	}
}

// GET /api/admin/actions-breakdown
func ActionsBreakdownHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := tenant.FromRequest(c, st)
		if err != nil {
			return err
		}

		entries, err := st.ListWasteEntries(c.UserContext(), store.WasteFilter{BusinessID: businessID})
		if err != nil {
			return err
		}
		return c.JSON(report.Actions(entries))
	}
}

// GET /api/admin/waste-breakdown
func WasteBreakdownHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := tenant.FromRequest(c, st)
		if err != nil {
			return err
		}

		entries, err := st.ListWasteEntries(c.UserContext(), store.WasteFilter{BusinessID: businessID})
		if err != nil {
			return err
		}
		return c.JSON(report.WasteTypes(entries))
	}
}
