package staff

import (
	"time"

	"foodloop-backend/internal/models"
	"foodloop-backend/internal/report"
	"foodloop-backend/internal/store"
	"foodloop-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
)

type StatsResponse struct {
	report.Summary
	AvailableItems int `json:"availableItems"`
	ExpiringSoon   int `json:"expiringSoon"`
}

func tenantEntries(c *fiber.Ctx, st store.Store) ([]models.WasteEntry, string, error) {
	businessID, err := tenant.FromRequest(c, st)
	if err != nil {
		return nil, "", err
	}
	entries, err := st.ListWasteEntries(c.UserContext(), store.WasteFilter{BusinessID: businessID})
	if err != nil {
		return nil, "", err
	}
	return entries, businessID, nil
}

// GET /api/staff/stats
func StatsHandler(st store.Store, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, businessID, err := tenantEntries(c, st)
		if err != nil {
			return err
		}
		requests, err := st.ListPickupRequests(c.UserContext(), store.PickupFilter{BusinessID: businessID})
		if err != nil {
			return err
		}

		resp := StatsResponse{
			Summary:      report.Stats(entries, requests),
			ExpiringSoon: len(report.DropAlerts(entries, now())),
		}
		for _, e := range entries {
			if e.Status == models.WasteAvailable {
				resp.AvailableItems++
			}
		}
		return c.JSON(resp)
	}
}

// GET /api/staff/waste-breakdown
func WasteBreakdownHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, _, err := tenantEntries(c, st)
		if err != nil {
			return err
		}
		return c.JSON(report.WasteTypeItems(entries))
	}
}

// GET /api/staff/actions-breakdown
func ActionsBreakdownHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, _, err := tenantEntries(c, st)
		if err != nil {
			return err
		}
		return c.JSON(report.Actions(entries))
	}
}

// GET /api/staff/drop-alerts
func DropAlertsHandler(st store.Store, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, _, err := tenantEntries(c, st)
		if err != nil {
			return err
		}
		return c.JSON(report.DropAlerts(entries, now()))
	}
}
