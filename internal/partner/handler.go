// Package partner serves the charity and farmer portals. Both share the same
// handlers and differ only in which action types their marketplace lists.
package partner

import (
	"strings"

	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"
	"foodloop-backend/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

// Portal describes one partner-facing route group.
type Portal struct {
	BusinessType models.BusinessType
	Actions      []models.ActionType
}

var (
	Charity = Portal{BusinessType: models.BusinessNGO, Actions: []models.ActionType{models.ActionDonate}}
	Farmer  = Portal{BusinessType: models.BusinessFarm, Actions: []models.ActionType{models.ActionFarm, models.ActionCompost}}
)

type AvailableItem struct {
	models.WasteEntry
	BusinessName string `json:"businessName"`
}

// GET /api/{charity,farmer}/available
func AvailableHandler(st store.Store, p Portal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := st.ListWasteEntries(c.UserContext(), store.WasteFilter{
			Statuses:    []models.WasteStatus{models.WasteAvailable},
			ActionTypes: p.Actions,
		})
		if err != nil {
			return err
		}

		resp := make([]AvailableItem, 0, len(entries))
		for _, e := range entries {
			item := AvailableItem{WasteEntry: e}
			if e.Business != nil {
				item.BusinessName = e.Business.Name
			}
			resp = append(resp, item)
		}
		return c.JSON(resp)
	}
}

// GET /api/{charity,farmer}/requests
func MyRequestsHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, _ := auth.CurrentUser(c)

		f := store.PickupFilter{RequesterID: actor.ID}
		if s := strings.TrimSpace(c.Query("status")); s != "" {
			f.Statuses = []models.PickupStatus{models.PickupStatus(strings.ToUpper(s))}
		}

		requests, err := st.ListPickupRequests(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(requests)
	}
}

type CreateRequestBody struct {
	WasteEntryID string `json:"wasteEntryId"`
	Notes        string `json:"notes"`
}

// POST /api/{charity,farmer}/requests
func CreateRequestHandler(svc *workflow.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequestBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(body.WasteEntryID) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "wasteEntryId is required")
		}
		actor, _ := auth.CurrentUser(c)

		req, err := svc.Request(c.UserContext(), actor, strings.TrimSpace(body.WasteEntryID), body.Notes)
		if err != nil {
			return workflow.HTTPError(err, "Waste entry not found")
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	}
}

// POST /api/{charity,farmer}/requests/:id/collected
func CollectedHandler(svc *workflow.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, _ := auth.CurrentUser(c)

		out, err := svc.CollectAsRequester(c.UserContext(), actor, c.Params("id"))
		if err != nil {
			return workflow.HTTPError(err, "Pickup request not found")
		}
		return c.JSON(out)
	}
}
