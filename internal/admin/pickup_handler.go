package admin

import (
	"strings"
	"time"

	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"
	"foodloop-backend/internal/tenant"
	"foodloop-backend/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

type PickupResponse struct {
	ID                    string              `json:"id"`
	WasteEntryID          string              `json:"wasteEntryId"`
	ItemName              string              `json:"itemName"`
	WasteType             models.WasteType    `json:"wasteType"`
	Quantity              float64             `json:"quantity"`
	Status                models.PickupStatus `json:"status"`
	RequesterID           string              `json:"requesterId"`
	RequesterName         string              `json:"requesterName"`
	RequesterOrganization string              `json:"requesterOrganization"`
	RequesterType         string              `json:"requesterType"`
	Notes                 string              `json:"notes"`
	CreatedAt             time.Time           `json:"createdAt"`
	ApprovedAt            *time.Time          `json:"approvedAt"`
	RejectedAt            *time.Time          `json:"rejectedAt"`
	CompletedAt           *time.Time          `json:"completedAt"`
	CancelledAt           *time.Time          `json:"cancelledAt"`
}

func toPickupResponse(p models.PickupRequest) PickupResponse {
	resp := PickupResponse{
		ID:           p.ID,
		WasteEntryID: p.WasteEntryID,
		Status:       p.Status,
		RequesterID:  p.RequesterID,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		ApprovedAt:   p.ApprovedAt,
		RejectedAt:   p.RejectedAt,
		CompletedAt:  p.CompletedAt,
		CancelledAt:  p.CancelledAt,
	}
	if e := p.WasteEntry; e != nil {
		resp.ItemName = e.ItemName
		resp.WasteType = e.WasteType
		resp.Quantity = e.Quantity
	}
	if u := p.Requester; u != nil {
		resp.RequesterName = u.Name
		var bt models.BusinessType
		if u.Business != nil {
			resp.RequesterOrganization = u.Business.Name
			bt = u.Business.Type
		}
		resp.RequesterType = auth.FrontendRole(u.Role, bt)
	}
	return resp
}

// GET /api/admin/pickups?status=PENDING
func ListPickupsHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := tenant.FromRequest(c, st)
		if err != nil {
			return err
		}

		f := store.PickupFilter{BusinessID: businessID}
		if s := strings.TrimSpace(c.Query("status")); s != "" {
			f.Statuses = []models.PickupStatus{models.PickupStatus(strings.ToUpper(s))}
		}

		requests, err := st.ListPickupRequests(c.UserContext(), f)
		if err != nil {
			return err
		}

		resp := make([]PickupResponse, 0, len(requests))
		for _, p := range requests {
			resp = append(resp, toPickupResponse(p))
		}
		return c.JSON(resp)
	}
}

type transition func(c *fiber.Ctx, actor *auth.Identity, id string) (any, error)

// pickupAction resolves the caller's tenant before running the transition so
// ownership checks compare against an assigned business.
func pickupAction(st store.Store, run transition) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := tenant.FromRequest(c, st); err != nil {
			return err
		}
		actor, _ := auth.CurrentUser(c)

		out, err := run(c, actor, c.Params("id"))
		if err != nil {
			return workflow.HTTPError(err, "Pickup request not found")
		}
		return c.JSON(out)
	}
}

// POST /api/admin/pickups/:id/approve
func ApprovePickupHandler(st store.Store, svc *workflow.Service) fiber.Handler {
	return pickupAction(st, func(c *fiber.Ctx, actor *auth.Identity, id string) (any, error) {
		return svc.Approve(c.UserContext(), actor, id)
	})
}

// POST /api/admin/pickups/:id/reject
func RejectPickupHandler(st store.Store, svc *workflow.Service) fiber.Handler {
	return pickupAction(st, func(c *fiber.Ctx, actor *auth.Identity, id string) (any, error) {
		return svc.Reject(c.UserContext(), actor, id)
	})
}

// POST /api/admin/pickups/:id/collected
func CollectedPickupHandler(st store.Store, svc *workflow.Service) fiber.Handler {
	return pickupAction(st, func(c *fiber.Ctx, actor *auth.Identity, id string) (any, error) {
		return svc.CollectAsAdmin(c.UserContext(), actor, id)
	})
}
