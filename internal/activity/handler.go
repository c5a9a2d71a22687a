package activity

import (
	"time"

	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"
	"foodloop-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type ActivityResponse struct {
	ID            string                `json:"id"`
	ActionType    models.ActivityAction `json:"actionType"`
	ItemName      string                `json:"itemName"`
	RequesterType string                `json:"requesterType"`
	User          string                `json:"user"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// GET /api/admin/activity?limit=20
func ListActivityHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := tenant.FromRequest(c, st)
		if err != nil {
			return err
		}

		limit := c.QueryInt("limit", defaultLimit)
		if limit <= 0 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}

		logs, err := st.ListActivityLogs(c.UserContext(), store.ActivityFilter{BusinessID: businessID, Limit: limit})
		if err != nil {
			return err
		}

		resp := make([]ActivityResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, ActivityResponse{
				ID:            l.ID,
				ActionType:    l.ActionType,
				ItemName:      l.ItemName,
				RequesterType: l.RequesterType,
				User:          l.UserName,
				CreatedAt:     l.CreatedAt,
			})
		}
		return c.JSON(resp)
	}
}
