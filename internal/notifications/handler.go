package notifications

import (
	"errors"

	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type ListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

type MarkReadRequest struct {
	ID  string `json:"id"`
	All bool   `json:"all"`
}

// GET /api/notifications
func ListHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := auth.CurrentUser(c)

		rows, err := st.ListNotifications(c.UserContext(), id.ID)
		if err != nil {
			return err
		}

		unread := 0
		for _, n := range rows {
			if !n.Read {
				unread++
			}
		}
		return c.JSON(ListResponse{Notifications: rows, Unread: unread})
	}
}

// PATCH /api/notifications  {"id": "..."} or {"all": true}
func MarkReadHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := auth.CurrentUser(c)

		var body MarkReadRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.All {
			n, err := st.MarkAllNotificationsRead(c.UserContext(), id.ID)
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{"success": true, "updated": n})
		}

		if body.ID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Notification id is required")
		}

		n, err := st.MarkNotificationRead(c.UserContext(), body.ID, id.ID)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Notification not found")
		}
		if err != nil {
			return err
		}
		return c.JSON(n)
	}
}
