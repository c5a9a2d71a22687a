package account

import (
	"errors"
	"strings"

	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const minPasswordLength = 8

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// POST /api/user/password
func ChangePasswordHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := auth.CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.CurrentPassword == "" || body.NewPassword == "" {
			return fiber.NewError(fiber.StatusBadRequest, "currentPassword and newPassword are required")
		}
		if len(strings.TrimSpace(body.NewPassword)) < minPasswordLength {
			return fiber.NewError(fiber.StatusBadRequest, "New password must be at least 8 characters")
		}

		u, err := st.GetUser(c.UserContext(), id.ID)
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		if err != nil {
			return err
		}
		if !auth.CheckPassword(u.Password, body.CurrentPassword) {
			return fiber.NewError(fiber.StatusBadRequest, "Current password is incorrect")
		}

		hash, err := auth.HashPassword(body.NewPassword)
		if err != nil {
			return err
		}
		if err := st.SetUserPassword(c.UserContext(), u.ID, hash); err != nil {
			return err
		}

		log.Info().Str("user_id", u.ID).Msg("password changed")
		return c.JSON(fiber.Map{"success": true})
	}
}
