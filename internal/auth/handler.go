package auth

import (
	"errors"
	"strings"
	"time"

	"foodloop-backend/internal/config"
	"foodloop-backend/internal/demo"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID           string  `json:"userId"`
	Role             string  `json:"role"`
	OrganizationName string  `json:"organizationName"`
	CafeID           *string `json:"cafeId"`
	Token            string  `json:"token"`
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email and password are required")
		}

		id, found := persistentLogin(c, st, body)
		if !found {
			id = demoLogin(body)
		}
		if id == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, id)
		if err != nil {
			return err
		}
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(sessionTTL),
			HTTPOnly: true,
			Secure:   cfg.Production(),
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		return c.JSON(LoginResponse{
			UserID:           id.ID,
			Role:             id.FrontendRole(),
			OrganizationName: id.BusinessName,
			CafeID:           id.BusinessID,
			Token:            token,
		})
	}
}

// persistentLogin reports found=false only when the store has no such user
// or cannot be read; only then may the demo table answer.
func persistentLogin(c *fiber.Ctx, st store.Store, body LoginRequest) (id *Identity, found bool) {
	u, err := st.GetUserByEmail(c.UserContext(), body.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Msg("login lookup failed, trying demo accounts")
		}
		return nil, false
	}
	if !CheckPassword(u.Password, body.Password) {
		return nil, true
	}
	return IdentityFromUser(u), true
}

func demoLogin(body LoginRequest) *Identity {
	du, ok := demo.Lookup(body.Email)
	if !ok || du.Password != body.Password {
		return nil
	}
	id := &Identity{ID: du.ID, Email: du.Email, Name: du.Name, Role: du.Role}
	id.SetBusiness(&du.Business)
	return id
}

type MeResponse struct {
	UserID       string              `json:"userId"`
	Email        string              `json:"email"`
	Name         string              `json:"name,omitempty"`
	Role         string              `json:"role"`
	StoredRole   models.UserRole     `json:"storedRole"`
	BusinessID   *string             `json:"businessId"`
	BusinessName string              `json:"businessName,omitempty"`
	BusinessType models.BusinessType `json:"businessType,omitempty"`
}

// GET /api/auth/me
func MeHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := CurrentUser(c)

		resp := MeResponse{
			UserID:       id.ID,
			Email:        id.Email,
			Role:         id.FrontendRole(),
			StoredRole:   id.Role,
			BusinessID:   id.BusinessID,
			BusinessName: id.BusinessName,
			BusinessType: id.BusinessType,
		}

		// Prefer the stored row; the session may predate a business assignment.
		if u, err := st.GetUser(c.UserContext(), id.ID); err == nil {
			fresh := IdentityFromUser(u)
			resp.Name = u.Name
			resp.Email = u.Email
			resp.Role = fresh.FrontendRole()
			resp.StoredRole = u.Role
			resp.BusinessID = u.BusinessID
			resp.BusinessName = fresh.BusinessName
			resp.BusinessType = fresh.BusinessType
		}

		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(resp)
	}
}
