package staff

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

type CreateWasteRequest struct {
	ItemName   string  `json:"itemName"`
	WasteType  string  `json:"wasteType"`
	SubType    string  `json:"subType"`
	Quantity   float64 `json:"quantity"`
	ActionType string  `json:"actionType"`
	ExpiryDate string  `json:"expiryDate"` // YYYY-MM-DD
	Notes      string  `json:"notes"`
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// POST /api/staff/waste
func CreateWasteHandler(st store.Store, svc *workflow.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWasteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(body.WasteType) == "" || strings.TrimSpace(body.ActionType) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "wasteType and actionType are required")
		}

		expiry, err := parseDate(body.ExpiryDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "expiryDate must be YYYY-MM-DD")
		}

		businessID, err := tenant.FromRequest(c, st)
		if err != nil {
			return err
		}
		actor, _ := auth.CurrentUser(c)

		entry, err := svc.LogWaste(c.UserContext(), actor, businessID, workflow.LogWasteInput{
			ItemName:   body.ItemName,
			WasteType:  models.WasteType(body.WasteType),
			SubType:    body.SubType,
			Quantity:   body.Quantity,
			ActionType: models.ActionType(body.ActionType),
			ExpiryDate: expiry,
			Notes:      body.Notes,
		})
		if err != nil {
			return workflow.HTTPError(err, "Waste entry not found")
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// GET /api/staff/waste?status=AVAILABLE
func ListWasteHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := tenant.FromRequest(c, st)
		if err != nil {
			return err
		}

		f := store.WasteFilter{BusinessID: businessID}
		if s := strings.TrimSpace(c.Query("status")); s != "" {
			f.Statuses = []models.WasteStatus{models.WasteStatus(strings.ToUpper(s))}
		}

		entries, err := st.ListWasteEntries(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// POST /api/staff/waste/:id/drop
func DropHandler(st store.Store, svc *workflow.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := tenant.FromRequest(c, st); err != nil {
			return err
		}
		actor, _ := auth.CurrentUser(c)

		res, err := svc.Drop(c.UserContext(), actor, c.Params("id"))
		if err != nil {
			return workflow.HTTPError(err, "Waste entry not found")
		}
		return c.JSON(res)
	}
}
