package points

import (
	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	maxPage         = 1_000_000
)

type SummaryResponse struct {
	TotalPoints int `json:"totalPoints"`
	Progress
	History    []models.PointsHistory `json:"history"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"totalPages"`
}

// GET /api/points?page=1&limit=10
func SummaryHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := auth.CurrentUser(c)

		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		if page > maxPage {
			page = maxPage
		}
		limit := c.QueryInt("limit", defaultPageSize)
		if limit < 1 {
			limit = defaultPageSize
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}

		total, err := st.SumPoints(c.UserContext(), id.ID)
		if err != nil {
			return err
		}

		rows, count, err := st.ListPoints(c.UserContext(), id.ID, (page-1)*limit, limit)
		if err != nil {
			return err
		}

		pages := int((count + int64(limit) - 1) / int64(limit))

		return c.JSON(SummaryResponse{
			TotalPoints: total,
			Progress:    LevelFor(total),
			History:     rows,
			Page:        page,
			Limit:       limit,
			Total:       count,
			TotalPages:  pages,
		})
	}
}
