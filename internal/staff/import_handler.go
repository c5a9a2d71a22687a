package staff

import (
	"errors"
	"strconv"
	"strings"

	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"
	"foodloop-backend/internal/tenant"
	"foodloop-backend/internal/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const maxImportRows = 500

// Column order of an import sheet:
// item name | waste type | quantity | action type | expiry date | sub type | notes
const (
	colItem = iota
	colWasteType
	colQuantity
	colAction
	colExpiry
	colSubType
	colNotes
)

type ImportFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResponse struct {
	Imported int             `json:"imported"`
	Failed   []ImportFailure `json:"failed"`
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isHeader(row []string) bool {
	first := strings.ToUpper(cell(row, colItem))
	return strings.Contains(first, "ITEM") || first == "NAME"
}

// POST /api/staff/waste/import  (multipart, field "file", .xlsx)
func ImportWasteHandler(st store.Store, svc *workflow.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file is required")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files can be imported")
		}

		businessID, err := tenant.FromRequest(c, st)
		if err != nil {
			return err
		}
		actor, _ := auth.CurrentUser(c)

		file, err := fileHeader.Open()
		if err != nil {
			return err
		}
		defer file.Close()

		book, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Spreadsheet could not be read")
		}
		defer book.Close()

		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Spreadsheet has no sheets")
		}
		rows, err := book.GetRows(sheets[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet could not be read")
		}

		start := 0
		if len(rows) > 0 && isHeader(rows[0]) {
			start = 1
		}
		if len(rows)-start > maxImportRows {
			return fiber.NewError(fiber.StatusBadRequest, "At most 500 rows can be imported at once")
		}

		resp := ImportResponse{Failed: make([]ImportFailure, 0)}
		for i := start; i < len(rows); i++ {
			row := rows[i]
			if cell(row, colItem) == "" && cell(row, colWasteType) == "" {
				continue
			}
			fail := func(msg string) {
				resp.Failed = append(resp.Failed, ImportFailure{Row: i + 1, Error: msg})
			}

			qty, err := strconv.ParseFloat(strings.ReplaceAll(cell(row, colQuantity), ",", "."), 64)
			if err != nil {
				fail("quantity is not a number")
				continue
			}
			expiry, err := parseDate(cell(row, colExpiry))
			if err != nil {
				fail("expiry date must be YYYY-MM-DD")
				continue
			}

			_, err = svc.LogWaste(c.UserContext(), actor, businessID, workflow.LogWasteInput{
				ItemName:   cell(row, colItem),
				WasteType:  models.WasteType(cell(row, colWasteType)),
				SubType:    cell(row, colSubType),
				Quantity:   qty,
				ActionType: models.ActionType(cell(row, colAction)),
				ExpiryDate: expiry,
				Notes:      cell(row, colNotes),
			})
			if err != nil {
				if !errors.Is(err, workflow.ErrInvalidInput) {
					return err
				}
				fail(err.Error())
				continue
			}
			resp.Imported++
		}

		log.Info().
			Str("business_id", businessID).
			Int("imported", resp.Imported).
			Int("failed", len(resp.Failed)).
			Msg("waste import finished")
		return c.JSON(resp)
	}
}
