package admin

import (
	"fmt"
	"time"

	"foodloop-backend/internal/report"
	"foodloop-backend/internal/store"
	"foodloop-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeader = []any{"Item", "Waste type", "Sub type", "Quantity (kg)", "Action", "Status", "Expiry date", "Logged at"}

// GET /api/admin/export
func ExportHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := tenant.FromRequest(c, st)
		if err != nil {
			return err
		}

		entries, err := st.ListWasteEntries(c.UserContext(), store.WasteFilter{BusinessID: businessID})
		if err != nil {
			return err
		}

		book := excelize.NewFile()
		defer book.Close()

		const sheet = "Waste"
		if err := book.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
			return err
		}
		bold, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		if err := book.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return err
		}

		for i, e := range entries {
			expiry := ""
			if e.ExpiryDate != nil {
				expiry = e.ExpiryDate.Format("2006-01-02")
			}
			row := []any{
				e.ItemName,
				report.DisplayName(e.WasteType),
				e.SubType,
				report.Round2(e.Quantity),
				string(e.ActionType),
				string(e.Status),
				expiry,
				e.CreatedAt.Format(time.RFC3339),
			}
			addr, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := book.SetSheetRow(sheet, addr, &row); err != nil {
				return err
			}
		}
		if err := book.SetColWidth(sheet, "A", "H", 18); err != nil {
			return err
		}

		buf, err := book.WriteToBuffer()
		if err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="waste-%s.xlsx"`, time.Now().Format("2006-01-02")))
		return c.Send(buf.Bytes())
	}
}
