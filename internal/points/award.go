package points

import (
	"context"
	"fmt"

	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"
)

func Award(ctx context.Context, st store.Store, userID string, pts int, reason string, wasteEntryID string) error {
	if pts <= 0 || userID == "" {
		return nil
	}
	row := models.PointsHistory{UserID: userID, Points: pts, Reason: reason}
	if wasteEntryID != "" {
		id := wasteEntryID
		row.WasteEntryID = &id
	}
	if err := st.CreatePoints(ctx, &row); err != nil {
		return fmt.Errorf("award points: %w", err)
	}
	return nil
}
