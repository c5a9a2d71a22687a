package activity

import (
	"context"
	"fmt"

	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"
)

type LogOptions struct {
	BusinessID    string
	UserID        string
	UserName      string
	Action        models.ActivityAction
	ItemName      string
	RequesterType string
}

func WriteLog(ctx context.Context, st store.Store, opts LogOptions) error {
	entry := models.ActivityLog{
		UserID:        opts.UserID,
		UserName:      opts.UserName,
		ActionType:    opts.Action,
		ItemName:      opts.ItemName,
		RequesterType: opts.RequesterType,
	}
	if opts.BusinessID != "" {
		bid := opts.BusinessID
		entry.BusinessID = &bid
	}

	if err := st.CreateActivityLog(ctx, &entry); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}
