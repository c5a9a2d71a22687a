package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"foodloop-backend/internal/models"
	"foodloop-backend/internal/store"

	"gorm.io/datatypes"
)

const (
	TypePickupRequested = "pickup_requested"
	TypePickupApproved  = "pickup_approved"
	TypePickupRejected  = "pickup_rejected"
	TypePickupCompleted = "pickup_completed"
	TypePickupCancelled = "pickup_cancelled"
)

type Message struct {
	UserID  string
	Type    string
	Title   string
	Message string
	Payload map[string]any
}

func Notify(ctx context.Context, st store.Store, m Message) error {
	var payload datatypes.JSON
	if m.Payload != nil {
		b, err := json.Marshal(m.Payload)
		if err != nil {
			return fmt.Errorf("encode notification payload: %w", err)
		}
		payload = datatypes.JSON(b)
	}

	n := models.Notification{
		UserID:  m.UserID,
		Type:    m.Type,
		Title:   m.Title,
		Message: m.Message,
		Payload: payload,
	}
	if err := st.CreateNotification(ctx, &n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
