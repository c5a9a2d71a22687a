// Package workflow owns every write that moves a waste entry or pickup
// request through its lifecycle. Each operation runs in a single store
// transaction together with its activity log, notifications and points.
package workflow

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"foodloop-backend/internal/activity"
	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/notifications"
	"foodloop-backend/internal/points"
	"foodloop-backend/internal/store"
)

// MaxQuantity caps a single entry, in kg.
const MaxQuantity = 100000

const (
	noteDropped   = "Cancelled: waste entry dropped"
	noteCollected = "Cancelled: collected by another partner"
)

// Recorder receives one call per completed transition.
type Recorder interface {
	Transition(kind string)
}

type Service struct {
	st       store.Store
	now      func() time.Time
	recorder Recorder
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{st: st, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) record(kind string) {
	if s.recorder != nil {
		s.recorder.Transition(kind)
	}
}

func staffOf(actor *auth.Identity, businessID string, roles ...models.UserRole) error {
	if !slices.Contains(roles, actor.Role) || actor.Business() == "" || actor.Business() != businessID {
		return ErrForbidden
	}
	return nil
}

func appendNote(existing, note string) string {
	if strings.TrimSpace(existing) == "" {
		return note
	}
	return existing + "\n" + note
}

func itemName(e *models.WasteEntry) string {
	if e == nil {
		return ""
	}
	if e.ItemName != "" {
		return e.ItemName
	}
	return string(e.WasteType)
}

func requesterType(p *models.PickupRequest) string {
	if p.Requester == nil {
		return ""
	}
	var bt models.BusinessType
	if p.Requester.Business != nil {
		bt = p.Requester.Business.Type
	}
	return auth.FrontendRole(p.Requester.Role, bt)
}

// ---- waste entries ----

type LogWasteInput struct {
	ItemName   string
	WasteType  models.WasteType
	SubType    string
	Quantity   float64
	ActionType models.ActionType
	ExpiryDate *time.Time
	Notes      string
}

// LogWaste records a new entry for businessID and credits the logger.
func (s *Service) LogWaste(ctx context.Context, actor *auth.Identity, businessID string, in LogWasteInput) (*models.WasteEntry, error) {
	in.WasteType = models.WasteType(strings.ToUpper(string(in.WasteType)))
	in.ActionType = models.ActionType(strings.ToUpper(string(in.ActionType)))
	if !in.WasteType.Valid() {
		return nil, fmt.Errorf("%w: unknown wasteType %q", ErrInvalidInput, in.WasteType)
	}
	if !in.ActionType.Valid() {
		return nil, fmt.Errorf("%w: unknown actionType %q", ErrInvalidInput, in.ActionType)
	}
	if math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) || in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidInput)
	}
	if in.Quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must be at most %d kg", ErrInvalidInput, MaxQuantity)
	}

	entry := &models.WasteEntry{
		BusinessID: businessID,
		LoggedByID: actor.ID,
		ItemName:   strings.TrimSpace(in.ItemName),
		WasteType:  in.WasteType,
		SubType:    strings.TrimSpace(in.SubType),
		Quantity:   in.Quantity,
		ActionType: in.ActionType,
		Status:     models.WasteAvailable,
		ExpiryDate: in.ExpiryDate,
		Notes:      in.Notes,
	}
	if in.ActionType == models.ActionDropped {
		entry.Status = models.WasteDropped
	}

	err := s.st.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreateWasteEntry(ctx, entry); err != nil {
			return fmt.Errorf("create waste entry: %w", err)
		}
		if err := points.Award(ctx, tx, actor.ID, points.ForLoggedEntry(entry.Quantity), "Logged "+itemName(entry), entry.ID); err != nil {
			return err
		}
		return activity.WriteLog(ctx, tx, activity.LogOptions{
			BusinessID: businessID,
			UserID:     actor.ID,
			UserName:   actor.DisplayName(),
			Action:     models.ActivityWasteLogged,
			ItemName:   itemName(entry),
		})
	})
	if err != nil {
		return nil, err
	}
	s.record("waste_logged")
	return entry, nil
}

type DropResult struct {
	Entry     *models.WasteEntry     `json:"wasteEntry"`
	Cancelled []models.PickupRequest `json:"cancelledRequests"`
}

// Drop ends an entry and cancels every open request against it.
func (s *Service) Drop(ctx context.Context, actor *auth.Identity, entryID string) (*DropResult, error) {
	var res DropResult
	err := s.st.Transaction(ctx, func(tx store.Store) error {
		entry, err := tx.GetWasteEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if err := staffOf(actor, entry.BusinessID, models.RoleStaff, models.RoleAdmin); err != nil {
			return err
		}
		if entry.Status != models.WasteAvailable {
			return fmt.Errorf("%w: entry is %s", ErrInvalidTransition, entry.Status)
		}

		now := s.now()
		open, err := tx.ListPickupRequests(ctx, store.PickupFilter{
			WasteEntryID: entry.ID,
			Statuses:     []models.PickupStatus{models.PickupPending, models.PickupApproved},
		})
		if err != nil {
			return err
		}
		for i := range open {
			p := &open[i]
			p.Status = models.PickupCancelled
			p.CancelledAt = &now
			p.Notes = appendNote(p.Notes, noteDropped)
			if err := tx.UpdatePickupRequest(ctx, p); err != nil {
				return fmt.Errorf("cancel pickup %s: %w", p.ID, err)
			}
			if err := notifications.Notify(ctx, tx, notifications.Message{
				UserID:  p.RequesterID,
				Type:    notifications.TypePickupCancelled,
				Title:   "Pickup cancelled",
				Message: fmt.Sprintf("%s is no longer available.", itemName(entry)),
				Payload: map[string]any{"pickupRequestId": p.ID, "wasteEntryId": entry.ID},
			}); err != nil {
				return err
			}
		}

		entry.Status = models.WasteDropped
		entry.ActionType = models.ActionDropped
		if err := tx.UpdateWasteEntry(ctx, entry); err != nil {
			return fmt.Errorf("drop waste entry: %w", err)
		}

		if err := activity.WriteLog(ctx, tx, activity.LogOptions{
			BusinessID: entry.BusinessID,
			UserID:     actor.ID,
			UserName:   actor.DisplayName(),
			Action:     models.ActivityWasteDropped,
			ItemName:   itemName(entry),
		}); err != nil {
			return err
		}

		res = DropResult{Entry: entry, Cancelled: open}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record("waste_dropped")
	return &res, nil
}

// ---- pickup requests ----

// Request files a PENDING pickup against an available entry.
func (s *Service) Request(ctx context.Context, actor *auth.Identity, entryID, notes string) (*models.PickupRequest, error) {
	var req *models.PickupRequest
	err := s.st.Transaction(ctx, func(tx store.Store) error {
		entry, err := tx.GetWasteEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != models.WasteAvailable {
			return fmt.Errorf("%w: entry is %s", ErrInvalidTransition, entry.Status)
		}

		mine, err := tx.ListPickupRequests(ctx, store.PickupFilter{
			WasteEntryID: entry.ID,
			RequesterID:  actor.ID,
			Statuses:     []models.PickupStatus{models.PickupPending, models.PickupApproved},
		})
		if err != nil {
			return err
		}
		if len(mine) > 0 {
			return ErrDuplicateRequest
		}

		req = &models.PickupRequest{
			WasteEntryID: entry.ID,
			BusinessID:   entry.BusinessID,
			RequesterID:  actor.ID,
			Status:       models.PickupPending,
			Notes:        strings.TrimSpace(notes),
		}
		if err := tx.CreatePickupRequest(ctx, req); err != nil {
			return fmt.Errorf("create pickup request: %w", err)
		}

		if err := notifications.Notify(ctx, tx, notifications.Message{
			UserID:  entry.LoggedByID,
			Type:    notifications.TypePickupRequested,
			Title:   "New pickup request",
			Message: fmt.Sprintf("%s requested %s.", orgName(actor), itemName(entry)),
			Payload: map[string]any{"pickupRequestId": req.ID, "wasteEntryId": entry.ID},
		}); err != nil {
			return err
		}

		req.WasteEntry = entry
		return activity.WriteLog(ctx, tx, activity.LogOptions{
			BusinessID:    entry.BusinessID,
			UserID:        actor.ID,
			UserName:      actor.DisplayName(),
			Action:        models.ActivityPickupRequested,
			ItemName:      itemName(entry),
			RequesterType: actor.FrontendRole(),
		})
	})
	if err != nil {
		return nil, err
	}
	s.record("pickup_requested")
	return req, nil
}

func orgName(id *auth.Identity) string {
	if id.BusinessName != "" {
		return id.BusinessName
	}
	return id.DisplayName()
}

// Approve moves a PENDING request to APPROVED.
func (s *Service) Approve(ctx context.Context, actor *auth.Identity, id string) (*models.PickupRequest, error) {
	return s.decide(ctx, actor, id, models.PickupApproved)
}

// Reject moves a request to REJECTED. The linked entry is not touched.
func (s *Service) Reject(ctx context.Context, actor *auth.Identity, id string) (*models.PickupRequest, error) {
	return s.decide(ctx, actor, id, models.PickupRejected)
}

func (s *Service) decide(ctx context.Context, actor *auth.Identity, id string, to models.PickupStatus) (*models.PickupRequest, error) {
	var req *models.PickupRequest
	err := s.st.Transaction(ctx, func(tx store.Store) error {
		p, err := tx.GetPickupRequest(ctx, id)
		if err != nil {
			return err
		}
		if err := staffOf(actor, p.BusinessID, models.RoleAdmin, models.RoleStaff); err != nil {
			return err
		}

		now := s.now()
		var (
			action models.ActivityAction
			ntype  string
			title  string
		)
		switch to {
		case models.PickupApproved:
			if p.Status != models.PickupPending {
				return fmt.Errorf("%w: request is %s", ErrInvalidTransition, p.Status)
			}
			p.ApprovedAt = &now
			action, ntype, title = models.ActivityPickupApproved, notifications.TypePickupApproved, "Pickup approved"
		case models.PickupRejected:
			if !p.Status.Open() {
				return fmt.Errorf("%w: request is %s", ErrInvalidTransition, p.Status)
			}
			p.RejectedAt = &now
			action, ntype, title = models.ActivityPickupRejected, notifications.TypePickupRejected, "Pickup rejected"
		default:
			return fmt.Errorf("%w: %s", ErrInvalidTransition, to)
		}
		p.Status = to

		if err := tx.UpdatePickupRequest(ctx, p); err != nil {
			return fmt.Errorf("update pickup request: %w", err)
		}
		if err := notifications.Notify(ctx, tx, notifications.Message{
			UserID:  p.RequesterID,
			Type:    ntype,
			Title:   title,
			Message: fmt.Sprintf("Your request for %s was %s.", itemName(p.WasteEntry), strings.ToLower(string(to))),
			Payload: map[string]any{"pickupRequestId": p.ID, "wasteEntryId": p.WasteEntryID},
		}); err != nil {
			return err
		}
		if err := activity.WriteLog(ctx, tx, activity.LogOptions{
			BusinessID:    p.BusinessID,
			UserID:        actor.ID,
			UserName:      actor.DisplayName(),
			Action:        action,
			ItemName:      itemName(p.WasteEntry),
			RequesterType: requesterType(p),
		}); err != nil {
			return err
		}
		req = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(strings.ToLower(string(to)))
	return req, nil
}

type Collection struct {
	Request   *models.PickupRequest  `json:"pickupRequest"`
	Entry     *models.WasteEntry     `json:"wasteEntry"`
	Cancelled []models.PickupRequest `json:"cancelledRequests"`
}

// CollectAsAdmin completes a pickup on behalf of the owning business.
func (s *Service) CollectAsAdmin(ctx context.Context, actor *auth.Identity, id string) (*Collection, error) {
	return s.collect(ctx, actor, id, func(p *models.PickupRequest) error {
		return staffOf(actor, p.BusinessID, models.RoleAdmin)
	})
}

// CollectAsRequester completes the caller's own pickup.
func (s *Service) CollectAsRequester(ctx context.Context, actor *auth.Identity, id string) (*Collection, error) {
	return s.collect(ctx, actor, id, func(p *models.PickupRequest) error {
		if p.RequesterID != actor.ID {
			return ErrForbidden
		}
		return nil
	})
}

func (s *Service) collect(ctx context.Context, actor *auth.Identity, id string, authorize func(*models.PickupRequest) error) (*Collection, error) {
	var out Collection
	err := s.st.Transaction(ctx, func(tx store.Store) error {
		p, err := tx.GetPickupRequest(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(p); err != nil {
			return err
		}
		if !p.Status.Open() {
			return fmt.Errorf("%w: request is %s", ErrInvalidTransition, p.Status)
		}

		entry, err := tx.GetWasteEntry(ctx, p.WasteEntryID)
		if err != nil {
			return err
		}
		if entry.Status != models.WasteAvailable {
			return fmt.Errorf("%w: entry is %s", ErrInvalidTransition, entry.Status)
		}

		now := s.now()
		p.Status = models.PickupCompleted
		p.CompletedAt = &now
		if err := tx.UpdatePickupRequest(ctx, p); err != nil {
			return fmt.Errorf("complete pickup request: %w", err)
		}

		entry.Status = models.WasteCompleted
		if err := tx.UpdateWasteEntry(ctx, entry); err != nil {
			return fmt.Errorf("complete waste entry: %w", err)
		}

		others, err := tx.ListPickupRequests(ctx, store.PickupFilter{
			WasteEntryID: entry.ID,
			Statuses:     []models.PickupStatus{models.PickupPending, models.PickupApproved},
		})
		if err != nil {
			return err
		}
		for i := range others {
			o := &others[i]
			o.Status = models.PickupCancelled
			o.CancelledAt = &now
			o.Notes = appendNote(o.Notes, noteCollected)
			if err := tx.UpdatePickupRequest(ctx, o); err != nil {
				return fmt.Errorf("cancel pickup %s: %w", o.ID, err)
			}
			if err := notifications.Notify(ctx, tx, notifications.Message{
				UserID:  o.RequesterID,
				Type:    notifications.TypePickupCancelled,
				Title:   "Pickup cancelled",
				Message: fmt.Sprintf("%s was collected by another partner.", itemName(entry)),
				Payload: map[string]any{"pickupRequestId": o.ID, "wasteEntryId": entry.ID},
			}); err != nil {
				return err
			}
		}

		if err := points.Award(ctx, tx, p.RequesterID, points.ForCollection(entry.Quantity), "Collected "+itemName(entry), entry.ID); err != nil {
			return err
		}
		if err := notifications.Notify(ctx, tx, notifications.Message{
			UserID:  p.RequesterID,
			Type:    notifications.TypePickupCompleted,
			Title:   "Pickup completed",
			Message: fmt.Sprintf("%s has been collected.", itemName(entry)),
			Payload: map[string]any{"pickupRequestId": p.ID, "wasteEntryId": entry.ID},
		}); err != nil {
			return err
		}
		if err := activity.WriteLog(ctx, tx, activity.LogOptions{
			BusinessID:    p.BusinessID,
			UserID:        actor.ID,
			UserName:      actor.DisplayName(),
			Action:        models.ActivityPickupCollected,
			ItemName:      itemName(entry),
			RequesterType: requesterType(p),
		}); err != nil {
			return err
		}

		p.WasteEntry = entry
		out = Collection{Request: p, Entry: entry, Cancelled: others}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record("completed")
	return &out, nil
}
