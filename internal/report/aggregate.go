// Package report reduces waste entries and pickup requests to the numbers
// the dashboards chart. Every function is pure.
package report

import (
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"foodloop-backend/internal/models"
)

const dropAlertWindowDays = 7

// Round2 rounds to two decimals so summed weights display cleanly.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

type ActionsBreakdown struct {
	Donate  float64 `json:"donate"`
	Compost float64 `json:"compost"`
	Farm    float64 `json:"farm"`
	Reuse   float64 `json:"reuse"`
	Dropped float64 `json:"dropped"`
}

func Actions(entries []models.WasteEntry) ActionsBreakdown {
	var b ActionsBreakdown
	for _, e := range entries {
		switch models.ActionType(strings.ToUpper(string(e.ActionType))) {
		case models.ActionDonate:
			b.Donate += e.Quantity
		case models.ActionCompost:
			b.Compost += e.Quantity
		case models.ActionFarm:
			b.Farm += e.Quantity
		case models.ActionReuse:
			b.Reuse += e.Quantity
		case models.ActionDropped:
			b.Dropped += e.Quantity
		}
	}
	b.Donate = Round2(b.Donate)
	b.Compost = Round2(b.Compost)
	b.Farm = Round2(b.Farm)
	b.Reuse = Round2(b.Reuse)
	b.Dropped = Round2(b.Dropped)
	return b
}

type WasteTypeBreakdown struct {
	Edible     float64 `json:"edible"`
	Organic    float64 `json:"organic"`
	Coffee     float64 `json:"coffee"`
	Recyclable float64 `json:"recyclable"`
}

func WasteTypes(entries []models.WasteEntry) WasteTypeBreakdown {
	var b WasteTypeBreakdown
	for _, e := range entries {
		switch models.WasteType(strings.ToUpper(string(e.WasteType))) {
		case models.WasteEdible:
			b.Edible += e.Quantity
		case models.WasteOrganic:
			b.Organic += e.Quantity
		case models.WasteCoffeeGrounds:
			b.Coffee += e.Quantity
		case models.WasteRecyclable:
			b.Recyclable += e.Quantity
		}
	}
	b.Edible = Round2(b.Edible)
	b.Organic = Round2(b.Organic)
	b.Coffee = Round2(b.Coffee)
	b.Recyclable = Round2(b.Recyclable)
	return b
}

var wasteTypeOrder = []models.WasteType{
	models.WasteEdible,
	models.WasteOrganic,
	models.WasteCoffeeGrounds,
	models.WasteRecyclable,
	models.WasteOther,
}

var wasteTypeNames = map[models.WasteType]string{
	models.WasteEdible:        "Food Waste",
	models.WasteOrganic:       "Organic Waste",
	models.WasteCoffeeGrounds: "Coffee Grounds",
	models.WasteRecyclable:    "Recyclables",
	models.WasteOther:         "Other",
}

// DisplayName is the chart label for a waste type.
func DisplayName(t models.WasteType) string {
	if n, ok := wasteTypeNames[models.WasteType(strings.ToUpper(string(t)))]; ok {
		return n
	}
	return wasteTypeNames[models.WasteOther]
}

type WasteTypeItem struct {
	Type     models.WasteType `json:"type"`
	Name     string           `json:"name"`
	Quantity float64          `json:"quantity"`
}

// WasteTypeItems lists every known waste type in a fixed order, zeros
// included. Unknown types are counted as OTHER.
func WasteTypeItems(entries []models.WasteEntry) []WasteTypeItem {
	sums := make(map[models.WasteType]float64, len(wasteTypeOrder))
	for _, e := range entries {
		t := models.WasteType(strings.ToUpper(string(e.WasteType)))
		if _, ok := wasteTypeNames[t]; !ok {
			t = models.WasteOther
		}
		sums[t] += e.Quantity
	}

	items := make([]WasteTypeItem, 0, len(wasteTypeOrder))
	for _, t := range wasteTypeOrder {
		items = append(items, WasteTypeItem{Type: t, Name: wasteTypeNames[t], Quantity: Round2(sums[t])})
	}
	return items
}

type Summary struct {
	TotalWaste        float64 `json:"totalWaste"`
	Donated           float64 `json:"donated"`
	Compost           float64 `json:"compost"`
	Dropped           float64 `json:"dropped"`
	PendingRequests   int     `json:"pendingRequests"`
	CollectedRequests int     `json:"collectedRequests"`
}

var (
	donatedStatuses = []string{"COMPLETED", "DONATED", "COLLECTED"}
	// Older rows use any of these for a pickup that went through.
	collectedStatuses = []string{"COLLECTED", "APPROVED", "COMPLETED"}
)

func Stats(entries []models.WasteEntry, requests []models.PickupRequest) Summary {
	var s Summary
	for _, e := range entries {
		status := strings.ToUpper(string(e.Status))
		action := strings.ToUpper(string(e.ActionType))

		s.TotalWaste += e.Quantity
		if slices.Contains(donatedStatuses, status) {
			s.Donated += e.Quantity
		}
		if action == string(models.ActionCompost) || status == "COMPOSTED" {
			s.Compost += e.Quantity
		}
		if status == string(models.WasteDropped) || action == string(models.ActionDropped) {
			s.Dropped += e.Quantity
		}
	}

	for _, r := range requests {
		status := strings.ToUpper(strings.TrimSpace(string(r.Status)))
		switch {
		case status == string(models.PickupPending):
			s.PendingRequests++
		case slices.Contains(collectedStatuses, status):
			s.CollectedRequests++
		}
	}

	s.TotalWaste = Round2(s.TotalWaste)
	s.Donated = Round2(s.Donated)
	s.Compost = Round2(s.Compost)
	s.Dropped = Round2(s.Dropped)
	return s
}

type DropAlert struct {
	ID         string             `json:"id"`
	ItemName   string             `json:"itemName"`
	WasteType  models.WasteType   `json:"wasteType"`
	ActionType models.ActionType  `json:"actionType"`
	Status     models.WasteStatus `json:"status"`
	Quantity   float64            `json:"quantity"`
	ExpiryDate time.Time          `json:"expiryDate"`
	DaysLeft   int                `json:"daysLeft"`
}

// calendarDays counts calendar days from today to the expiry date. Expiry
// dates are stored as UTC midnight, so their date is read in UTC; today is
// the date of now in now's own zone.
func calendarDays(expiry, now time.Time) int {
	ny, nm, nd := now.Date()
	ey, em, ed := expiry.UTC().Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	exp := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(math.Round(exp.Sub(today).Hours() / 24))
}

// DaysLeft counts whole calendar days from today to expiry, never below 0.
func DaysLeft(expiry, now time.Time) int {
	return max(calendarDays(expiry, now), 0)
}

// DropAlerts returns entries expiring within the next seven days (already
// expired ones included), skipping dropped entries, soonest first.
func DropAlerts(entries []models.WasteEntry, now time.Time) []DropAlert {
	alerts := make([]DropAlert, 0)
	for _, e := range entries {
		if e.ExpiryDate == nil {
			continue
		}
		if strings.EqualFold(string(e.Status), string(models.WasteDropped)) {
			continue
		}
		if calendarDays(*e.ExpiryDate, now) > dropAlertWindowDays {
			continue
		}
		alerts = append(alerts, DropAlert{
			ID:         e.ID,
			ItemName:   e.ItemName,
			WasteType:  e.WasteType,
			ActionType: e.ActionType,
			Status:     e.Status,
			Quantity:   Round2(e.Quantity),
			ExpiryDate: *e.ExpiryDate,
			DaysLeft:   DaysLeft(*e.ExpiryDate, now),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ExpiryDate.Before(alerts[j].ExpiryDate)
	})
	return alerts
}
