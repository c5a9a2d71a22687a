// Package demo holds the fixed demo organisations and accounts. Login falls
// back to Users when the persistent store has no match, and the seed command
// writes the same rows so demo sessions resolve against real records.
package demo

import "foodloop-backend/internal/models"

const (
	CafeID    = "7d1f3c2a-0000-4000-8000-000000000001"
	CharityID = "7d1f3c2a-0000-4000-8000-000000000002"
	FarmID    = "7d1f3c2a-0000-4000-8000-000000000003"
)

type User struct {
	ID       string
	Email    string
	Password string
	Name     string
	Role     models.UserRole
	Business models.Business
}

var Businesses = []models.Business{
	{ID: CafeID, Name: "Green Bean Cafe", Type: models.BusinessCafe, Address: "12 Market Street", Email: "hello@greenbean.demo"},
	{ID: CharityID, Name: "City Food Bank", Type: models.BusinessNGO, Address: "4 Harbour Road", Email: "team@cityfoodbank.demo"},
	{ID: FarmID, Name: "Sunrise Farm", Type: models.BusinessFarm, Address: "Old Mill Lane", Email: "farm@sunrise.demo"},
}

var Users = []User{
	{ID: "7d1f3c2a-0000-4000-8000-0000000000a1", Email: "admin@foodloop.demo", Password: "admin123", Name: "Alex Admin", Role: models.RoleAdmin, Business: Businesses[0]},
	{ID: "7d1f3c2a-0000-4000-8000-0000000000a2", Email: "staff@foodloop.demo", Password: "staff123", Name: "Sam Staff", Role: models.RoleStaff, Business: Businesses[0]},
	{ID: "7d1f3c2a-0000-4000-8000-0000000000a3", Email: "charity@foodloop.demo", Password: "charity123", Name: "Casey Charity", Role: models.RolePartner, Business: Businesses[1]},
	{ID: "7d1f3c2a-0000-4000-8000-0000000000a4", Email: "farmer@foodloop.demo", Password: "farmer123", Name: "Frankie Farmer", Role: models.RolePartner, Business: Businesses[2]},
}

// Lookup finds a demo account by lower-cased email.
func Lookup(email string) (User, bool) {
	for _, u := range Users {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}
