package auth

import "foodloop-backend/internal/models"

// Identity is the acting user as resolved for one request.
type Identity struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	Name         string              `json:"name,omitempty"`
	Role         models.UserRole     `json:"role"`
	BusinessID   *string             `json:"businessId"`
	BusinessType models.BusinessType `json:"businessType,omitempty"`
	BusinessName string              `json:"businessName,omitempty"`
}

func IdentityFromUser(u *models.User) *Identity {
	id := &Identity{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		BusinessID: u.BusinessID,
	}
	if u.Business != nil {
		id.BusinessType = u.Business.Type
		id.BusinessName = u.Business.Name
	}
	return id
}

// DisplayName is what activity logs show for this user.
func (i *Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

// Business returns the assigned business id or "".
func (i *Identity) Business() string {
	if i == nil || i.BusinessID == nil {
		return ""
	}
	return *i.BusinessID
}

func (i *Identity) SetBusiness(b *models.Business) {
	id := b.ID
	i.BusinessID = &id
	i.BusinessType = b.Type
	i.BusinessName = b.Name
}

// FrontendRole maps a stored role to the role names the dashboard uses.
func FrontendRole(role models.UserRole, businessType models.BusinessType) string {
	switch role {
	case models.RoleAdmin:
		return "admin"
	case models.RoleStaff:
		return "staff"
	case models.RolePartner:
		switch businessType {
		case models.BusinessNGO:
			return "charity"
		case models.BusinessFarm:
			return "farmer"
		}
		return "staff"
	}
	return "staff"
}

func (i *Identity) FrontendRole() string {
	return FrontendRole(i.Role, i.BusinessType)
}
