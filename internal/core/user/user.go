package user

import "time"

type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

var Roles = []Role{RoleStaff, RoleManager, RolePartner, RoleAdmin}

// ReviewerRoles may review procurements and expenses.
var ReviewerRoles = []Role{RoleManager, RolePartner, RoleAdmin}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User is the authenticated principal shared by the auth, user and workflow packages.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       *string   `json:"full_name"`
	Role           Role      `json:"role"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// IsManager reports manager-level access: any role other than staff.
func (u *User) IsManager() bool {
	return u.HasRole(ReviewerRoles...)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
