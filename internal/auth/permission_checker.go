package auth

import coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"

type RoleChecker interface {
	HasAnyRole(u *coreuser.User, roles ...coreuser.Role) bool
	IsManager(u *coreuser.User) bool
	IsAdmin(u *coreuser.User) bool
}

type DefaultRoleChecker struct{}

func NewRoleChecker() RoleChecker {
	return &DefaultRoleChecker{}
}

func (c *DefaultRoleChecker) HasAnyRole(u *coreuser.User, roles ...coreuser.Role) bool {
	return u != nil && u.HasRole(roles...)
}

// IsManager covers every reviewer role: manager, partner and admin.
func (c *DefaultRoleChecker) IsManager(u *coreuser.User) bool {
	return c.HasAnyRole(u, coreuser.ReviewerRoles...)
}

func (c *DefaultRoleChecker) IsAdmin(u *coreuser.User) bool {
	return c.HasAnyRole(u, coreuser.RoleAdmin)
}
