package user

import (
	"strings"

	userDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
)

// NormalizeEmail is applied before every write and lookup so the unique index is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ToDataModel(u *coreuser.User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:             u.ID,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		FullName:       u.FullName,
		Role:           string(u.Role),
		CreatedAt:      u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *coreuser.User {
	return &coreuser.User{
		ID:             u.ID,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		FullName:       u.FullName,
		Role:           coreuser.Role(u.Role),
		CreatedAt:      u.CreatedAt,
	}
}
