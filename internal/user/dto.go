package user

import (
	"strings"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/common/validation"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
)

const (
	MinPasswordLength = 8
	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
)

type RegisterDTO struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
	Role     string  `json:"role,omitempty"`
}

func (d RegisterDTO) Validate() error {
	roles := make([]string, len(coreuser.Roles))
	for i, r := range coreuser.Roles {
		roles[i] = string(r)
	}

	v := validation.NewValidator()
	v.Field("email", strings.TrimSpace(d.Email)).Required().Email()
	v.Field("password", d.Password).Required().MinLength(MinPasswordLength).MaxLength(MaxPasswordLength)
	v.Field("role", d.Role).OneOf(roles, internal.ErrCodeInvalidRole)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
