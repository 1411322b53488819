package auth

import (
	"strings"

	"github.com/frahmantamala/couture-bookkeeping/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
// Form logins send the email in the username field.
type LoginDTO struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identifier returns the email the caller logs in with.
func (d LoginDTO) Identifier() string {
	if strings.TrimSpace(d.Email) != "" {
		return strings.ToLower(strings.TrimSpace(d.Email))
	}
	return strings.ToLower(strings.TrimSpace(d.Username))
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", d.Identifier()).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
