package auth

import (
	"context"
	"time"

	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const userContextKey ctxKey = "auth_user"

// ContextWithUser stores the authenticated principal for downstream handlers.
func ContextWithUser(ctx context.Context, u *coreuser.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

func UserFromContext(ctx context.Context) (*coreuser.User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(userContextKey).(*coreuser.User)
	return u, ok && u != nil
}

// TokenGenerator issues and verifies bearer tokens.
type TokenGenerator interface {
	GenerateAccessToken(u *coreuser.User) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	TTL() time.Duration
}

// AuthService performs authentication-related business logic.
type AuthService interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*TokenResponse, error)
	ResolveUser(ctx context.Context, token string) (*coreuser.User, error)
}

// Claims carries the email as the registered subject. Role is informational only;
// authorization always reads the role from the stored user.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}
