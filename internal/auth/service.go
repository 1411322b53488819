package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserLookup resolves users by their unique email. Implemented by the user service.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*coreuser.User, error)
}

// Service is the main auth service with dependencies
type Service struct {
	users          UserLookup
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(users UserLookup, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates an HS256 generator. A zero ttl means the 30 minute default.
func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl == 0 {
		ttl = internal.DefaultAccessTokenDuration
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
	}
}

// Authenticate validates credentials and returns a bearer token.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := dto.Identifier()
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Warn("login failed: unknown email", "email", email)
			return nil, internal.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(dto.Password)); err != nil {
		s.logger.Warn("login failed: password mismatch", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}

	token, err := s.tokenGenerator.GenerateAccessToken(u)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("user authenticated", "user_id", u.ID, "role", u.Role)
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokenGenerator.TTL().Seconds()),
	}, nil
}

// ResolveUser verifies the token and loads the user named by its subject.
func (s *Service) ResolveUser(ctx context.Context, token string) (*coreuser.User, error) {
	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, internal.ErrInvalidToken
	}

	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Warn("token subject does not resolve to a user", "subject", claims.Subject)
			return nil, internal.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (j *JWTTokenGenerator) TTL() time.Duration {
	return j.AccessTokenTTL
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(u *coreuser.User) (string, error) {
	now := time.Now()

	claims := &Claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   u.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
