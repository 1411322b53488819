package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	userDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	Create(ctx context.Context, u *userDatamodel.User) error
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a user with a bcrypt hash of the password. Conflict when the email is taken.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*coreuser.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := NormalizeEmail(dto.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		s.logger.Warn("registration rejected: email already registered", "email", email)
		return nil, internal.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, internal.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := coreuser.RoleStaff
	if dto.Role != "" {
		role = coreuser.Role(dto.Role)
	}

	u := &coreuser.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: string(hash),
		FullName:       dto.FullName,
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, ToDataModel(u)); err != nil {
		if errors.Is(err, internal.ErrEmailAlreadyRegistered) {
			return nil, err
		}
		s.logger.Error("failed to create user", "error", err, "email", email)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "email", u.Email, "role", u.Role)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*coreuser.User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*coreuser.User, error) {
	row, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}
