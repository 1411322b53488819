package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	userDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/store"
	"github.com/frahmantamala/couture-bookkeeping/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	table *store.Table[userDatamodel.User]
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{table: store.NewTable[userDatamodel.User](db, "created_at ASC")}
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	if err := r.table.Put(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrEmailAlreadyRegistered
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	u, err := r.table.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, internal.ErrUserNotFound
	}
	return u, err
}

// GetByEmail reads through the unique email index.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	u, err := r.table.GetByIndex(ctx, "email", email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, internal.ErrUserNotFound
	}
	return u, err
}
