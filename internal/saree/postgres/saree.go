package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	sareeDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/saree"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/store"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
	"github.com/frahmantamala/couture-bookkeeping/internal/saree"
	"gorm.io/gorm"
)

type SareeRepository struct {
	table *store.Table[sareeDatamodel.Saree]
}

func NewSareeRepository(db *gorm.DB) saree.RepositoryAPI {
	return &SareeRepository{table: store.NewTable[sareeDatamodel.Saree](db, "created_at ASC")}
}

func (r *SareeRepository) Create(ctx context.Context, s *sareeDatamodel.Saree) error {
	return r.table.Put(ctx, s)
}

func (r *SareeRepository) GetByID(ctx context.Context, id string) (*sareeDatamodel.Saree, error) {
	s, err := r.table.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, internal.ErrSareeNotFound
	}
	return s, err
}

func (r *SareeRepository) List(ctx context.Context) ([]*sareeDatamodel.Saree, error) {
	return r.table.Scan(ctx)
}

// ApplyReview records the review outcome. The selling price is written even when nil
// so a rejected saree never keeps a stale price.
func (r *SareeRepository) ApplyReview(ctx context.Context, id string, status workflow.Status, sellingPriceUSD *float64) error {
	err := r.table.Update(ctx, id, map[string]interface{}{
		"procurement_status": string(status),
		"selling_price_usd":  sellingPriceUSD,
	})
	if errors.Is(err, store.ErrNotFound) {
		return internal.ErrSareeNotFound
	}
	return err
}
