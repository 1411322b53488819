package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	procurementDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/procurement"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/store"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
	"github.com/frahmantamala/couture-bookkeeping/internal/procurement"
	"gorm.io/gorm"
)

type ProcurementRepository struct {
	table *store.Table[procurementDatamodel.ProcurementRecord]
}

func NewProcurementRepository(db *gorm.DB) procurement.RepositoryAPI {
	return &ProcurementRepository{
		table: store.NewTable[procurementDatamodel.ProcurementRecord](db, "procurement_date DESC"),
	}
}

func (r *ProcurementRepository) Create(ctx context.Context, p *procurementDatamodel.ProcurementRecord) error {
	return r.table.Put(ctx, p)
}

func (r *ProcurementRepository) GetByID(ctx context.Context, id string) (*procurementDatamodel.ProcurementRecord, error) {
	p, err := r.table.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, internal.ErrProcurementNotFound
	}
	return p, err
}

func (r *ProcurementRepository) List(ctx context.Context) ([]*procurementDatamodel.ProcurementRecord, error) {
	return r.table.Scan(ctx)
}

func (r *ProcurementRepository) ListByStatus(ctx context.Context, status workflow.Status) ([]*procurementDatamodel.ProcurementRecord, error) {
	return r.table.QueryByIndex(ctx, "status", string(status))
}

// Transition writes the review only while the row is still in from.
func (r *ProcurementRepository) Transition(ctx context.Context, id string, from workflow.Status, review procurement.Review) (bool, error) {
	return r.table.UpdateIf(ctx, id, store.Condition{Column: "status", Value: string(from)}, review.Fields())
}
