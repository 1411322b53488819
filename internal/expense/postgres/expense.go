package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	expenseDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/expense"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/store"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
	"github.com/frahmantamala/couture-bookkeeping/internal/expense"
	"gorm.io/gorm"
)

// ExpenseRepository implements expense.RepositoryAPI over the expenses table.
type ExpenseRepository struct {
	table *store.Table[expenseDatamodel.Expense]
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{table: store.NewTable[expenseDatamodel.Expense](db, "submission_date DESC")}
}

// Create maps a second expense for the same procurement to ErrExpenseAlreadyRecorded.
func (r *ExpenseRepository) Create(ctx context.Context, e *expenseDatamodel.Expense) error {
	if err := r.table.Put(ctx, e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && e.ProcurementID != nil {
			return internal.ErrExpenseAlreadyRecorded
		}
		return err
	}
	return nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*expenseDatamodel.Expense, error) {
	e, err := r.table.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, internal.ErrExpenseNotFound
	}
	return e, err
}

func (r *ExpenseRepository) GetByProcurementID(ctx context.Context, procurementID string) (*expenseDatamodel.Expense, error) {
	e, err := r.table.GetByIndex(ctx, "procurement_id", procurementID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, internal.ErrExpenseNotFound
	}
	return e, err
}

func (r *ExpenseRepository) List(ctx context.Context) ([]*expenseDatamodel.Expense, error) {
	return r.table.Scan(ctx)
}

func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id string, status workflow.Status, reviewerID string, reviewDate time.Time) error {
	err := r.table.Update(ctx, id, map[string]interface{}{
		"status":              string(status),
		"reviewed_by_user_id": reviewerID,
		"review_date":         reviewDate,
	})
	if errors.Is(err, store.ErrNotFound) {
		return internal.ErrExpenseNotFound
	}
	return err
}
