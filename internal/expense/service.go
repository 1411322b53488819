package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	expenseDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/expense"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/metrics"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/pricing"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	Create(ctx context.Context, e *expenseDatamodel.Expense) error
	GetByID(ctx context.Context, id string) (*expenseDatamodel.Expense, error)
	// GetByProcurementID returns ErrExpenseNotFound when the procurement has no expense yet.
	GetByProcurementID(ctx context.Context, procurementID string) (*expenseDatamodel.Expense, error)
	List(ctx context.Context) ([]*expenseDatamodel.Expense, error)
	UpdateStatus(ctx context.Context, id string, status workflow.Status, reviewerID string, reviewDate time.Time) error
}

// ProcurementCost is the additional spend a reviewer booked while approving a procurement.
type ProcurementCost struct {
	ProcurementID      string
	SareeName          string
	ReviewerID         string
	AdditionalCostsINR float64
	ExchangeRate       float64
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Submit(ctx context.Context, dto SubmitDTO, submitter *coreuser.User) (*Expense, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		s.logger.Warn("expense validation failed", "error", err, "user_id", submitter.ID)
		return nil, err
	}

	e := &Expense{
		ID:                uuid.NewString(),
		Description:       dto.Description,
		Amount:            dto.Amount,
		Currency:          dto.Currency,
		Category:          dto.Category,
		SubmittedByUserID: submitter.ID,
		SubmissionDate:    time.Now().UTC(),
		Status:            workflow.StatusPending,
	}

	if err := s.repo.Create(ctx, ToDataModel(e)); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", submitter.ID)
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.logger.Info("expense submitted",
		"expense_id", e.ID,
		"user_id", submitter.ID,
		"amount", e.Amount,
		"currency", e.Currency,
		"category", e.Category)

	return e, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*Expense, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err)
		return nil, err
	}
	return FromDataModels(rows), nil
}

// HasProcurementExpense reports whether the procurement's additional costs are already booked.
func (s *Service) HasProcurementExpense(ctx context.Context, procurementID string) (bool, error) {
	_, err := s.repo.GetByProcurementID(ctx, procurementID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, internal.ErrExpenseNotFound):
		return false, nil
	default:
		return false, err
	}
}

// UpdateStatus moves an expense to any known status and stamps the reviewer.
func (s *Service) UpdateStatus(ctx context.Context, id string, dto StatusUpdateDTO, reviewer *coreuser.User) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := workflow.Status(dto.Status)
	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, status, reviewer.ID, now); err != nil {
		s.logger.Error("failed to update expense status", "error", err, "expense_id", id)
		return nil, err
	}

	e := FromDataModel(row)
	previous := e.Status
	reviewerID := reviewer.ID
	e.Status = status
	e.ReviewedByUserID = &reviewerID
	e.ReviewDate = &now

	s.logger.Info("expense status updated",
		"expense_id", id,
		"from", previous,
		"to", status,
		"reviewer_id", reviewerID)

	return e, nil
}

// RecordProcurementCost books the additional costs of an approved procurement as an
// approved USD expense. At most one expense exists per procurement; a repeat call
// returns the existing one.
func (s *Service) RecordProcurementCost(ctx context.Context, cost ProcurementCost) (*Expense, error) {
	existing, err := s.repo.GetByProcurementID(ctx, cost.ProcurementID)
	if err == nil {
		s.logger.Info("procurement expense already recorded",
			"procurement_id", cost.ProcurementID,
			"expense_id", existing.ID)
		return FromDataModel(existing), nil
	}
	if !errors.Is(err, internal.ErrExpenseNotFound) {
		return nil, fmt.Errorf("failed to look up procurement expense: %w", err)
	}

	amount := pricing.ConvertINR(cost.AdditionalCostsINR, cost.ExchangeRate)
	if amount <= 0 {
		s.logger.Warn("procurement costs round to zero", "procurement_id", cost.ProcurementID, "additional_costs_inr", cost.AdditionalCostsINR)
		return nil, internal.NewValidationFieldError("additional_costs_inr", "additional_costs_inr converts to less than one cent", internal.ErrCodeInvalidAmount)
	}

	now := time.Now().UTC()
	procurementID := cost.ProcurementID
	reviewerID := cost.ReviewerID
	e := &Expense{
		ID:                uuid.NewString(),
		Description:       fmt.Sprintf("Additional procurement costs for %s", cost.SareeName),
		Amount:            amount,
		Currency:          DefaultCurrency,
		Category:          CategoryProcurementRelated,
		SubmittedByUserID: reviewerID,
		SubmissionDate:    now,
		Status:            workflow.StatusApproved,
		ReviewedByUserID:  &reviewerID,
		ReviewDate:        &now,
		ProcurementID:     &procurementID,
	}

	if err := s.repo.Create(ctx, ToDataModel(e)); err != nil {
		if errors.Is(err, internal.ErrExpenseAlreadyRecorded) {
			row, getErr := s.repo.GetByProcurementID(ctx, procurementID)
			if getErr != nil {
				return nil, getErr
			}
			return FromDataModel(row), nil
		}
		s.logger.Error("failed to record procurement expense", "error", err, "procurement_id", procurementID)
		return nil, fmt.Errorf("failed to record procurement expense: %w", err)
	}

	metrics.RecordSynthesizedExpense()
	s.logger.Info("procurement expense recorded",
		"expense_id", e.ID,
		"procurement_id", procurementID,
		"amount", e.Amount,
		"reviewer_id", reviewerID)

	return e, nil
}
