package expense

import (
	"time"

	expenseDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/expense"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
)

const (
	CategoryGeneral            = "general"
	CategoryProcurementRelated = "procurement_related"

	DefaultCurrency = "USD"
)

type Expense struct {
	ID                string          `json:"id"`
	Description       string          `json:"description"`
	Amount            float64         `json:"amount"`
	Currency          string          `json:"currency"`
	Category          string          `json:"category"`
	SubmittedByUserID string          `json:"submitted_by_user_id"`
	SubmissionDate    time.Time       `json:"submission_date"`
	Status            workflow.Status `json:"status"`
	ReviewedByUserID  *string         `json:"reviewed_by_user_id"`
	ReviewDate        *time.Time      `json:"review_date"`
	ProcurementID     *string         `json:"procurement_id,omitempty"`
}

// IsSynthesized reports whether the expense was booked by a procurement approval
// rather than submitted by a user.
func (e *Expense) IsSynthesized() bool {
	return e.ProcurementID != nil
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:                e.ID,
		Description:       e.Description,
		Amount:            e.Amount,
		Currency:          e.Currency,
		Category:          e.Category,
		SubmittedByUserID: e.SubmittedByUserID,
		SubmissionDate:    e.SubmissionDate,
		Status:            string(e.Status),
		ReviewedByUserID:  e.ReviewedByUserID,
		ReviewDate:        e.ReviewDate,
		ProcurementID:     e.ProcurementID,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:                e.ID,
		Description:       e.Description,
		Amount:            e.Amount,
		Currency:          e.Currency,
		Category:          e.Category,
		SubmittedByUserID: e.SubmittedByUserID,
		SubmissionDate:    e.SubmissionDate,
		Status:            workflow.Status(e.Status),
		ReviewedByUserID:  e.ReviewedByUserID,
		ReviewDate:        e.ReviewDate,
		ProcurementID:     e.ProcurementID,
	}
}

func FromDataModels(rows []*expenseDatamodel.Expense) []*Expense {
	out := make([]*Expense, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
