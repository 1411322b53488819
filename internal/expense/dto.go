package expense

import (
	"strings"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/common/validation"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/pricing"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
)

type SubmitDTO struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// Normalize fills the defaults for omitted currency and category and rounds the
// amount to cents, so validation sees the value that gets stored.
func (d *SubmitDTO) Normalize() {
	d.Description = strings.TrimSpace(d.Description)
	d.Amount = pricing.Round(d.Amount)
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	d.Category = strings.TrimSpace(d.Category)
	if d.Category == "" {
		d.Category = CategoryGeneral
	}
}

func (d SubmitDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("description", d.Description).Required().MaxLength(500)
	v.Field("amount", d.Amount).Positive(internal.ErrCodeInvalidAmount)
	v.Field("currency", d.Currency).MaxLength(3)
	v.Field("category", d.Category).MaxLength(100)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type StatusUpdateDTO struct {
	Status string `json:"status"`
}

func (d StatusUpdateDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(workflow.StatusNames(), internal.ErrCodeInvalidExpenseStatus)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
