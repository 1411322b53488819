package procurement

import (
	"strings"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/common/validation"
)

// SubmitDTO is the body of POST /procurements and of the deprecated legacy endpoint.
type SubmitDTO struct {
	SareeName          string   `json:"saree_name"`
	SareeDescription   *string  `json:"saree_description,omitempty"`
	ProcurementCostINR float64  `json:"procurement_cost_inr"`
	MarkupPercentage   *float64 `json:"markup_percentage,omitempty"`
	ImageURLs          []string `json:"image_urls,omitempty"`
}

func (d SubmitDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("saree_name", strings.TrimSpace(d.SareeName)).Required().MaxLength(200)
	v.Field("procurement_cost_inr", d.ProcurementCostINR).Positive(internal.ErrCodeInvalidCost)
	v.Field("markup_percentage", d.MarkupPercentage).NonNegative(internal.ErrCodeInvalidMarkup)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ApproveDTO carries the reviewer's adjustments. Every field is optional.
type ApproveDTO struct {
	AdditionalCostsINR   *float64 `json:"additional_costs_inr,omitempty"`
	MarkupOverride       *float64 `json:"markup_override,omitempty"`
	ExchangeRateOverride *float64 `json:"exchange_rate_override,omitempty"`
	Notes                *string  `json:"notes,omitempty"`
}

func (d ApproveDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("additional_costs_inr", d.AdditionalCostsINR).NonNegative(internal.ErrCodeInvalidAmount)
	v.Field("markup_override", d.MarkupOverride).NonNegative(internal.ErrCodeInvalidMarkup)
	v.Field("exchange_rate_override", d.ExchangeRateOverride).Positive(internal.ErrCodeInvalidRate)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RejectDTO struct {
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

type PendingResponse struct {
	PendingProcurements []*Record `json:"pending_procurements"`
}

// ReconcileReport summarises a reconciliation pass over every procurement record.
type ReconcileReport struct {
	Checked          int      `json:"checked"`
	RepairedSarees   []string `json:"repaired_sarees"`
	ReplayedExpenses []string `json:"replayed_expenses"`
	MissingSarees    []string `json:"missing_sarees"`
	OrphanSarees     []string `json:"orphan_sarees"`
}
