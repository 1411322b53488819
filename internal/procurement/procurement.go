package procurement

import (
	"time"

	procurementDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/procurement"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
)

// Record tracks one saree purchase from submission through review. It references
// its saree by id and is reviewed at most once.
type Record struct {
	ID                        string          `json:"id"`
	SareeID                   string          `json:"saree_id"`
	ProcuredByUserID          string          `json:"procured_by_user_id"`
	CostINR                   float64         `json:"cost_inr"`
	INRToUSDExchangeRate      float64         `json:"inr_to_usd_exchange_rate"`
	ProcurementDate           time.Time       `json:"procurement_date"`
	Status                    workflow.Status `json:"status"`
	ReviewedByUserID          *string         `json:"reviewed_by_user_id"`
	ReviewDate                *time.Time      `json:"review_date"`
	ManagerAdditionalCostsINR *float64        `json:"manager_additional_costs_inr"`
	ManagerMarkupOverride     *float64        `json:"manager_markup_override"`
	FinalSellingPriceUSD      *float64        `json:"final_selling_price_usd"`
	ReviewNotes               *string         `json:"review_notes"`
	RejectionReason           *string         `json:"rejection_reason"`
}

func (r *Record) IsPending() bool {
	return r.Status == workflow.StatusPending
}

// AdditionalCostsINR returns the reviewer's extra costs, zero when none were recorded.
func (r *Record) AdditionalCostsINR() float64 {
	if r.ManagerAdditionalCostsINR == nil {
		return 0
	}
	return *r.ManagerAdditionalCostsINR
}

// Review is the single transition a pending record goes through. Nil fields are left untouched.
type Review struct {
	Status               workflow.Status
	ReviewedByUserID     *string
	ReviewDate           time.Time
	ExchangeRate         *float64
	AdditionalCostsINR   *float64
	MarkupOverride       *float64
	FinalSellingPriceUSD *float64
	Notes                *string
	RejectionReason      *string
}

// Fields maps the review onto record columns for a conditional update.
func (rv Review) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"status":      string(rv.Status),
		"review_date": rv.ReviewDate,
	}
	if rv.ReviewedByUserID != nil {
		fields["reviewed_by_user_id"] = *rv.ReviewedByUserID
	}
	if rv.ExchangeRate != nil {
		fields["inr_to_usd_exchange_rate"] = *rv.ExchangeRate
	}
	if rv.AdditionalCostsINR != nil {
		fields["manager_additional_costs_inr"] = *rv.AdditionalCostsINR
	}
	if rv.MarkupOverride != nil {
		fields["manager_markup_override"] = *rv.MarkupOverride
	}
	if rv.FinalSellingPriceUSD != nil {
		fields["final_selling_price_usd"] = *rv.FinalSellingPriceUSD
	}
	if rv.Notes != nil {
		fields["review_notes"] = *rv.Notes
	}
	if rv.RejectionReason != nil {
		fields["rejection_reason"] = *rv.RejectionReason
	}
	return fields
}

// Apply mirrors a persisted review onto the in-memory record.
func (r *Record) Apply(rv Review) {
	reviewDate := rv.ReviewDate
	r.Status = rv.Status
	r.ReviewDate = &reviewDate
	if rv.ReviewedByUserID != nil {
		r.ReviewedByUserID = rv.ReviewedByUserID
	}
	if rv.ExchangeRate != nil {
		r.INRToUSDExchangeRate = *rv.ExchangeRate
	}
	if rv.AdditionalCostsINR != nil {
		r.ManagerAdditionalCostsINR = rv.AdditionalCostsINR
	}
	if rv.MarkupOverride != nil {
		r.ManagerMarkupOverride = rv.MarkupOverride
	}
	if rv.FinalSellingPriceUSD != nil {
		r.FinalSellingPriceUSD = rv.FinalSellingPriceUSD
	}
	if rv.Notes != nil {
		r.ReviewNotes = rv.Notes
	}
	if rv.RejectionReason != nil {
		r.RejectionReason = rv.RejectionReason
	}
}

func ToDataModel(r *Record) *procurementDatamodel.ProcurementRecord {
	return &procurementDatamodel.ProcurementRecord{
		ID:                        r.ID,
		SareeID:                   r.SareeID,
		ProcuredByUserID:          r.ProcuredByUserID,
		CostINR:                   r.CostINR,
		INRToUSDExchangeRate:      r.INRToUSDExchangeRate,
		ProcurementDate:           r.ProcurementDate,
		Status:                    string(r.Status),
		ReviewedByUserID:          r.ReviewedByUserID,
		ReviewDate:                r.ReviewDate,
		ManagerAdditionalCostsINR: r.ManagerAdditionalCostsINR,
		ManagerMarkupOverride:     r.ManagerMarkupOverride,
		FinalSellingPriceUSD:      r.FinalSellingPriceUSD,
		ReviewNotes:               r.ReviewNotes,
		RejectionReason:           r.RejectionReason,
	}
}

func FromDataModel(r *procurementDatamodel.ProcurementRecord) *Record {
	return &Record{
		ID:                        r.ID,
		SareeID:                   r.SareeID,
		ProcuredByUserID:          r.ProcuredByUserID,
		CostINR:                   r.CostINR,
		INRToUSDExchangeRate:      r.INRToUSDExchangeRate,
		ProcurementDate:           r.ProcurementDate,
		Status:                    workflow.Status(r.Status),
		ReviewedByUserID:          r.ReviewedByUserID,
		ReviewDate:                r.ReviewDate,
		ManagerAdditionalCostsINR: r.ManagerAdditionalCostsINR,
		ManagerMarkupOverride:     r.ManagerMarkupOverride,
		FinalSellingPriceUSD:      r.FinalSellingPriceUSD,
		ReviewNotes:               r.ReviewNotes,
		RejectionReason:           r.RejectionReason,
	}
}

func FromDataModels(rows []*procurementDatamodel.ProcurementRecord) []*Record {
	out := make([]*Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
