package saree

import (
	"time"

	sareeDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/saree"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
)

// Saree is a sellable catalog item. SellingPriceUSD stays nil until its procurement is approved.
type Saree struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        *string         `json:"description"`
	ProcurementCostINR float64         `json:"procurement_cost_inr"`
	MarkupPercentage   float64         `json:"markup_percentage"`
	SellingPriceUSD    *float64        `json:"selling_price_usd"`
	ImageURLs          []string        `json:"image_urls"`
	ProcurementStatus  workflow.Status `json:"procurement_status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (s *Saree) IsApproved() bool {
	return s.ProcurementStatus == workflow.StatusApproved
}

func ToDataModel(s *Saree) *sareeDatamodel.Saree {
	imageURLs := s.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return &sareeDatamodel.Saree{
		ID:                 s.ID,
		Name:               s.Name,
		Description:        s.Description,
		ProcurementCostINR: s.ProcurementCostINR,
		MarkupPercentage:   s.MarkupPercentage,
		SellingPriceUSD:    s.SellingPriceUSD,
		ImageURLs:          imageURLs,
		ProcurementStatus:  string(s.ProcurementStatus),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func FromDataModel(s *sareeDatamodel.Saree) *Saree {
	imageURLs := s.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return &Saree{
		ID:                 s.ID,
		Name:               s.Name,
		Description:        s.Description,
		ProcurementCostINR: s.ProcurementCostINR,
		MarkupPercentage:   s.MarkupPercentage,
		SellingPriceUSD:    s.SellingPriceUSD,
		ImageURLs:          imageURLs,
		ProcurementStatus:  workflow.Status(s.ProcurementStatus),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func FromDataModels(rows []*sareeDatamodel.Saree) []*Saree {
	out := make([]*Saree, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
