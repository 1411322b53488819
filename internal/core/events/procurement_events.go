package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeProcurementSubmitted = "procurement.submitted"
	EventTypeProcurementApproved  = "procurement.approved"
	EventTypeProcurementRejected  = "procurement.rejected"
)

type ProcurementSubmittedEvent struct {
	BaseEvent
	ProcurementID    string  `json:"procurement_id"`
	SareeID          string  `json:"saree_id"`
	ProcuredByUserID string  `json:"procured_by_user_id"`
	CostINR          float64 `json:"cost_inr"`
}

func NewProcurementSubmittedEvent(procurementID, sareeID, procuredBy string, costINR float64) *ProcurementSubmittedEvent {
	return &ProcurementSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeProcurementSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"procurement_id":      procurementID,
				"saree_id":            sareeID,
				"procured_by_user_id": procuredBy,
				"cost_inr":            costINR,
			},
		},
		ProcurementID:    procurementID,
		SareeID:          sareeID,
		ProcuredByUserID: procuredBy,
		CostINR:          costINR,
	}
}

// ProcurementApprovedEvent carries what downstream modules need to book the
// manager's additional costs against the approval.
type ProcurementApprovedEvent struct {
	BaseEvent
	ProcurementID        string  `json:"procurement_id"`
	SareeID              string  `json:"saree_id"`
	SareeName            string  `json:"saree_name"`
	ApprovedByUserID     string  `json:"approved_by_user_id"`
	AdditionalCostsINR   float64 `json:"additional_costs_inr"`
	ExchangeRate         float64 `json:"exchange_rate"`
	FinalSellingPriceUSD float64 `json:"final_selling_price_usd"`
}

func NewProcurementApprovedEvent(procurementID, sareeID, sareeName, approvedBy string, additionalCostsINR, exchangeRate, finalPriceUSD float64) *ProcurementApprovedEvent {
	return &ProcurementApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeProcurementApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"procurement_id":          procurementID,
				"saree_id":                sareeID,
				"saree_name":              sareeName,
				"approved_by_user_id":     approvedBy,
				"additional_costs_inr":    additionalCostsINR,
				"exchange_rate":           exchangeRate,
				"final_selling_price_usd": finalPriceUSD,
			},
		},
		ProcurementID:        procurementID,
		SareeID:              sareeID,
		SareeName:            sareeName,
		ApprovedByUserID:     approvedBy,
		AdditionalCostsINR:   additionalCostsINR,
		ExchangeRate:         exchangeRate,
		FinalSellingPriceUSD: finalPriceUSD,
	}
}

type ProcurementRejectedEvent struct {
	BaseEvent
	ProcurementID    string `json:"procurement_id"`
	SareeID          string `json:"saree_id"`
	RejectedByUserID string `json:"rejected_by_user_id"`
	Reason           string `json:"reason,omitempty"`
}

func NewProcurementRejectedEvent(procurementID, sareeID, rejectedBy, reason string) *ProcurementRejectedEvent {
	return &ProcurementRejectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeProcurementRejected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"procurement_id":      procurementID,
				"saree_id":            sareeID,
				"rejected_by_user_id": rejectedBy,
				"reason":              reason,
			},
		},
		ProcurementID:    procurementID,
		SareeID:          sareeID,
		RejectedByUserID: rejectedBy,
		Reason:           reason,
	}
}
