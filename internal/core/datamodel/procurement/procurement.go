package procurement

import "time"

type ProcurementRecord struct {
	ID                        string     `gorm:"column:id;primaryKey"`
	SareeID                   string     `gorm:"column:saree_id;index;not null"`
	ProcuredByUserID          string     `gorm:"column:procured_by_user_id;not null"`
	CostINR                   float64    `gorm:"column:cost_inr;not null"`
	INRToUSDExchangeRate      float64    `gorm:"column:inr_to_usd_exchange_rate;not null"`
	ProcurementDate           time.Time  `gorm:"column:procurement_date;not null"`
	Status                    string     `gorm:"column:status;index;not null;default:pending"`
	ReviewedByUserID          *string    `gorm:"column:reviewed_by_user_id"`
	ReviewDate                *time.Time `gorm:"column:review_date"`
	ManagerAdditionalCostsINR *float64   `gorm:"column:manager_additional_costs_inr"`
	ManagerMarkupOverride     *float64   `gorm:"column:manager_markup_override"`
	FinalSellingPriceUSD      *float64   `gorm:"column:final_selling_price_usd"`
	ReviewNotes               *string    `gorm:"column:review_notes"`
	RejectionReason           *string    `gorm:"column:rejection_reason"`
}

func (ProcurementRecord) TableName() string {
	return "procurement_records"
}
