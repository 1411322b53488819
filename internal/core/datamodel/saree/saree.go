package saree

import "time"

type Saree struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	Name               string    `gorm:"column:name;not null"`
	Description        *string   `gorm:"column:description"`
	ProcurementCostINR float64   `gorm:"column:procurement_cost_inr;not null"`
	MarkupPercentage   float64   `gorm:"column:markup_percentage;not null"`
	SellingPriceUSD    *float64  `gorm:"column:selling_price_usd"`
	ImageURLs          []string  `gorm:"column:image_urls;type:text;serializer:json"`
	ProcurementStatus  string    `gorm:"column:procurement_status;not null;default:pending"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Saree) TableName() string {
	return "sarees"
}
