package expense

import "time"

type Expense struct {
	ID                string     `gorm:"column:id;primaryKey"`
	Description       string     `gorm:"column:description;not null"`
	Amount            float64    `gorm:"column:amount;not null"`
	Currency          string     `gorm:"column:currency;not null;default:USD"`
	Category          string     `gorm:"column:category;not null;default:general"`
	SubmittedByUserID string     `gorm:"column:submitted_by_user_id;not null"`
	SubmissionDate    time.Time  `gorm:"column:submission_date;not null"`
	Status            string     `gorm:"column:status;not null;default:pending"`
	ReviewedByUserID  *string    `gorm:"column:reviewed_by_user_id"`
	ReviewDate        *time.Time `gorm:"column:review_date"`
	ProcurementID     *string    `gorm:"column:procurement_id;uniqueIndex"`
}

func (Expense) TableName() string {
	return "expenses"
}
