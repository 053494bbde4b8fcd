package domain

import "time"

const DefaultPaymentMethod = "CASH"

// Payment applies an amount to exactly one fee.
type Payment struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	FeeID       int64     `json:"fee_id" gorm:"not null;index"`
	UserID      *int64    `json:"user_id" gorm:"index"`
	PaymentDate time.Time `json:"payment_date" gorm:"not null"`
	Amount      float64   `json:"amount" gorm:"type:decimal(14,2);not null"`
	Method      string    `json:"method" gorm:"type:varchar(32);not null;default:CASH"`
	Note        *string   `json:"note" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Payment) TableName() string { return "payments" }
