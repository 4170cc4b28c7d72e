package models

import "time"

// Credit ("jamalu") is a payment received against a customer's balance.
// TotalAmount = CreditAmount + Less.
type Credit struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CreditID     string    `json:"creditId" gorm:"column:credit_id;not null;uniqueIndex"`
	CustomerName string    `json:"customerName" gorm:"not null;index"`
	CreditAmount int64     `json:"creditAmount"`
	Less         int64     `json:"less"`
	TotalAmount  int64     `json:"totalAmount"`
	CreatedBy    string    `json:"createdBy"`
	ModifiedBy   string    `json:"modifiedBy"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
