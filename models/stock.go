package models

import "time"

type PaymentStatus string

const (
	PaymentDue      PaymentStatus = "due"
	PaymentComplete PaymentStatus = "complete"
)

// Stock is one lot of bags brought in by a farmer.
// Invariant: 0 <= RemainingBags <= NumberOfBags.
type Stock struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	LotName       string        `json:"lotName" gorm:"not null;uniqueIndex"`
	NumberOfBags  int           `json:"numberOfBags" gorm:"not null"`
	RemainingBags int           `json:"remainingBags" gorm:"not null"`
	VegetableName string        `json:"vegetableName" gorm:"index"`
	FarmerName    string        `json:"farmerName" gorm:"index"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"type:varchar(20);not null;default:due"`
	Amount        int64         `json:"amount"`
	CreatedBy     string        `json:"createdBy"`
	ModifiedBy    string        `json:"modifiedBy"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// SoldBags is the number of bags already reserved by sales.
func (s Stock) SoldBags() int {
	return s.NumberOfBags - s.RemainingBags
}
