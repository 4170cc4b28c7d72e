package models

import "time"

// Customer is a buyer with a running credit balance. Balance is positive when
// the customer owes money and is only ever written by the balance ledger.
type Customer struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CustomerName string    `json:"customerName" gorm:"not null;uniqueIndex"`
	PhoneNumber  string    `json:"phoneNumber"`
	VillageName  string    `json:"villageName"`
	GroupName    string    `json:"groupName" gorm:"index"`
	Balance      int64     `json:"balance" gorm:"not null;default:0"`
	CreatedBy    string    `json:"createdBy"`
	ModifiedBy   string    `json:"modifiedBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
