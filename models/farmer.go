package models

import "time"

type Farmer struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FarmerName  string    `json:"farmerName" gorm:"not null;uniqueIndex"`
	PhoneNumber string    `json:"phoneNumber"`
	VillageName string    `json:"villageName"`
	CreatedBy   string    `json:"createdBy"`
	ModifiedBy  string    `json:"modifiedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Vegetable struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	VegetableName string    `json:"vegetableName" gorm:"not null;uniqueIndex"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Group clusters customers (usually by village or route) for reports.
type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GroupName string    `json:"groupName" gorm:"not null;uniqueIndex"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}
