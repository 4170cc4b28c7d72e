package services

import (
	"context"
	"strings"

	"mandi-backend/models"
	"mandi-backend/utils"

	"gorm.io/gorm"
)

type NewCustomer struct {
	CustomerName string
	PhoneNumber  string
	VillageName  string
	GroupName    string
	CreatedBy    string
}

// CreateCustomer adds a customer with a zero balance.
func (e *Engine) CreateCustomer(ctx context.Context, in NewCustomer) (*models.Customer, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if in.CustomerName == "" {
		return nil, validationError("customerName is required")
	}
	c := models.Customer{
		CustomerName: in.CustomerName,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		VillageName:  strings.TrimSpace(in.VillageName),
		GroupName:    strings.TrimSpace(in.GroupName),
		Balance:      0,
		CreatedBy:    in.CreatedBy,
		ModifiedBy:   in.CreatedBy,
	}
	err := e.atomically(ctx, "create customer", []string{customerKey(c.CustomerName)}, func(tx *gorm.DB) error {
		return tx.Create(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type CustomerUpdate struct {
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	VillageName *string `json:"villageName,omitempty"`
	GroupName   *string `json:"groupName,omitempty"`

	CustomerName *string `json:"customerName,omitempty"`
	Balance      *int64  `json:"balance,omitempty"`

	ModifiedBy string `json:"modifiedBy"`
}

var customerColumns = map[string]string{
	"phoneNumber": "phone_number",
	"villageName": "village_name",
	"groupName":   "group_name",
}

// UpdateCustomer changes contact fields and files a CustomerHistory record.
// The balance can only move through sales and credits.
func (e *Engine) UpdateCustomer(ctx context.Context, customerName string, u CustomerUpdate) (*models.Customer, error) {
	customerName = strings.TrimSpace(customerName)
	if u.Balance != nil {
		return nil, businessRule("balance can only change through sales and credits")
	}
	u.ModifiedBy = strings.TrimSpace(u.ModifiedBy)
	if u.ModifiedBy == "" {
		return nil, validationError("modifiedBy is required")
	}

	var out models.Customer
	err := e.atomically(ctx, "update customer", []string{customerKey(customerName)}, func(tx *gorm.DB) error {
		c, err := loadCustomer(tx, customerName)
		if err != nil {
			return err
		}
		if err := unchanged("customerName", u.CustomerName, c.CustomerName); err != nil {
			return err
		}

		payload := utils.Patch(&u)
		payload["modifiedBy"] = u.ModifiedBy
		if err := e.audit.Record(tx, models.HistoryCustomer, c.CustomerName, c, payload, u.ModifiedBy); err != nil {
			return err
		}

		cols := utils.PatchColumns(&u, customerColumns)
		cols["modified_by"] = u.ModifiedBy
		if err := tx.Model(&models.Customer{}).Where("id = ?", c.ID).Updates(cols).Error; err != nil {
			return err
		}
		reloaded, err := loadCustomer(tx, customerName)
		if err != nil {
			return err
		}
		out = *reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCustomer removes the customer record. Ledger entries, sales and
// credits that name the customer are kept as they are.
func (e *Engine) DeleteCustomer(ctx context.Context, customerName string) error {
	return e.atomically(ctx, "delete customer", []string{customerKey(customerName)}, func(tx *gorm.DB) error {
		c, err := loadCustomer(tx, customerName)
		if err != nil {
			return err
		}
		return tx.Delete(c).Error
	})
}
