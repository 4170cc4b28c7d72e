package services

import (
	"errors"
	"time"

	"mandi-backend/models"

	"gorm.io/gorm"
)

// BalanceLedger owns every write to Customer.Balance. Each change either
// appends a CustomerLedger entry (Apply) or removes the entry of a reversed
// event (Revert), so balance == sum of SignedAmount over the customer's
// entries holds at all times.
//
// All methods run inside the caller's transaction and expect the caller to
// hold the customer lock.
type BalanceLedger struct {
	now func() time.Time
}

// Delta describes one balance-affecting event.
type Delta struct {
	CustomerName string
	Type         models.LedgerType
	ReferenceID  string
	Amount       int64 // unsigned; Type gives the direction
	Actor        string
}

func (d Delta) validate() error {
	if d.CustomerName == "" {
		return validationError("customerName is required")
	}
	if !d.Type.Valid() {
		return validationError("unknown ledger type %q", d.Type)
	}
	if d.ReferenceID == "" {
		return validationError("ledger referenceId is required")
	}
	if d.Amount < 0 {
		return validationError("amount must not be negative")
	}
	return nil
}

// Apply moves the customer's balance by the signed amount and appends the
// ledger entry describing the move.
func (b *BalanceLedger) Apply(tx *gorm.DB, d Delta) (*models.CustomerLedger, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	customer, err := loadCustomer(tx, d.CustomerName)
	if err != nil {
		return nil, err
	}

	prev := customer.Balance
	next := prev + d.Type.Sign()*d.Amount
	if err := b.setBalance(tx, d.CustomerName, prev, next); err != nil {
		return nil, err
	}

	entry := models.CustomerLedger{
		CustomerName:    d.CustomerName,
		Type:            d.Type,
		ReferenceID:     d.ReferenceID,
		Amount:          d.Amount,
		PreviousBalance: prev,
		UpdatedBalance:  next,
		CreatedBy:       d.Actor,
		CreatedAt:       b.now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Revert undoes an event: the balance moves back by the signed amount and
// the ledger entries carrying ReferenceID are removed. Amount is taken from
// the originating record rather than the entry so that records filed before
// the ledger existed still restore the balance.
func (b *BalanceLedger) Revert(tx *gorm.DB, d Delta) (int64, error) {
	if err := d.validate(); err != nil {
		return 0, err
	}
	customer, err := loadCustomer(tx, d.CustomerName)
	if err != nil {
		return 0, err
	}

	prev := customer.Balance
	next := prev - d.Type.Sign()*d.Amount
	if err := b.setBalance(tx, d.CustomerName, prev, next); err != nil {
		return 0, err
	}

	res := tx.Where("customer_name = ? AND type = ? AND reference_id = ?", d.CustomerName, d.Type, d.ReferenceID).
		Delete(&models.CustomerLedger{})
	if res.Error != nil {
		return 0, res.Error
	}
	return next, nil
}

// Entries returns the customer's ledger, oldest first.
func (b *BalanceLedger) Entries(tx *gorm.DB, customerName string) ([]models.CustomerLedger, error) {
	var out []models.CustomerLedger
	err := tx.Where("customer_name = ?", customerName).Order("created_at asc, id asc").Find(&out).Error
	return out, err
}

// setBalance is the only statement in the code base that writes
// customers.balance. The prev check turns a lost update into a retryable
// error instead of silently overwriting a concurrent change.
func (b *BalanceLedger) setBalance(tx *gorm.DB, customerName string, prev, next int64) error {
	res := tx.Model(&models.Customer{}).
		Where("customer_name = ? AND balance = ?", customerName, prev).
		Updates(map[string]any{"balance": next, "updated_at": b.now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return concurrentModification("customer balance")
	}
	return nil
}

func loadCustomer(tx *gorm.DB, name string) (*models.Customer, error) {
	var c models.Customer
	if err := tx.Where("customer_name = ?", name).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerNotFound(name)
		}
		return nil, err
	}
	return &c, nil
}
