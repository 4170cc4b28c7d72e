package models

import "time"

type LedgerType string

const (
	LedgerSale   LedgerType = "sale"
	LedgerCredit LedgerType = "credit"
)

// Sign is +1 for entries that raise what the customer owes, -1 otherwise.
func (t LedgerType) Sign() int64 {
	if t == LedgerCredit {
		return -1
	}
	return 1
}

func (t LedgerType) Valid() bool {
	return t == LedgerSale || t == LedgerCredit
}

// CustomerLedger is one balance-affecting event. Amount is stored unsigned;
// the type carries the direction.
type CustomerLedger struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	CustomerName    string     `json:"customerName" gorm:"not null;index"`
	Type            LedgerType `json:"type" gorm:"type:varchar(10);not null"`
	ReferenceID     string     `json:"referenceId" gorm:"not null;index"`
	Amount          int64      `json:"amount"`
	PreviousBalance int64      `json:"previousBalance"`
	UpdatedBalance  int64      `json:"updatedBalance"`
	CreatedBy       string     `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt" gorm:"index"`
}

func (e CustomerLedger) SignedAmount() int64 {
	return e.Type.Sign() * e.Amount
}
