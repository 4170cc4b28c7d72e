package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCash   = "cash"
	PaymentCredit = "credit"

	creditLinkPrefix = "credit-"
)

func init() {
	// Kgs are sent by the dashboard as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Sale is one bag sold out of a lot to a customer.
type Sale struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	SalesID      string          `json:"salesId" gorm:"column:sales_id;not null;uniqueIndex"`
	CustomerName string          `json:"customerName" gorm:"not null;index"`
	LotName      string          `json:"lotName" gorm:"not null;index"`
	NumberOfKgs  decimal.Decimal `json:"numberOfKgs" gorm:"type:numeric(12,3)"`
	PricePerKg   int64           `json:"pricePerKg"`
	PaymentType  string          `json:"paymentType" gorm:"not null"`
	TotalAmount  int64           `json:"totalAmount"`
	Kuli         bool            `json:"kuli" gorm:"index"`
	CreatedBy    string          `json:"createdBy"`
	ModifiedBy   string          `json:"modifiedBy"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// IsCreditPayment reports whether the paymentType ("credit" or
// "credit-<creditId>") puts the sale amount on the customer's balance.
func IsCreditPayment(paymentType string) bool {
	return paymentType == PaymentCredit || strings.HasPrefix(paymentType, creditLinkPrefix)
}

// LinkedCreditID extracts <creditId> from a "credit-<creditId>" payment type.
func LinkedCreditID(paymentType string) (string, bool) {
	id, ok := strings.CutPrefix(paymentType, creditLinkPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// NormalizePaymentType lower-cases the cash/credit keyword. The creditId of
// a "credit-<creditId>" payment type is kept as sent, since credit ids are
// matched byte for byte.
func NormalizePaymentType(raw string) string {
	s := strings.TrimSpace(raw)
	if n := len(creditLinkPrefix); len(s) > n && strings.EqualFold(s[:n], creditLinkPrefix) {
		return creditLinkPrefix + s[n:]
	}
	return strings.ToLower(s)
}

func ValidPaymentType(paymentType string) bool {
	if paymentType == PaymentCash || paymentType == PaymentCredit {
		return true
	}
	_, ok := LinkedCreditID(paymentType)
	return ok
}

// DeletedSale archives a sale at deletion time so it can be restored.
type DeletedSale struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	SalesID       string          `json:"salesId" gorm:"column:sales_id;not null;uniqueIndex"`
	CustomerName  string          `json:"customerName" gorm:"index"`
	LotName       string          `json:"lotName"`
	NumberOfKgs   decimal.Decimal `json:"numberOfKgs" gorm:"type:numeric(12,3)"`
	PricePerKg    int64           `json:"pricePerKg"`
	PaymentType   string          `json:"paymentType"`
	TotalAmount   int64           `json:"totalAmount"`
	Kuli          bool            `json:"kuli"`
	CreatedBy     string          `json:"createdBy"`
	ModifiedBy    string          `json:"modifiedBy"`
	SaleCreatedAt time.Time       `json:"saleCreatedAt"`
	DeletedBy     string          `json:"deletedBy" gorm:"not null"`
	DeletedAt     time.Time       `json:"deletedAt" gorm:"index"`
}

func ArchiveSale(s Sale, deletedBy string, at time.Time) DeletedSale {
	return DeletedSale{
		SalesID:       s.SalesID,
		CustomerName:  s.CustomerName,
		LotName:       s.LotName,
		NumberOfKgs:   s.NumberOfKgs,
		PricePerKg:    s.PricePerKg,
		PaymentType:   s.PaymentType,
		TotalAmount:   s.TotalAmount,
		Kuli:          s.Kuli,
		CreatedBy:     s.CreatedBy,
		ModifiedBy:    s.ModifiedBy,
		SaleCreatedAt: s.CreatedAt,
		DeletedBy:     deletedBy,
		DeletedAt:     at,
	}
}

// Sale rebuilds the original record from the archive.
func (d DeletedSale) Sale() Sale {
	return Sale{
		SalesID:      d.SalesID,
		CustomerName: d.CustomerName,
		LotName:      d.LotName,
		NumberOfKgs:  d.NumberOfKgs,
		PricePerKg:   d.PricePerKg,
		PaymentType:  d.PaymentType,
		TotalAmount:  d.TotalAmount,
		Kuli:         d.Kuli,
		CreatedBy:    d.CreatedBy,
		ModifiedBy:   d.ModifiedBy,
		CreatedAt:    d.SaleCreatedAt,
	}
}
