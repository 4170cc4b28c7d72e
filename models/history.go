package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// HistoryFormatRawPayload marks records whose NewData holds the raw update
// payload rather than the merged post-update document.
const HistoryFormatRawPayload = 1

// HistoryRecord is an immutable before/after snapshot written on updates.
type HistoryRecord struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	EntityKey     string         `json:"entityKey" gorm:"not null;index"`
	PreviousData  datatypes.JSON `json:"previousData"`
	NewData       datatypes.JSON `json:"newData"`
	FormatVersion int            `json:"formatVersion" gorm:"not null;default:1"`
	ModifiedBy    string         `json:"modifiedBy"`
	ModifiedAt    time.Time      `json:"modifiedAt" gorm:"index"`
}

// Merged overlays NewData on PreviousData, giving the full resulting record.
func (h HistoryRecord) Merged() (map[string]any, error) {
	out := map[string]any{}
	if len(h.PreviousData) > 0 {
		if err := json.Unmarshal(h.PreviousData, &out); err != nil {
			return nil, err
		}
	}
	if len(h.NewData) > 0 {
		var patch map[string]any
		if err := json.Unmarshal(h.NewData, &patch); err != nil {
			return nil, err
		}
		for k, v := range patch {
			out[k] = v
		}
	}
	return out, nil
}

type CustomerHistory struct{ HistoryRecord }

type StockHistory struct{ HistoryRecord }

type SalesHistory struct{ HistoryRecord }

type CreditHistory struct{ HistoryRecord }

func (CustomerHistory) TableName() string { return "customer_histories" }
func (StockHistory) TableName() string    { return "stock_histories" }
func (SalesHistory) TableName() string    { return "sales_histories" }
func (CreditHistory) TableName() string   { return "credit_histories" }

type HistoryKind string

const (
	HistoryCustomer HistoryKind = "customer"
	HistoryStock    HistoryKind = "stock"
	HistorySales    HistoryKind = "sales"
	HistoryCredit   HistoryKind = "credit"
)

func (k HistoryKind) Table() string {
	switch k {
	case HistoryCustomer:
		return CustomerHistory{}.TableName()
	case HistoryStock:
		return StockHistory{}.TableName()
	case HistorySales:
		return SalesHistory{}.TableName()
	case HistoryCredit:
		return CreditHistory{}.TableName()
	}
	return ""
}
