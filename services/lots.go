package services

import (
	"context"
	"strings"

	"mandi-backend/models"
	"mandi-backend/utils"

	"gorm.io/gorm"
)

type NewStock struct {
	LotName       string
	FarmerName    string
	VegetableName string
	NumberOfBags  int
	Amount        int64
	PaymentStatus models.PaymentStatus
	CreatedBy     string
}

// CreateStock opens a new lot. The lot name is generated from the farmer,
// the vegetable and the bag count unless the caller supplies one.
func (e *Engine) CreateStock(ctx context.Context, in NewStock) (*models.Stock, error) {
	in.FarmerName = strings.TrimSpace(in.FarmerName)
	in.VegetableName = strings.TrimSpace(in.VegetableName)
	in.LotName = strings.TrimSpace(in.LotName)
	switch {
	case in.FarmerName == "":
		return nil, validationError("farmerName is required")
	case in.VegetableName == "":
		return nil, validationError("vegetableName is required")
	case in.NumberOfBags <= 0:
		return nil, validationError("numberOfBags must be positive")
	case in.Amount < 0:
		return nil, validationError("amount must not be negative")
	case in.PaymentStatus != "" && !validPaymentStatus(in.PaymentStatus):
		return nil, validationError("paymentStatus must be due or complete")
	}
	if in.LotName == "" {
		in.LotName = NewLotName(in.FarmerName, in.VegetableName, in.NumberOfBags)
	}

	lot := models.Stock{
		LotName:       in.LotName,
		NumberOfBags:  in.NumberOfBags,
		VegetableName: in.VegetableName,
		FarmerName:    in.FarmerName,
		PaymentStatus: in.PaymentStatus,
		Amount:        in.Amount,
		CreatedBy:     in.CreatedBy,
		ModifiedBy:    in.CreatedBy,
	}
	err := e.atomically(ctx, "create stock", []string{lotKey(lot.LotName)}, func(tx *gorm.DB) error {
		return e.stock.Open(tx, &lot)
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

type StockUpdate struct {
	NumberOfBags  *int                  `json:"numberOfBags,omitempty"`
	VegetableName *string               `json:"vegetableName,omitempty"`
	FarmerName    *string               `json:"farmerName,omitempty"`
	PaymentStatus *models.PaymentStatus `json:"paymentStatus,omitempty"`
	Amount        *int64                `json:"amount,omitempty"`

	RemainingBags *int    `json:"remainingBags,omitempty"`
	LotName       *string `json:"lotName,omitempty"`

	ModifiedBy string `json:"modifiedBy"`
}

var stockColumns = map[string]string{
	"vegetableName": "vegetable_name",
	"farmerName":    "farmer_name",
	"paymentStatus": "payment_status",
	"amount":        "amount",
}

// UpdateStock applies u and files a StockHistory record. A new numberOfBags
// moves remainingBags by the same delta; remainingBags itself is never
// accepted from the client.
func (e *Engine) UpdateStock(ctx context.Context, lotName string, u StockUpdate) (*models.Stock, error) {
	lotName = strings.TrimSpace(lotName)
	if u.RemainingBags != nil {
		return nil, businessRule("remainingBags is derived from sales and cannot be set")
	}
	if u.PaymentStatus != nil && !validPaymentStatus(*u.PaymentStatus) {
		return nil, validationError("paymentStatus must be due or complete")
	}
	if u.Amount != nil && *u.Amount < 0 {
		return nil, validationError("amount must not be negative")
	}
	u.ModifiedBy = strings.TrimSpace(u.ModifiedBy)
	if u.ModifiedBy == "" {
		return nil, validationError("modifiedBy is required")
	}

	var out models.Stock
	err := e.atomically(ctx, "update stock", []string{lotKey(lotName)}, func(tx *gorm.DB) error {
		lot, err := loadStock(tx, lotName)
		if err != nil {
			return err
		}
		if err := unchanged("lotName", u.LotName, lot.LotName); err != nil {
			return err
		}

		payload := utils.Patch(&u)
		payload["modifiedBy"] = u.ModifiedBy
		if err := e.audit.Record(tx, models.HistoryStock, lot.LotName, lot, payload, u.ModifiedBy); err != nil {
			return err
		}

		if u.NumberOfBags != nil {
			if err := e.stock.Resize(tx, lot, *u.NumberOfBags); err != nil {
				return err
			}
		}

		cols := utils.PatchColumns(&u, stockColumns)
		cols["modified_by"] = u.ModifiedBy
		if err := tx.Model(&models.Stock{}).Where("id = ?", lot.ID).Updates(cols).Error; err != nil {
			return err
		}
		reloaded, err := loadStock(tx, lotName)
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

// DeleteStock removes a lot. Sales already made from it keep their
// lotName; deleting such a sale later simply skips the bag release.
func (e *Engine) DeleteStock(ctx context.Context, lotName string) error {
	return e.atomically(ctx, "delete stock", []string{lotKey(lotName)}, func(tx *gorm.DB) error {
		lot, err := loadStock(tx, lotName)
		if err != nil {
			return err
		}
		return tx.Delete(lot).Error
	})
}

func validPaymentStatus(s models.PaymentStatus) bool {
	return s == models.PaymentDue || s == models.PaymentComplete
}
