package services

import (
	"context"
	"errors"
	"strings"

	"mandi-backend/models"
	"mandi-backend/notify"
	"mandi-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewSale is the input of CreateSale. SalesID is generated when empty and
// TotalAmount is derived from kgs x price when left at zero.
type NewSale struct {
	SalesID      string
	CustomerName string
	LotName      string
	NumberOfKgs  decimal.Decimal
	PricePerKg   int64
	PaymentType  string
	TotalAmount  int64
	Kuli         bool
	CreatedBy    string
}

func (in *NewSale) normalize() {
	in.SalesID = strings.TrimSpace(in.SalesID)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.LotName = strings.TrimSpace(in.LotName)
	in.PaymentType = models.NormalizePaymentType(in.PaymentType)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	if in.TotalAmount == 0 && in.PricePerKg > 0 && in.NumberOfKgs.IsPositive() {
		in.TotalAmount = utils.LineTotal(in.NumberOfKgs, in.PricePerKg)
	}
}

func (in NewSale) validate() error {
	switch {
	case in.CustomerName == "":
		return validationError("customerName is required")
	case in.LotName == "":
		return validationError("lotName is required")
	case in.CreatedBy == "":
		return validationError("createdBy is required")
	case !models.ValidPaymentType(in.PaymentType):
		return validationError("paymentType must be cash, credit or credit-<creditId>")
	case in.NumberOfKgs.IsNegative(), in.PricePerKg < 0, in.TotalAmount < 0:
		return validationError("numberOfKgs, pricePerKg and totalAmount must not be negative")
	}
	return nil
}

// CreateSale reserves one bag from the lot, puts the amount on the
// customer's balance for credit-type payments and inserts the sale, all in
// one transaction.
func (e *Engine) CreateSale(ctx context.Context, in NewSale) (*models.Sale, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	supplied := in.SalesID != ""
	if !supplied {
		in.SalesID = NewSalesID(in.CustomerName, in.LotName, e.now())
	}

	sale := models.Sale{
		SalesID:      in.SalesID,
		CustomerName: in.CustomerName,
		LotName:      in.LotName,
		NumberOfKgs:  in.NumberOfKgs,
		PricePerKg:   in.PricePerKg,
		PaymentType:  in.PaymentType,
		TotalAmount:  in.TotalAmount,
		Kuli:         in.Kuli,
		CreatedBy:    in.CreatedBy,
		ModifiedBy:   in.CreatedBy,
	}
	onCredit := models.IsCreditPayment(sale.PaymentType)

	keys := []string{lotKey(sale.LotName)}
	if onCredit {
		keys = append(keys, customerKey(sale.CustomerName))
	}
	err := e.atomically(ctx, "create sale", keys, func(tx *gorm.DB) error {
		if supplied {
			if err := salesIDUnused(tx, sale.SalesID); err != nil {
				return err
			}
		}
		return e.insertSale(tx, &sale, onCredit)
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, notify.EventNewSale, sale)
	return &sale, nil
}

func (e *Engine) insertSale(tx *gorm.DB, sale *models.Sale, bookBalance bool) error {
	if bookBalance {
		if _, err := loadCustomer(tx, sale.CustomerName); err != nil {
			return err
		}
	}
	if _, err := e.stock.Reserve(tx, sale.LotName); err != nil {
		return err
	}
	if bookBalance {
		if _, err := e.balances.Apply(tx, Delta{
			CustomerName: sale.CustomerName,
			Type:         models.LedgerSale,
			ReferenceID:  sale.SalesID,
			Amount:       sale.TotalAmount,
			Actor:        sale.CreatedBy,
		}); err != nil {
			return err
		}
	}
	return tx.Create(sale).Error
}

// salesIDUnused refuses a salesId that is archived or still referenced by a
// ledger entry. Deleted sales keep their ledger entry, so a reused id would
// tie two bookings to one reference.
func salesIDUnused(tx *gorm.DB, salesID string) error {
	var n int64
	if err := tx.Model(&models.DeletedSale{}).Where("sales_id = ?", salesID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		if err := tx.Model(&models.CustomerLedger{}).
			Where("type = ? AND reference_id = ?", models.LedgerSale, salesID).Count(&n).Error; err != nil {
			return err
		}
	}
	if n > 0 {
		return newError(ErrConflict, CodeConflict, "salesId %q has already been used", salesID)
	}
	return nil
}

// DeleteSale archives the sale into DeletedSales, removes a linked
// "credit-<creditId>" credit record, puts the bag back into its lot and
// removes the sale.
//
// The customer balance is deliberately left alone: neither the sale's own
// credit amount nor the linked credit's payment is reversed. That is the
// current business rule, kept until the product side decides otherwise.
// Ledger entries stay in place so the balance still equals their sum.
func (e *Engine) DeleteSale(ctx context.Context, salesID, deletedBy string) (*models.DeletedSale, error) {
	salesID = strings.TrimSpace(salesID)
	deletedBy = strings.TrimSpace(deletedBy)
	if deletedBy == "" {
		return nil, validationError("deletedBy is required")
	}

	current, err := e.GetSale(ctx, salesID)
	if err != nil {
		return nil, err
	}
	keys := []string{lotKey(current.LotName)}
	if _, ok := models.LinkedCreditID(current.PaymentType); ok {
		keys = append(keys, customerKey(current.CustomerName))
	}

	var archived models.DeletedSale
	err = e.atomically(ctx, "delete sale", keys, func(tx *gorm.DB) error {
		sale, err := loadSale(tx, salesID)
		if err != nil {
			return err
		}

		archived = models.ArchiveSale(*sale, deletedBy, e.now())
		if err := tx.Create(&archived).Error; err != nil {
			return err
		}

		if creditID, ok := models.LinkedCreditID(sale.PaymentType); ok {
			res := tx.Where("credit_id = ?", creditID).Delete(&models.Credit{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				e.log.WithField("salesId", salesID).WithField("creditId", creditID).Warn("linked credit already gone")
			}
		}

		if _, err := e.stock.Release(tx, sale.LotName); err != nil {
			return err
		}
		return tx.Delete(sale).Error
	})
	if err != nil {
		return nil, err
	}
	return &archived, nil
}

// RestoreSale undoes a DeleteSale: the sale comes back under its original
// salesId, takes a bag from its lot again and leaves the archive. The
// balance is untouched, mirroring DeleteSale. A linked credit removed by the
// delete is not recreated.
func (e *Engine) RestoreSale(ctx context.Context, salesID, restoredBy string) (*models.Sale, error) {
	salesID = strings.TrimSpace(salesID)
	restoredBy = strings.TrimSpace(restoredBy)
	if restoredBy == "" {
		return nil, validationError("restoredBy is required")
	}

	var archived models.DeletedSale
	err := e.read(ctx, "restore sale", func(db *gorm.DB) error {
		return db.Where("sales_id = ?", salesID).First(&archived).Error
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, newError(ErrNotFound, CodeDeletedSaleNotFound, "deleted sale %q not found", salesID)
		}
		return nil, err
	}

	sale := archived.Sale()
	sale.ModifiedBy = restoredBy
	err = e.atomically(ctx, "restore sale", []string{lotKey(sale.LotName)}, func(tx *gorm.DB) error {
		res := tx.Where("sales_id = ?", salesID).Delete(&models.DeletedSale{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return concurrentModification("deleted sale")
		}
		return e.insertSale(tx, &sale, false)
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// SaleUpdate is a field-level update. Nil fields are left alone. The
// identity fields are listed so that an attempt to change them is rejected
// rather than silently ignored.
type SaleUpdate struct {
	NumberOfKgs *decimal.Decimal `json:"numberOfKgs,omitempty"`
	PricePerKg  *int64           `json:"pricePerKg,omitempty"`
	TotalAmount *int64           `json:"totalAmount,omitempty"`
	Kuli        *bool            `json:"kuli,omitempty"`

	CustomerName *string `json:"customerName,omitempty"`
	LotName      *string `json:"lotName,omitempty"`
	PaymentType  *string `json:"paymentType,omitempty"`

	ModifiedBy string `json:"modifiedBy"`
}

var saleColumns = map[string]string{
	"numberOfKgs": "number_of_kgs",
	"pricePerKg":  "price_per_kg",
	"totalAmount": "total_amount",
	"kuli":        "kuli",
}

// UpdateSale applies u and files a SalesHistory record. Changing the total
// of a credit-type sale re-books it through the balance ledger.
func (e *Engine) UpdateSale(ctx context.Context, salesID string, u SaleUpdate) (*models.Sale, error) {
	u.ModifiedBy = strings.TrimSpace(u.ModifiedBy)
	if u.ModifiedBy == "" {
		return nil, validationError("modifiedBy is required")
	}
	if (u.PricePerKg != nil && *u.PricePerKg < 0) || (u.TotalAmount != nil && *u.TotalAmount < 0) ||
		(u.NumberOfKgs != nil && u.NumberOfKgs.IsNegative()) {
		return nil, validationError("numberOfKgs, pricePerKg and totalAmount must not be negative")
	}

	current, err := e.GetSale(ctx, salesID)
	if err != nil {
		return nil, err
	}
	keys := []string{lotKey(current.LotName)}
	if models.IsCreditPayment(current.PaymentType) {
		keys = append(keys, customerKey(current.CustomerName))
	}

	var out models.Sale
	err = e.atomically(ctx, "update sale", keys, func(tx *gorm.DB) error {
		sale, err := loadSale(tx, salesID)
		if err != nil {
			return err
		}
		if err := unchanged("customerName", u.CustomerName, sale.CustomerName); err != nil {
			return err
		}
		if err := unchanged("lotName", u.LotName, sale.LotName); err != nil {
			return err
		}
		if err := unchanged("paymentType", u.PaymentType, sale.PaymentType); err != nil {
			return err
		}

		payload := utils.Patch(&u)
		payload["modifiedBy"] = u.ModifiedBy
		if err := e.audit.Record(tx, models.HistorySales, sale.SalesID, sale, payload, u.ModifiedBy); err != nil {
			return err
		}

		if u.TotalAmount != nil && *u.TotalAmount != sale.TotalAmount && models.IsCreditPayment(sale.PaymentType) {
			if err := e.rebook(tx, models.LedgerSale, sale.CustomerName, sale.SalesID, sale.TotalAmount, *u.TotalAmount, u.ModifiedBy); err != nil {
				return err
			}
		}

		cols := utils.PatchColumns(&u, saleColumns)
		cols["modified_by"] = u.ModifiedBy
		if err := tx.Model(&models.Sale{}).Where("id = ?", sale.ID).Updates(cols).Error; err != nil {
			return err
		}
		reloaded, err := loadSale(tx, salesID)
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

// rebook replaces the ledger entry of referenceID with one for newAmount.
func (e *Engine) rebook(tx *gorm.DB, typ models.LedgerType, customer, referenceID string, oldAmount, newAmount int64, actor string) error {
	if _, err := e.balances.Revert(tx, Delta{CustomerName: customer, Type: typ, ReferenceID: referenceID, Amount: oldAmount, Actor: actor}); err != nil {
		return err
	}
	_, err := e.balances.Apply(tx, Delta{CustomerName: customer, Type: typ, ReferenceID: referenceID, Amount: newAmount, Actor: actor})
	return err
}

func unchanged(field string, proposed *string, current string) error {
	if proposed != nil && strings.TrimSpace(*proposed) != current {
		return businessRule("%s cannot be changed", field)
	}
	return nil
}

func loadSale(tx *gorm.DB, salesID string) (*models.Sale, error) {
	var s models.Sale
	if err := tx.Where("sales_id = ?", salesID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, saleNotFound(salesID)
		}
		return nil, err
	}
	return &s, nil
}
