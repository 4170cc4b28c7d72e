package services

import (
	"errors"
	"time"

	"mandi-backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StockAllocator owns every write to Stock.RemainingBags. Methods run inside
// the caller's transaction with the lot lock held; the conditional UPDATEs
// keep the invariant even if a caller forgets the lock.
type StockAllocator struct {
	now func() time.Time
	log *logrus.Logger
}

// Open inserts a new lot with all of its bags available.
func (a *StockAllocator) Open(tx *gorm.DB, lot *models.Stock) error {
	if lot.NumberOfBags < 0 {
		return validationError("numberOfBags must not be negative")
	}
	lot.RemainingBags = lot.NumberOfBags
	if lot.PaymentStatus == "" {
		lot.PaymentStatus = models.PaymentDue
	}
	return tx.Create(lot).Error
}

// Reserve takes one bag out of the lot for a sale.
func (a *StockAllocator) Reserve(tx *gorm.DB, lotName string) (*models.Stock, error) {
	lot, err := loadStock(tx, lotName)
	if err != nil {
		return nil, err
	}
	if lot.RemainingBags <= 0 {
		return nil, insufficientStock(lotName, lot.RemainingBags)
	}

	res := tx.Model(&models.Stock{}).
		Where("lot_name = ? AND remaining_bags > 0", lotName).
		Updates(map[string]any{"remaining_bags": gorm.Expr("remaining_bags - 1"), "updated_at": a.now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, insufficientStock(lotName, 0)
	}
	lot.RemainingBags--
	return lot, nil
}

// Release puts one bag back after a sale is deleted. A missing lot is left
// alone, and a lot that is already full is not pushed past NumberOfBags.
func (a *StockAllocator) Release(tx *gorm.DB, lotName string) (bool, error) {
	lot, err := loadStock(tx, lotName)
	if err != nil {
		if IsNotFound(err) {
			a.log.WithField("lotName", lotName).Warn("release skipped: lot no longer exists")
			return false, nil
		}
		return false, err
	}

	res := tx.Model(&models.Stock{}).
		Where("lot_name = ? AND remaining_bags < number_of_bags", lotName).
		Updates(map[string]any{"remaining_bags": gorm.Expr("remaining_bags + 1"), "updated_at": a.now()})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		a.log.WithFields(logrus.Fields{
			"lotName":       lotName,
			"numberOfBags":  lot.NumberOfBags,
			"remainingBags": lot.RemainingBags,
		}).Warn("release capped: lot already has all bags remaining")
		return false, nil
	}
	return true, nil
}

// Resize changes NumberOfBags and shifts RemainingBags by the same delta, so
// bags already sold stay sold.
func (a *StockAllocator) Resize(tx *gorm.DB, lot *models.Stock, numberOfBags int) error {
	if numberOfBags < 0 {
		return validationError("numberOfBags must not be negative")
	}
	delta := numberOfBags - lot.NumberOfBags
	if delta == 0 {
		return nil
	}
	if lot.RemainingBags+delta < 0 {
		return businessRule("lot %q already sold %d bags; numberOfBags cannot drop to %d",
			lot.LotName, lot.SoldBags(), numberOfBags)
	}

	res := tx.Model(&models.Stock{}).
		Where("lot_name = ? AND number_of_bags = ? AND remaining_bags + ? >= 0", lot.LotName, lot.NumberOfBags, delta).
		Updates(map[string]any{
			"number_of_bags": numberOfBags,
			"remaining_bags": gorm.Expr("remaining_bags + ?", delta),
			"updated_at":     a.now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return concurrentModification("stock lot")
	}
	lot.NumberOfBags = numberOfBags
	lot.RemainingBags += delta
	return nil
}

func loadStock(tx *gorm.DB, lotName string) (*models.Stock, error) {
	var s models.Stock
	if err := tx.Where("lot_name = ?", lotName).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stockNotFound(lotName)
		}
		return nil, err
	}
	return &s, nil
}
