package services

import (
	"context"
	"time"

	"mandi-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (e *Engine) GetSale(ctx context.Context, salesID string) (*models.Sale, error) {
	var out *models.Sale
	err := e.read(ctx, "get sale", func(db *gorm.DB) error {
		s, err := loadSale(db, salesID)
		out = s
		return err
	})
	return out, err
}

func (e *Engine) GetCredit(ctx context.Context, creditID string) (*models.Credit, error) {
	var out *models.Credit
	err := e.read(ctx, "get credit", func(db *gorm.DB) error {
		c, err := loadCredit(db, creditID)
		out = c
		return err
	})
	return out, err
}

func (e *Engine) GetStock(ctx context.Context, lotName string) (*models.Stock, error) {
	var out *models.Stock
	err := e.read(ctx, "get stock", func(db *gorm.DB) error {
		s, err := loadStock(db, lotName)
		out = s
		return err
	})
	return out, err
}

func (e *Engine) GetCustomer(ctx context.Context, customerName string) (*models.Customer, error) {
	var out *models.Customer
	err := e.read(ctx, "get customer", func(db *gorm.DB) error {
		c, err := loadCustomer(db, customerName)
		out = c
		return err
	})
	return out, err
}

type SaleFilter struct {
	CustomerName string
	LotName      string
	PaymentType  string
	Kuli         *bool
	From, To     time.Time // [From, To)
	Limit        int
}

func (e *Engine) ListSales(ctx context.Context, f SaleFilter) ([]models.Sale, error) {
	var out []models.Sale
	err := e.read(ctx, "list sales", func(db *gorm.DB) error {
		q := db.Model(&models.Sale{})
		if f.CustomerName != "" {
			q = q.Where("customer_name = ?", f.CustomerName)
		}
		if f.LotName != "" {
			q = q.Where("lot_name = ?", f.LotName)
		}
		if f.PaymentType != "" {
			q = q.Where("payment_type = ?", f.PaymentType)
		}
		if f.Kuli != nil {
			q = q.Where("kuli = ?", *f.Kuli)
		}
		if !f.From.IsZero() {
			q = q.Where("created_at >= ?", f.From)
		}
		if !f.To.IsZero() {
			q = q.Where("created_at < ?", f.To)
		}
		if f.Limit > 0 {
			q = q.Limit(f.Limit)
		}
		return q.Order("created_at desc, id desc").Find(&out).Error
	})
	return out, err
}

func (e *Engine) ListCredits(ctx context.Context, customerName string, limit int) ([]models.Credit, error) {
	var out []models.Credit
	err := e.read(ctx, "list credits", func(db *gorm.DB) error {
		q := db.Model(&models.Credit{})
		if customerName != "" {
			q = q.Where("customer_name = ?", customerName)
		}
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Order("created_at desc, id desc").Find(&out).Error
	})
	return out, err
}

type StockFilter struct {
	FarmerName    string
	VegetableName string
	PaymentStatus models.PaymentStatus
	AvailableOnly bool
}

func (e *Engine) ListStocks(ctx context.Context, f StockFilter) ([]models.Stock, error) {
	var out []models.Stock
	err := e.read(ctx, "list stocks", func(db *gorm.DB) error {
		q := db.Model(&models.Stock{})
		if f.FarmerName != "" {
			q = q.Where("farmer_name = ?", f.FarmerName)
		}
		if f.VegetableName != "" {
			q = q.Where("vegetable_name = ?", f.VegetableName)
		}
		if f.PaymentStatus != "" {
			q = q.Where("payment_status = ?", f.PaymentStatus)
		}
		if f.AvailableOnly {
			q = q.Where("remaining_bags > 0")
		}
		return q.Order("created_at desc, id desc").Find(&out).Error
	})
	return out, err
}

func (e *Engine) ListCustomers(ctx context.Context, groupName string) ([]models.Customer, error) {
	var out []models.Customer
	err := e.read(ctx, "list customers", func(db *gorm.DB) error {
		q := db.Model(&models.Customer{})
		if groupName != "" {
			q = q.Where("group_name = ?", groupName)
		}
		return q.Order("customer_name asc").Find(&out).Error
	})
	return out, err
}

func (e *Engine) ListDeletedSales(ctx context.Context, limit int) ([]models.DeletedSale, error) {
	var out []models.DeletedSale
	err := e.read(ctx, "list deleted sales", func(db *gorm.DB) error {
		q := db.Order("deleted_at desc, id desc")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Find(&out).Error
	})
	return out, err
}

// HistoryView is a history record plus the merged resulting document.
type HistoryView struct {
	models.HistoryRecord
	MergedData map[string]any `json:"mergedData"`
}

// History lists history records newest first.
func (e *Engine) History(ctx context.Context, kind models.HistoryKind, key string, limit int) ([]HistoryView, error) {
	var recs []models.HistoryRecord
	err := e.read(ctx, "list history", func(db *gorm.DB) error {
		var err error
		recs, err = e.audit.List(db, kind, key, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]HistoryView, 0, len(recs))
	for _, r := range recs {
		merged, err := r.Merged()
		if err != nil {
			e.log.WithField("historyId", r.ID).WithError(err).Warn("history record not mergeable")
		}
		out = append(out, HistoryView{HistoryRecord: r, MergedData: merged})
	}
	return out, nil
}

// SaleLine is the sale detail attached to "sale" ledger entries.
type SaleLine struct {
	LotName       string          `json:"lotName"`
	NumberOfKgs   decimal.Decimal `json:"numberOfKgs"`
	PricePerKg    int64           `json:"pricePerKg"`
	VegetableName string          `json:"vegetableName,omitempty"`
	Deleted       bool            `json:"deleted,omitempty"`
}

type StatementEntry struct {
	models.CustomerLedger
	Sale *SaleLine `json:"sale,omitempty"`
}

type Statement struct {
	Customer models.Customer  `json:"customer"`
	Ledger   []StatementEntry `json:"ledger"`
}

// CustomerStatement returns the customer and its ledger, newest first, with
// sale entries enriched by lot, kgs, price and vegetable. Sales that were
// deleted since are looked up in the archive.
func (e *Engine) CustomerStatement(ctx context.Context, customerName string) (*Statement, error) {
	var st Statement
	err := e.read(ctx, "customer statement", func(db *gorm.DB) error {
		c, err := loadCustomer(db, customerName)
		if err != nil {
			return err
		}
		st.Customer = *c

		entries, err := e.balances.Entries(db, customerName)
		if err != nil {
			return err
		}

		var saleIDs []string
		for _, en := range entries {
			if en.Type == models.LedgerSale {
				saleIDs = append(saleIDs, en.ReferenceID)
			}
		}
		lines, err := saleLines(db, saleIDs)
		if err != nil {
			return err
		}

		st.Ledger = make([]StatementEntry, 0, len(entries))
		for i := len(entries) - 1; i >= 0; i-- {
			en := entries[i]
			se := StatementEntry{CustomerLedger: en}
			if en.Type == models.LedgerSale {
				se.Sale = lines[en.ReferenceID]
			}
			st.Ledger = append(st.Ledger, se)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func saleLines(db *gorm.DB, salesIDs []string) (map[string]*SaleLine, error) {
	out := make(map[string]*SaleLine, len(salesIDs))
	if len(salesIDs) == 0 {
		return out, nil
	}

	var sales []models.Sale
	if err := db.Where("sales_id IN ?", salesIDs).Find(&sales).Error; err != nil {
		return nil, err
	}
	var archived []models.DeletedSale
	if err := db.Where("sales_id IN ?", salesIDs).Find(&archived).Error; err != nil {
		return nil, err
	}

	lots := map[string]struct{}{}
	for _, s := range sales {
		out[s.SalesID] = &SaleLine{LotName: s.LotName, NumberOfKgs: s.NumberOfKgs, PricePerKg: s.PricePerKg}
		lots[s.LotName] = struct{}{}
	}
	for _, d := range archived {
		if _, live := out[d.SalesID]; live {
			continue
		}
		out[d.SalesID] = &SaleLine{LotName: d.LotName, NumberOfKgs: d.NumberOfKgs, PricePerKg: d.PricePerKg, Deleted: true}
		lots[d.LotName] = struct{}{}
	}

	names := make([]string, 0, len(lots))
	for n := range lots {
		names = append(names, n)
	}
	var stocks []models.Stock
	if len(names) > 0 {
		if err := db.Where("lot_name IN ?", names).Find(&stocks).Error; err != nil {
			return nil, err
		}
	}
	veg := make(map[string]string, len(stocks))
	for _, s := range stocks {
		veg[s.LotName] = s.VegetableName
	}
	for _, line := range out {
		line.VegetableName = veg[line.LotName]
	}
	return out, nil
}
