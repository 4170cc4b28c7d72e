package services_test

import (
	"context"
	"io"
	"testing"
	"time"

	"mandi-backend/database"
	"mandi-backend/models"
	"mandi-backend/notify"
	"mandi-backend/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	engine *services.Engine
	db     *gorm.DB
	hub    *notify.Hub
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logrus.New()
	log.SetOutput(io.Discard)
	hub := notify.NewHub()
	t.Cleanup(hub.Close)

	engine := services.NewEngine(db, services.Options{
		Logger:   log,
		Notifier: hub,
		Timeout:  10 * time.Second,
	})
	return &fixture{engine: engine, db: db, hub: hub, ctx: context.Background()}
}

func (f *fixture) customer(t *testing.T, name string) *models.Customer {
	t.Helper()
	c, err := f.engine.CreateCustomer(f.ctx, services.NewCustomer{CustomerName: name, CreatedBy: "admin"})
	require.NoError(t, err)
	return c
}

func (f *fixture) lot(t *testing.T, name string, bags int) *models.Stock {
	t.Helper()
	s, err := f.engine.CreateStock(f.ctx, services.NewStock{
		LotName:       name,
		FarmerName:    "Suresh",
		VegetableName: "Tomato",
		NumberOfBags:  bags,
		CreatedBy:     "admin",
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) sale(t *testing.T, customer, lot string, total int64, paymentType string) *models.Sale {
	t.Helper()
	s, err := f.engine.CreateSale(f.ctx, saleInput(customer, lot, total, paymentType))
	require.NoError(t, err)
	return s
}

func (f *fixture) balance(t *testing.T, customer string) int64 {
	t.Helper()
	c, err := f.engine.GetCustomer(f.ctx, customer)
	require.NoError(t, err)
	return c.Balance
}

func (f *fixture) remaining(t *testing.T, lot string) int {
	t.Helper()
	s, err := f.engine.GetStock(f.ctx, lot)
	require.NoError(t, err)
	return s.RemainingBags
}

// ledgerSum is the sum of signed ledger amounts, which must always match
// the stored balance.
func (f *fixture) ledgerSum(t *testing.T, customer string) int64 {
	t.Helper()
	var entries []models.CustomerLedger
	require.NoError(t, f.db.Where("customer_name = ?", customer).Find(&entries).Error)
	var sum int64
	for _, e := range entries {
		sum += e.SignedAmount()
	}
	return sum
}

func saleInput(customer, lot string, total int64, paymentType string) services.NewSale {
	return services.NewSale{
		CustomerName: customer,
		LotName:      lot,
		NumberOfKgs:  decimal.NewFromInt(50),
		PricePerKg:   10,
		PaymentType:  paymentType,
		TotalAmount:  total,
		CreatedBy:    "clerk",
	}
}

func ptr[T any](v T) *T { return &v }
