package services_test

import (
	"strings"
	"testing"

	"mandi-backend/models"
	"mandi-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStock_CreateGeneratesLotName(t *testing.T) {
	f := newFixture(t)

	lot, err := f.engine.CreateStock(f.ctx, services.NewStock{
		FarmerName:    "Suresh Kumar",
		VegetableName: "Tomato",
		NumberOfBags:  12,
		CreatedBy:     "clerk",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(lot.LotName, "SURESH_KUMAR-TOMATO-12-"), lot.LotName)
	assert.Equal(t, 12, lot.RemainingBags)
	assert.Equal(t, models.PaymentDue, lot.PaymentStatus)
}

func TestStock_UpdateNumberOfBagsShiftsRemaining(t *testing.T) {
	// GIVEN: A 10 bag lot with 3 sold
	// WHEN: numberOfBags goes to 15
	// THEN: remainingBags goes from 7 to 12, not to 5 or 15

	f := newFixture(t)
	f.customer(t, "Ravi")
	f.lot(t, "LOT1", 10)
	for i := 0; i < 3; i++ {
		f.sale(t, "Ravi", "LOT1", 10, models.PaymentCash)
	}

	lot, err := f.engine.UpdateStock(f.ctx, "LOT1", services.StockUpdate{NumberOfBags: ptr(15), ModifiedBy: "manager"})
	require.NoError(t, err)
	assert.Equal(t, 15, lot.NumberOfBags)
	assert.Equal(t, 12, lot.RemainingBags)

	hist, err := f.engine.History(f.ctx, models.HistoryStock, "LOT1", 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.EqualValues(t, 7, hist[0].MergedData["remainingBags"], "previous data is the record before the update")
	assert.EqualValues(t, 15, hist[0].MergedData["numberOfBags"])
}

func TestStock_ShrinkBelowSoldRejected(t *testing.T) {
	f := newFixture(t)
	f.customer(t, "Ravi")
	f.lot(t, "LOT1", 5)
	for i := 0; i < 4; i++ {
		f.sale(t, "Ravi", "LOT1", 10, models.PaymentCash)
	}

	_, err := f.engine.UpdateStock(f.ctx, "LOT1", services.StockUpdate{NumberOfBags: ptr(3), ModifiedBy: "m"})
	assert.ErrorIs(t, err, services.ErrBusinessRule)

	lot, err := f.engine.UpdateStock(f.ctx, "LOT1", services.StockUpdate{NumberOfBags: ptr(4), ModifiedBy: "m"})
	require.NoError(t, err)
	assert.Equal(t, 0, lot.RemainingBags)
}

func TestStock_UpdateRejectsDerivedFields(t *testing.T) {
	f := newFixture(t)
	f.lot(t, "LOT1", 5)

	_, err := f.engine.UpdateStock(f.ctx, "LOT1", services.StockUpdate{RemainingBags: ptr(5)})
	assert.ErrorIs(t, err, services.ErrBusinessRule)

	_, err = f.engine.UpdateStock(f.ctx, "LOT1", services.StockUpdate{LotName: ptr("LOT2"), ModifiedBy: "m"})
	assert.ErrorIs(t, err, services.ErrBusinessRule)

	_, err = f.engine.UpdateStock(f.ctx, "LOT1", services.StockUpdate{PaymentStatus: ptr(models.PaymentStatus("paid")), ModifiedBy: "m"})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.engine.UpdateStock(f.ctx, "NOPE", services.StockUpdate{Amount: ptr(int64(5)), ModifiedBy: "m"})
	assert.Equal(t, services.CodeStockNotFound, services.CodeOf(err))
}

func TestStock_PaymentStatus(t *testing.T) {
	f := newFixture(t)
	f.lot(t, "LOT1", 5)

	lot, err := f.engine.UpdateStock(f.ctx, "LOT1", services.StockUpdate{
		PaymentStatus: ptr(models.PaymentComplete),
		Amount:        ptr(int64(12000)),
		ModifiedBy:    "manager",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentComplete, lot.PaymentStatus)
	assert.Equal(t, int64(12000), lot.Amount)
	assert.Equal(t, 5, lot.RemainingBags)

	due, err := f.engine.ListStocks(f.ctx, services.StockFilter{PaymentStatus: models.PaymentDue})
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestStock_ReleaseCappedAtNumberOfBags(t *testing.T) {
	// GIVEN: A sale from LOT1, after which LOT1 is deleted and re-opened
	//        full under the same name
	// WHEN: The old sale is deleted
	// THEN: The release is skipped; remainingBags stays at numberOfBags

	f := newFixture(t)
	f.customer(t, "Ravi")
	f.lot(t, "LOT1", 3)
	sale := f.sale(t, "Ravi", "LOT1", 10, models.PaymentCash)
	require.NoError(t, f.engine.DeleteStock(f.ctx, "LOT1"))
	f.lot(t, "LOT1", 2)

	_, err := f.engine.DeleteSale(f.ctx, sale.SalesID, "admin")
	require.NoError(t, err)

	lot, err := f.engine.GetStock(f.ctx, "LOT1")
	require.NoError(t, err)
	assert.Equal(t, 2, lot.NumberOfBags)
	assert.Equal(t, 2, lot.RemainingBags)
}

func TestStock_ShrinkThenDeleteSalesStaysInBounds(t *testing.T) {
	f := newFixture(t)
	f.customer(t, "Ravi")
	f.lot(t, "LOT1", 3)
	s1 := f.sale(t, "Ravi", "LOT1", 10, models.PaymentCash)
	s2 := f.sale(t, "Ravi", "LOT1", 10, models.PaymentCash)
	_, err := f.engine.UpdateStock(f.ctx, "LOT1", services.StockUpdate{NumberOfBags: ptr(2), ModifiedBy: "m"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.remaining(t, "LOT1"))

	for _, s := range []*models.Sale{s1, s2} {
		_, err := f.engine.DeleteSale(f.ctx, s.SalesID, "admin")
		require.NoError(t, err)
		lot, err := f.engine.GetStock(f.ctx, "LOT1")
		require.NoError(t, err)
		assert.LessOrEqual(t, lot.RemainingBags, lot.NumberOfBags)
		assert.GreaterOrEqual(t, lot.RemainingBags, 0)
	}
	assert.Equal(t, 2, f.remaining(t, "LOT1"))
}

func TestStock_ListAvailable(t *testing.T) {
	f := newFixture(t)
	f.customer(t, "Ravi")
	f.lot(t, "LOT1", 1)
	f.lot(t, "LOT2", 2)
	f.sale(t, "Ravi", "LOT1", 10, models.PaymentCash)

	lots, err := f.engine.ListStocks(f.ctx, services.StockFilter{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "LOT2", lots[0].LotName)
}

func TestStock_UpdateRequiresModifiedBy(t *testing.T) {
	f := newFixture(t)
	lot := f.lot(t, "LOT1", 5)

	_, err := f.engine.UpdateStock(f.ctx, "LOT1", services.StockUpdate{Amount: ptr(int64(5)), ModifiedBy: "  "})
	assert.ErrorIs(t, err, services.ErrValidation)

	current, err := f.engine.GetStock(f.ctx, "LOT1")
	require.NoError(t, err)
	assert.Equal(t, lot.ModifiedBy, current.ModifiedBy)
	assert.Equal(t, lot.Amount, current.Amount)
	hist, err := f.engine.History(f.ctx, models.HistoryStock, "LOT1", 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
}
