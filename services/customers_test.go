package services_test

import (
	"testing"
	"time"

	"mandi-backend/models"
	"mandi-backend/notify"
	"mandi-backend/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomer_DuplicateName(t *testing.T) {
	f := newFixture(t)
	f.customer(t, "Ravi")

	_, err := f.engine.CreateCustomer(f.ctx, services.NewCustomer{CustomerName: "Ravi"})
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestCustomer_UpdateContactFieldsOnly(t *testing.T) {
	// GIVEN: Ravi with a 500 balance
	// WHEN: His village changes, and separately someone tries to set the balance
	// THEN: The village is updated with history; the balance write is refused

	f := newFixture(t)
	f.customer(t, "Ravi")
	f.lot(t, "LOT1", 2)
	f.sale(t, "Ravi", "LOT1", 500, models.PaymentCredit)

	c, err := f.engine.UpdateCustomer(f.ctx, "Ravi", services.CustomerUpdate{VillageName: ptr("Kolar"), ModifiedBy: "manager"})
	require.NoError(t, err)
	assert.Equal(t, "Kolar", c.VillageName)
	assert.Equal(t, int64(500), c.Balance)

	_, err = f.engine.UpdateCustomer(f.ctx, "Ravi", services.CustomerUpdate{Balance: ptr(int64(0)), ModifiedBy: "manager"})
	assert.ErrorIs(t, err, services.ErrBusinessRule)
	_, err = f.engine.UpdateCustomer(f.ctx, "Ravi", services.CustomerUpdate{CustomerName: ptr("Ravi K"), ModifiedBy: "manager"})
	assert.ErrorIs(t, err, services.ErrBusinessRule)
	assert.Equal(t, int64(500), f.balance(t, "Ravi"))

	hist, err := f.engine.History(f.ctx, models.HistoryCustomer, "", 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "Ravi", hist[0].EntityKey)
	assert.Equal(t, "Kolar", hist[0].MergedData["villageName"])
}

func TestCustomer_ListByGroup(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CreateCustomer(f.ctx, services.NewCustomer{CustomerName: "A", GroupName: "north"})
	require.NoError(t, err)
	_, err = f.engine.CreateCustomer(f.ctx, services.NewCustomer{CustomerName: "B", GroupName: "south"})
	require.NoError(t, err)

	got, err := f.engine.ListCustomers(f.ctx, "north")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].CustomerName)
}

func TestCustomerStatement_EnrichesSaleEntries(t *testing.T) {
	// GIVEN: A credit sale of 42.5 kg tomato, a payment, and a second sale
	//        that is later deleted
	// WHEN: The statement is read
	// THEN: Sale entries carry lot, kgs, price and vegetable; the deleted
	//       one is flagged

	f := newFixture(t)
	f.customer(t, "Ravi")
	f.lot(t, "LOT1", 5)

	in := saleInput("Ravi", "LOT1", 0, models.PaymentCredit)
	in.NumberOfKgs = decimal.RequireFromString("42.5")
	in.PricePerKg = 20
	first, err := f.engine.CreateSale(f.ctx, in)
	require.NoError(t, err)
	_, err = f.engine.CreateCredit(f.ctx, services.NewCredit{CustomerName: "Ravi", CreditAmount: 100, CreatedBy: "clerk"})
	require.NoError(t, err)
	second := f.sale(t, "Ravi", "LOT1", 300, models.PaymentCredit)
	_, err = f.engine.DeleteSale(f.ctx, second.SalesID, "admin")
	require.NoError(t, err)

	st, err := f.engine.CustomerStatement(f.ctx, "Ravi")
	require.NoError(t, err)
	assert.Equal(t, int64(1050), st.Customer.Balance)
	require.Len(t, st.Ledger, 3)

	bySale := map[string]services.StatementEntry{}
	for _, e := range st.Ledger {
		if e.Type == models.LedgerSale {
			bySale[e.ReferenceID] = e
		}
	}
	line := bySale[first.SalesID].Sale
	require.NotNil(t, line)
	assert.Equal(t, "LOT1", line.LotName)
	assert.True(t, decimal.RequireFromString("42.5").Equal(line.NumberOfKgs))
	assert.Equal(t, int64(20), line.PricePerKg)
	assert.Equal(t, "Tomato", line.VegetableName)
	assert.False(t, line.Deleted)

	gone := bySale[second.SalesID].Sale
	require.NotNil(t, gone)
	assert.True(t, gone.Deleted)
}

func TestCustomerStatement_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CustomerStatement(f.ctx, "Nobody")
	assert.Equal(t, services.CodeCustomerNotFound, services.CodeOf(err))
}

func TestEngine_PublishesAfterCommit(t *testing.T) {
	// GIVEN: A subscriber on the hub
	// WHEN: A sale succeeds and another one fails
	// THEN: Exactly one new-sale event arrives

	f := newFixture(t)
	f.customer(t, "Ravi")
	f.lot(t, "LOT1", 1)
	events, cancel := f.hub.Subscribe(4)
	defer cancel()

	sale := f.sale(t, "Ravi", "LOT1", 10, models.PaymentCredit)
	_, err := f.engine.CreateSale(f.ctx, saleInput("Ravi", "LOT1", 10, models.PaymentCredit))
	require.Error(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, notify.EventNewSale, ev.Type)
		got, ok := ev.Data.(models.Sale)
		require.True(t, ok)
		assert.Equal(t, sale.SalesID, got.SalesID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %q", ev.Type)
	default:
	}
}

func TestCustomer_UpdateRequiresModifiedBy(t *testing.T) {
	f := newFixture(t)
	f.customer(t, "Ravi")

	_, err := f.engine.UpdateCustomer(f.ctx, "Ravi", services.CustomerUpdate{VillageName: ptr("Kolar")})
	assert.ErrorIs(t, err, services.ErrValidation)

	c, err := f.engine.GetCustomer(f.ctx, "Ravi")
	require.NoError(t, err)
	assert.Empty(t, c.VillageName)
	hist, err := f.engine.History(f.ctx, models.HistoryCustomer, "Ravi", 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
}
