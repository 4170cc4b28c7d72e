package services_test

import (
	"regexp"
	"testing"
	"time"

	"mandi-backend/services"

	"github.com/stretchr/testify/assert"
)

func TestIDs(t *testing.T) {
	at := time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC)

	assert.Regexp(t, regexp.MustCompile(`^RAVI-LOT_1-20240309-[0-9a-f]{6}$`), services.NewSalesID("Ravi", "lot 1", at))
	assert.Regexp(t, regexp.MustCompile(`^CR-RAVI_KUMAR-20240309-[0-9a-f]{6}$`), services.NewCreditID(" Ravi  Kumar ", at))
	assert.Regexp(t, regexp.MustCompile(`^SURESH-GREEN_CHILLI-8-[0-9a-f]{6}$`), services.NewLotName("Suresh", "Green-Chilli", 8))

	assert.NotEqual(t, services.NewSalesID("a", "b", at), services.NewSalesID("a", "b", at))
}

func TestErrorTaxonomy(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.GetSale(f.ctx, "x")
	assert.True(t, services.IsNotFound(err))
	assert.False(t, services.IsClientError(err))
	assert.False(t, services.IsRetryable(err))
	assert.Contains(t, err.Error(), `"x"`)
}
