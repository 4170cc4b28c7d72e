package services

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// randomSuffix returns 6 hex characters taken from a v4 UUID.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// slug keeps letters and digits, upper-cased, so generated keys are URL safe.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// NewLotName builds FARMER-VEGETABLE-<bags>-<rand>.
func NewLotName(farmer, vegetable string, bags int) string {
	return strings.Join([]string{slug(farmer), slug(vegetable), strconv.Itoa(bags), randomSuffix()}, "-")
}

// NewSalesID builds CUSTOMER-LOT-YYYYMMDD-<rand>.
func NewSalesID(customer, lot string, at time.Time) string {
	return strings.Join([]string{slug(customer), slug(lot), at.Format("20060102"), randomSuffix()}, "-")
}

// NewCreditID builds CR-CUSTOMER-YYYYMMDD-<rand>.
func NewCreditID(customer string, at time.Time) string {
	return strings.Join([]string{"CR", slug(customer), at.Format("20060102"), randomSuffix()}, "-")
}
