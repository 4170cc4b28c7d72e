package reports

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"mandi-backend/models"
	"mandi-backend/utils"
)

// BalanceMessage is the reminder text sent to a customer about what they owe.
func BalanceMessage(business string, c models.Customer, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Namaste %s,\n", c.CustomerName)
	if c.Balance > 0 {
		fmt.Fprintf(&b, "Your outstanding balance as of %s is Rs. %d.\n", at.Format("02-01-2006"), c.Balance)
	} else {
		fmt.Fprintf(&b, "You have no outstanding balance as of %s.\n", at.Format("02-01-2006"))
	}
	if business != "" {
		fmt.Fprintf(&b, "- %s", business)
	}
	return strings.TrimRight(b.String(), "\n")
}

// WhatsAppLink builds a wa.me click-to-chat link with the message prefilled.
func WhatsAppLink(phone, region, message string) (string, error) {
	e164, err := utils.NormalizePhone(phone, region)
	if err != nil {
		return "", err
	}
	if e164 == "" {
		return "", utils.ErrInvalidPhone
	}
	return "https://wa.me/" + strings.TrimPrefix(e164, "+") + "?text=" + url.QueryEscape(message), nil
}
