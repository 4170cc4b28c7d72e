package reports

import (
	"sort"
	"time"

	"mandi-backend/models"

	"github.com/shopspring/decimal"
)

// KuliRow is one customer's kuli bag count for a day.
type KuliRow struct {
	CustomerName string          `json:"customerName"`
	Bags         int             `json:"bags"`
	Kgs          decimal.Decimal `json:"kgs"`
	Amount       int64           `json:"amount"`
}

type KuliReport struct {
	Date string          `json:"date"`
	Rows []KuliRow       `json:"rows"`
	Bags int             `json:"totalBags"`
	Kgs  decimal.Decimal `json:"totalKgs"`
}

// DayRange returns [start, end) of the calendar day of t in loc.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// BuildKuli counts kuli sales per customer. Sales without the kuli flag
// are ignored. Rows are ordered by customer name.
func BuildKuli(date string, sales []models.Sale) KuliReport {
	byCustomer := map[string]*KuliRow{}
	rep := KuliReport{Date: date, Kgs: decimal.Zero}
	for _, s := range sales {
		if !s.Kuli {
			continue
		}
		row, ok := byCustomer[s.CustomerName]
		if !ok {
			row = &KuliRow{CustomerName: s.CustomerName, Kgs: decimal.Zero}
			byCustomer[s.CustomerName] = row
		}
		row.Bags++
		row.Kgs = row.Kgs.Add(s.NumberOfKgs)
		row.Amount += s.TotalAmount
		rep.Bags++
		rep.Kgs = rep.Kgs.Add(s.NumberOfKgs)
	}

	rep.Rows = make([]KuliRow, 0, len(byCustomer))
	for _, r := range byCustomer {
		rep.Rows = append(rep.Rows, *r)
	}
	sort.Slice(rep.Rows, func(i, j int) bool { return rep.Rows[i].CustomerName < rep.Rows[j].CustomerName })
	return rep
}
