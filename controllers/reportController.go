package controllers

import (
	"fmt"

	"mandi-backend/reports"
	"mandi-backend/services"

	"github.com/gofiber/fiber/v2"
)

// KuliReport counts kuli bags per customer for ?date (default today).
func (h *Handler) KuliReport(c *fiber.Ctx) error {
	day, err := queryDate(c, "date")
	if err != nil {
		return err
	}
	if day.IsZero() {
		day = h.now()
	}
	start, end := reports.DayRange(day, nil)

	kuli := true
	sales, err := h.Engine.ListSales(c.UserContext(), services.SaleFilter{Kuli: &kuli, From: start, To: end})
	if err != nil {
		return err
	}
	return c.JSON(reports.BuildKuli(start.Format(dateLayout), sales))
}

// SalesExport streams an xlsx of the sales between ?from and ?to
// (inclusive, default today) with a kuli summary sheet.
func (h *Handler) SalesExport(c *fiber.Ctx) error {
	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return err
	}
	if from.IsZero() {
		from, _ = reports.DayRange(h.now(), nil)
	}
	if to.IsZero() {
		to = from
	}
	end := to.AddDate(0, 0, 1)

	sales, err := h.Engine.ListSales(c.UserContext(), services.SaleFilter{From: from, To: end})
	if err != nil {
		return err
	}
	label := from.Format(dateLayout)
	if !to.Equal(from) {
		label += "_" + to.Format(dateLayout)
	}

	f, err := reports.SalesWorkbook(sales, reports.BuildKuli(label, sales))
	if err != nil {
		return err
	}
	defer f.Close()

	c.Set(fiber.HeaderContentType, reports.ContentTypeXLSX)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="sales_%s.xlsx"`, label))
	return f.Write(c)
}
