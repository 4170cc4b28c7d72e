package reports

import (
	"fmt"

	"mandi-backend/models"

	"github.com/xuri/excelize/v2"
)

const (
	salesSheet = "Sales"
	kuliSheet  = "Kuli"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	salesHeadings = []string{"Sales ID", "Date", "Customer", "Lot", "Kgs", "Price/Kg", "Payment", "Total", "Kuli", "Created By"}
	kuliHeadings  = []string{"Customer", "Bags", "Kgs", "Amount"}
)

// SalesWorkbook renders the sales list and the kuli summary as an xlsx
// workbook with one sheet each.
func SalesWorkbook(sales []models.Sale, kuli KuliReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(kuliSheet); err != nil {
		return nil, err
	}

	if err := writeRow(f, salesSheet, 1, toAny(salesHeadings)); err != nil {
		return nil, err
	}
	for i, s := range sales {
		row := []any{
			s.SalesID,
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.CustomerName,
			s.LotName,
			s.NumberOfKgs.InexactFloat64(),
			s.PricePerKg,
			s.PaymentType,
			s.TotalAmount,
			yesNo(s.Kuli),
			s.CreatedBy,
		}
		if err := writeRow(f, salesSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, kuliSheet, 1, toAny(kuliHeadings)); err != nil {
		return nil, err
	}
	for i, r := range kuli.Rows {
		if err := writeRow(f, kuliSheet, i+2, []any{r.CustomerName, r.Bags, r.Kgs.InexactFloat64(), r.Amount}); err != nil {
			return nil, err
		}
	}
	total := []any{"Total", kuli.Bags, kuli.Kgs.InexactFloat64()}
	if err := writeRow(f, kuliSheet, len(kuli.Rows)+2, total); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRow(f *excelize.File, sheet string, rowNo int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNo, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
