package document

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/fabestimate/internal/estimate"
)

// Excel writes the estimate or invoice as a single-sheet workbook named
// after the document title. Amount cells hold numbers, not strings.
func (r *Renderer) Excel(clientName string, res estimate.Result, isFinal bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	v := r.view(clientName, res, isFinal)
	sheet := v.Title
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, eris.Wrap(err, "set sheet name")
	}

	widths := map[string]float64{"A": 40, "B": 10, "C": 10, "D": 18}
	for c, w := range widths {
		if err := f.SetColWidth(sheet, c, c, w); err != nil {
			return nil, eris.Wrapf(err, "set col width %s", c)
		}
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, eris.Wrap(err, "create bold style")
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, eris.Wrap(err, "create amount style")
	}

	set := func(cell string, value any) error {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return eris.Wrapf(err, "set cell %s", cell)
		}
		return nil
	}

	header := [][2]any{
		{"A1", v.Business},
		{"A2", v.Title},
		{"A3", "Client: " + v.Client},
		{"A4", "Date: " + v.Date},
		{"A6", "Description"},
		{"B6", "Qty"},
		{"C6", "Unit"},
		{"D6", fmt.Sprintf("Amount (%s)", v.CurrencyCode)},
	}
	for _, h := range header {
		if err := set(h[0].(string), h[1]); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheet, "A6", "D6", boldStyle); err != nil {
		return nil, eris.Wrap(err, "style header row")
	}

	rowNum := 7
	for _, item := range res.LineItems {
		cells := []struct {
			col   string
			value any
		}{
			{"A", item.Name},
			{"B", item.Quantity.Decimal().InexactFloat64()},
			{"C", item.Unit},
			{"D", item.TotalPrice.InexactFloat64()},
		}
		for _, c := range cells {
			if err := set(fmt.Sprintf("%s%d", c.col, rowNum), c.value); err != nil {
				return nil, err
			}
		}
		rowNum++
	}
	if rowNum > 7 {
		if err := f.SetCellStyle(sheet, "D7", fmt.Sprintf("D%d", rowNum-1), amountStyle); err != nil {
			return nil, eris.Wrap(err, "style amount column")
		}
	}

	rowNum++
	totals := []struct {
		label string
		value float64
	}{
		{"Material Cost", res.TotalMaterialCost.InexactFloat64()},
		{"Labor / Installation", res.LaborCost.InexactFloat64()},
		{"Grand Total", res.BillAmount.InexactFloat64()},
	}
	if !isFinal {
		totals = append(totals, struct {
			label string
			value float64
		}{"Advance Required", res.AdvanceAmount.InexactFloat64()})
	}
	for _, t := range totals {
		if err := set(fmt.Sprintf("C%d", rowNum), t.label); err != nil {
			return nil, err
		}
		if err := set(fmt.Sprintf("D%d", rowNum), t.value); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("C%d", rowNum), fmt.Sprintf("D%d", rowNum), boldStyle); err != nil {
			return nil, eris.Wrap(err, "style totals")
		}
		rowNum++
	}

	rowNum++
	if err := set(fmt.Sprintf("A%d", rowNum), v.Note); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, eris.Wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}
