package document

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/rotisserie/eris"

	"github.com/Simplici0/fabestimate/internal/estimate"
)

// The core PDF fonts are latin-1 only, so amounts carry "Rs." instead of
// the rupee sign.
const pdfCurrency = "Rs. "

// PDF renders the same estimate or invoice as Render onto an A4 page.
func (r *Renderer) PDF(clientName string, res estimate.Result, isFinal bool) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)
	v := r.view(clientName, res, isFinal)

	addPDFHeader(m, v)
	addPDFItemTable(m, v)
	addPDFTotals(m, v)
	addPDFFooter(m, v)

	doc, err := m.Generate()
	if err != nil {
		return nil, eris.Wrap(err, "generate document PDF")
	}
	return doc.GetBytes(), nil
}

// addPDFHeader adds the business name, title, client and date.
func addPDFHeader(m core.Maroto, v documentView) {
	m.AddRows(
		row.New(10).Add(
			col.New(8).Add(
				text.New(v.Business, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
			col.New(4).Add(
				text.New(v.Title, props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: &props.Color{Red: 33, Green: 37, Blue: 41},
				}),
			),
		),
	)

	meta := props.Text{Size: 9, Align: align.Left, Color: &props.Color{Red: 85, Green: 85, Blue: 85}}
	m.AddRows(
		row.New(7).Add(
			col.New(8).Add(text.New("Client: "+v.Client, meta)),
			col.New(4).Add(text.New("Date: "+v.Date, props.Text{Size: 9, Align: align.Right})),
		),
	)

	m.AddRows(row.New(4))
}

// addPDFItemTable adds the description/qty/unit/amount table.
func addPDFItemTable(m core.Maroto, v documentView) {
	headerBg := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	head := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}
	headCenter := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}
	headRight := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(text.New("Description", head)).WithStyle(headerBg),
			col.New(2).Add(text.New("Qty", headCenter)).WithStyle(headerBg),
			col.New(1).Add(text.New("Unit", headCenter)).WithStyle(headerBg),
			col.New(3).Add(text.New(fmt.Sprintf("Amount (%s)", v.CurrencyCode), headRight)).WithStyle(headerBg),
		),
	)

	cell := props.Text{Size: 9, Align: align.Left}
	center := props.Text{Size: 9, Align: align.Center}
	right := props.Text{Size: 9, Align: align.Right}
	for _, r := range v.Rows {
		m.AddRows(
			row.New(7).Add(
				col.New(6).Add(text.New(r.Description, cell)),
				col.New(2).Add(text.New(r.Qty, center)),
				col.New(1).Add(text.New(r.Unit, center)),
				col.New(3).Add(text.New(r.Amount, right)),
			),
		)
	}

	m.AddRows(row.New(4))
}

// addPDFTotals adds material, labor, grand total and, for estimates, the advance.
func addPDFTotals(m core.Maroto, v documentView) {
	label := props.Text{Size: 9, Align: align.Right}
	value := props.Text{Size: 9, Align: align.Right}
	bold := props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}

	lines := []struct {
		label string
		value string
		style props.Text
	}{
		{"Material Cost", pdfCurrency + v.MaterialCost, value},
		{"Labor / Installation", pdfCurrency + v.LaborCost, value},
		{"Grand Total", pdfCurrency + v.GrandTotal, bold},
	}
	if !v.IsFinal {
		lines = append(lines, struct {
			label string
			value string
			style props.Text
		}{"Advance Required", pdfCurrency + v.Advance, value})
	}

	for _, l := range lines {
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(l.label, label)),
				col.New(4).Add(text.New(l.value, l.style)),
			),
		)
	}
}

// addPDFFooter adds the closing note.
func addPDFFooter(m core.Maroto, v documentView) {
	m.AddRows(row.New(8))
	m.AddRows(
		row.New(10).Add(
			col.New(12).Add(
				text.New(v.Note, props.Text{
					Size:  8,
					Style: fontstyle.Italic,
					Align: align.Left,
					Color: &props.Color{Red: 119, Green: 119, Blue: 119},
				}),
			),
		),
	)
}
