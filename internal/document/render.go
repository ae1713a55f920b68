// Package document renders a computed estimate as a customer-facing
// estimate or invoice (HTML, PDF, spreadsheet) and as an internal profit
// report. Renderers only project estimate.Result; they never recompute it.
package document

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Simplici0/fabestimate/internal/estimate"
)

const (
	defaultBusinessName = "Galaxy Fabrication Experts"
	defaultCurrency     = "₹"
	defaultCurrencyCode = "INR"
	placeholderClient   = "Client"

	estimateNote = "NOTE: This is an estimate only. Final rates may vary based on actual site conditions. Valid for 7 days."
	invoiceNote  = "Thank you for your business!"

	// DateLayout is the en-IN short date used in every document header.
	DateLayout = "2 Jan 2006"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// Options configures a Renderer. Zero values fall back to the defaults.
type Options struct {
	BusinessName   string
	CurrencySymbol string
	CurrencyCode   string
	Now            func() time.Time
}

// Renderer turns an estimate.Result into printable documents.
type Renderer struct {
	business     string
	currency     string
	currencyCode string
	now          func() time.Time
}

// NewRenderer creates a Renderer from opts.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		business:     opts.BusinessName,
		currency:     opts.CurrencySymbol,
		currencyCode: opts.CurrencyCode,
		now:          opts.Now,
	}
	if r.business == "" {
		r.business = defaultBusinessName
	}
	if r.currency == "" {
		r.currency = defaultCurrency
	}
	if r.currencyCode == "" {
		r.currencyCode = defaultCurrencyCode
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

type documentRow struct {
	Description string
	Qty         string
	Unit        string
	BaseRate    string
	Amount      string
}

type documentView struct {
	Business      string
	Client        string
	Date          string
	Title         string
	Currency      string
	CurrencyCode  string
	Rows          []documentRow
	MaterialCost  string
	LaborCost     string
	ProjectCost   string
	GrandTotal    string
	Advance       string
	Profit        string
	MarginPercent string
	Days          string
	IsFinal       bool
	Note          string
}

func clientOrPlaceholder(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return placeholderClient
	}
	return name
}

func title(isFinal bool) string {
	if isFinal {
		return "INVOICE"
	}
	return "ESTIMATE"
}

func (r *Renderer) view(clientName string, res estimate.Result, isFinal bool) documentView {
	rows := make([]documentRow, 0, len(res.LineItems))
	for _, item := range res.LineItems {
		rows = append(rows, documentRow{
			Description: item.Name,
			Qty:         item.Quantity.Decimal().String(),
			Unit:        item.Unit,
			BaseRate:    Fixed(item.UnitPrice),
			Amount:      Fixed(item.TotalPrice),
		})
	}

	note := estimateNote
	if isFinal {
		note = invoiceNote
	}

	return documentView{
		Business:      r.business,
		Client:        clientOrPlaceholder(clientName),
		Date:          r.now().Format(DateLayout),
		Title:         title(isFinal),
		Currency:      r.currency,
		CurrencyCode:  r.currencyCode,
		Rows:          rows,
		MaterialCost:  Fixed(res.TotalMaterialCost),
		LaborCost:     Fixed(res.LaborCost),
		ProjectCost:   Fixed(res.TotalProjectCost),
		GrandTotal:    Grouped(res.BillAmount),
		Advance:       Grouped(res.AdvanceAmount),
		Profit:        Fixed(res.Profit),
		MarginPercent: res.ProfitMarginPercent.String(),
		Days:          res.Days.String(),
		IsFinal:       isFinal,
		Note:          note,
	}
}

// Render writes the customer document: an ESTIMATE with the advance due, or
// a final INVOICE. The current date appears once, inside
// <span class="date">.
func (r *Renderer) Render(w io.Writer, clientName string, res estimate.Result, isFinal bool) error {
	if err := templates.ExecuteTemplate(w, "document.html.tmpl", r.view(clientName, res, isFinal)); err != nil {
		return eris.Wrap(err, "render document")
	}
	return nil
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(clientName string, res estimate.Result, isFinal bool) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, clientName, res, isFinal); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderInternalReport writes the confidential cost and profit breakdown.
func (r *Renderer) RenderInternalReport(w io.Writer, clientName string, res estimate.Result) error {
	if err := templates.ExecuteTemplate(w, "report.html.tmpl", r.view(clientName, res, false)); err != nil {
		return eris.Wrap(err, "render internal report")
	}
	return nil
}
