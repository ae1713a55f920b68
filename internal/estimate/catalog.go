package estimate

import "github.com/shopspring/decimal"

// CatalogItem is an inventory entry an estimate line can be picked from.
type CatalogItem struct {
	ID        int64           `json:"id"`
	Name      string          `json:"item_name"`
	Type      string          `json:"item_type"`
	Dimension string          `json:"dimension"`
	Unit      string          `json:"unit"`
	BaseRate  decimal.Decimal `json:"base_rate"`
}

// LineItem copies the catalog name, unit and base rate into a new line.
func (c CatalogItem) LineItem(qty Number) LineItem {
	return LineItem{
		Name:     c.Name,
		Quantity: qty,
		Unit:     c.Unit,
		BaseRate: NumDecimal(c.BaseRate),
	}
}
