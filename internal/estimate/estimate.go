// Package estimate prices a fabrication estimate: line items plus a labor
// plan, marked up by a profit margin and split into an advance payment.
//
// Every function here is pure. Amounts are decimal so the totals add up
// exactly; the bill and the advance are rounded half away from zero to a
// whole currency unit.
package estimate

import (
	"github.com/shopspring/decimal"
)

// DefaultAdvancePercent applies when the settings carry no advance percent.
const DefaultAdvancePercent = 10

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Settings are the process-wide pricing defaults supplied per call.
type Settings struct {
	DefaultProfitMarginPercent Number `json:"profit_margin" yaml:"profit_margin"`
	AdvancePercent             Number `json:"advance_percentage" yaml:"advance_percentage"`
	LegacyPrimaryDailyRate     Number `json:"welder_daily_rate" yaml:"welder_daily_rate"`
	LegacyHelperDailyRate      Number `json:"helper_daily_rate" yaml:"helper_daily_rate"`
}

// LineItem is one priced material or service entry.
type LineItem struct {
	Name     string `json:"name" yaml:"name"`
	Quantity Number `json:"qty" yaml:"qty"`
	Unit     string `json:"unit" yaml:"unit"`
	BaseRate Number `json:"base_rate" yaml:"base_rate"`
}

// PricedItem is a LineItem with its computed totals.
type PricedItem struct {
	LineItem
	TotalPrice decimal.Decimal `json:"total_price"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// Input is everything Compute needs.
type Input struct {
	Items    []LineItem
	Days     Number
	Margin   MarginOverride
	Settings Settings
	Labor    LaborPlan
}

// Result is the full breakdown of a computed estimate.
type Result struct {
	LineItems           []PricedItem    `json:"items_with_totals"`
	TotalMaterialCost   decimal.Decimal `json:"total_material_base_cost"`
	LaborCost           decimal.Decimal `json:"labor_actual_cost"`
	TotalProjectCost    decimal.Decimal `json:"total_project_cost"`
	Profit              decimal.Decimal `json:"total_profit"`
	BillAmount          decimal.Decimal `json:"bill_amount"`
	AdvanceAmount       decimal.Decimal `json:"advance_amount"`
	ProfitMarginPercent decimal.Decimal `json:"profit_margin"`
	AdvancePercent      decimal.Decimal `json:"advance_percentage"`
	Days                decimal.Decimal `json:"days"`
}

// EffectiveDays clamps the labor duration: unset, unparseable, zero or
// negative days count as one day.
func EffectiveDays(days Number) decimal.Decimal {
	if !days.IsSet() || !days.Decimal().IsPositive() {
		return one
	}
	return days.Decimal()
}

// Compute prices in. It fails only when a bare margin override is not a
// number; empty item and labor lists produce an all-zero estimate.
func Compute(in Input) (Result, error) {
	margin, err := ResolveMargin(in.Margin, in.Settings.DefaultProfitMarginPercent)
	if err != nil {
		return Result{}, err
	}

	items := make([]PricedItem, 0, len(in.Items))
	material := decimal.Zero
	for _, item := range in.Items {
		rate := item.BaseRate.Decimal()
		total := item.Quantity.Decimal().Mul(rate)
		material = material.Add(total)
		items = append(items, PricedItem{
			LineItem:   item,
			TotalPrice: total,
			UnitPrice:  rate,
		})
	}

	days := EffectiveDays(in.Days)
	labor := AggregateLabor(in.Labor, days, in.Settings)
	projectCost := material.Add(labor)

	bill := projectCost.Mul(hundred.Add(margin)).Shift(-2).Round(0)

	advancePct := in.Settings.AdvancePercent.Or(decimal.NewFromInt(DefaultAdvancePercent))
	advance := bill.Mul(advancePct).Shift(-2).Round(0)

	return Result{
		LineItems:           items,
		TotalMaterialCost:   material,
		LaborCost:           labor,
		TotalProjectCost:    projectCost,
		Profit:              bill.Sub(projectCost),
		BillAmount:          bill,
		AdvanceAmount:       advance,
		ProfitMarginPercent: margin,
		AdvancePercent:      advancePct,
		Days:                days,
	}, nil
}
