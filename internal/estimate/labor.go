package estimate

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Legacy daily rates used when the settings record carries none.
const (
	DefaultPrimaryDailyRate = 500
	DefaultHelperDailyRate  = 300
)

// ErrInvalidLaborRole marks a labor role record that breaks the input
// contract: a missing role name or a role listed twice.
var ErrInvalidLaborRole = eris.New("invalid labor role")

// LaborRole is one line of a dynamic labor plan.
type LaborRole struct {
	Role      string `json:"role" yaml:"role"`
	Count     Number `json:"count" yaml:"count"`
	DailyRate Number `json:"rate" yaml:"rate"`
}

// StaffRole is a catalog role with its default daily salary.
type StaffRole struct {
	Name          string          `json:"role_name"`
	DefaultSalary decimal.Decimal `json:"default_salary"`
}

// LaborPlan is either DynamicLabor or LegacyLabor.
type LaborPlan interface {
	// Cost returns the labor spend over days.
	Cost(days decimal.Decimal, settings Settings) decimal.Decimal
	laborPlan()
}

// DynamicLabor prices each role as count × daily rate × days.
type DynamicLabor struct {
	Roles []LaborRole
}

// LegacyLabor is the two-role welder/helper plan older estimates carry.
type LegacyLabor struct {
	Primary Number
	Helper  Number
}

func (DynamicLabor) laborPlan() {}
func (LegacyLabor) laborPlan()  {}

// Cost sums every role; zero-count roles contribute nothing.
func (p DynamicLabor) Cost(days decimal.Decimal, _ Settings) decimal.Decimal {
	total := decimal.Zero
	for _, r := range p.Roles {
		total = total.Add(r.Count.Decimal().Mul(r.DailyRate.Decimal()).Mul(days))
	}
	return total
}

// Persisted returns the roles worth storing, dropping zero-count entries.
func (p DynamicLabor) Persisted() []LaborRole {
	out := make([]LaborRole, 0, len(p.Roles))
	for _, r := range p.Roles {
		if r.Count.Decimal().IsZero() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Cost prices the primary and helper headcounts at the settings rates,
// defaulting to 500 and 300.
func (p LegacyLabor) Cost(days decimal.Decimal, settings Settings) decimal.Decimal {
	primaryRate := settings.LegacyPrimaryDailyRate.Or(decimal.NewFromInt(DefaultPrimaryDailyRate))
	helperRate := settings.LegacyHelperDailyRate.Or(decimal.NewFromInt(DefaultHelperDailyRate))

	perDay := p.Primary.Decimal().Mul(primaryRate).Add(p.Helper.Decimal().Mul(helperRate))
	return perDay.Mul(days)
}

// NewLaborPlan picks the plan variant once, at input construction. A
// non-empty role list is a dynamic plan; otherwise the legacy headcounts
// apply. Role records without a name, or with a duplicate name, are
// rejected here so the calculator never sees them.
func NewLaborPlan(roles []LaborRole, primary, helper Number) (LaborPlan, error) {
	if len(roles) == 0 {
		return LegacyLabor{Primary: primary, Helper: helper}, nil
	}

	seen := make(map[string]struct{}, len(roles))
	for i, r := range roles {
		name := strings.TrimSpace(r.Role)
		if name == "" {
			return nil, eris.Wrapf(ErrInvalidLaborRole, "labor role at index %d has no role name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, eris.Wrapf(ErrInvalidLaborRole, "labor role %q is listed more than once", name)
		}
		seen[name] = struct{}{}
	}

	return DynamicLabor{Roles: append([]LaborRole(nil), roles...)}, nil
}

// LaborPlanFromCounts builds a dynamic plan from the staff role catalog and
// a headcount per role name. Roles without a positive count are left out.
func LaborPlanFromCounts(catalog []StaffRole, counts map[string]Number) DynamicLabor {
	roles := make([]LaborRole, 0, len(catalog))
	for _, sr := range catalog {
		count := counts[sr.Name]
		if !count.Decimal().IsPositive() {
			continue
		}
		roles = append(roles, LaborRole{
			Role:      sr.Name,
			Count:     count,
			DailyRate: NumDecimal(sr.DefaultSalary),
		})
	}
	return DynamicLabor{Roles: roles}
}

// AggregateLabor returns plan's cost over days. A nil plan costs nothing.
func AggregateLabor(plan LaborPlan, days decimal.Decimal, settings Settings) decimal.Decimal {
	if plan == nil {
		return decimal.Zero
	}
	return plan.Cost(days, settings)
}
