package estimate

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLaborPlan_DynamicRoles(t *testing.T) {
	t.Parallel()

	plan, err := NewLaborPlan([]LaborRole{{Role: "Welder", Count: Num(2), DailyRate: Num(500)}}, Num(9), Num(9))
	require.NoError(t, err)
	require.IsType(t, DynamicLabor{}, plan)

	assertDecimal(t, "labor", "3000", AggregateLabor(plan, decimal.NewFromInt(3), Settings{}))
}

func TestNewLaborPlan_LegacyFallback(t *testing.T) {
	t.Parallel()

	plan, err := NewLaborPlan(nil, Num(2), Num(1))
	require.NoError(t, err)
	require.IsType(t, LegacyLabor{}, plan)

	assertDecimal(t, "default rates", "3900", AggregateLabor(plan, decimal.NewFromInt(3), Settings{}))

	custom := Settings{LegacyPrimaryDailyRate: Num(600), LegacyHelperDailyRate: Num(350)}
	assertDecimal(t, "settings rates", "4650", AggregateLabor(plan, decimal.NewFromInt(3), custom))
}

func TestNewLaborPlan_EmptyListUsesLegacy(t *testing.T) {
	t.Parallel()

	plan, err := NewLaborPlan([]LaborRole{}, Num(1), Number{})
	require.NoError(t, err)
	assert.IsType(t, LegacyLabor{}, plan)
}

func TestNewLaborPlan_RejectsBadRoles(t *testing.T) {
	t.Parallel()

	_, err := NewLaborPlan([]LaborRole{{Role: " ", Count: Num(1)}}, Number{}, Number{})
	assert.True(t, eris.Is(err, ErrInvalidLaborRole))

	_, err = NewLaborPlan([]LaborRole{
		{Role: "Welder", Count: Num(1)},
		{Role: "Welder", Count: Num(2)},
	}, Number{}, Number{})
	assert.True(t, eris.Is(err, ErrInvalidLaborRole))
}

func TestDynamicLabor_ZeroAndMalformedCounts(t *testing.T) {
	t.Parallel()

	var roles []LaborRole
	require.NoError(t, json.Unmarshal([]byte(`[
		{"role": "Welder", "count": 1, "rate": "500"},
		{"role": "Painter", "count": 0, "rate": 450},
		{"role": "Fitter", "count": "two", "rate": 400}
	]`), &roles))

	plan := DynamicLabor{Roles: roles}
	assertDecimal(t, "labor", "1000", plan.Cost(decimal.NewFromInt(2), Settings{}))

	persisted := plan.Persisted()
	require.Len(t, persisted, 1)
	assert.Equal(t, "Welder", persisted[0].Role)
}

func TestAggregateLabor_NilPlan(t *testing.T) {
	t.Parallel()
	assert.True(t, AggregateLabor(nil, decimal.NewFromInt(5), Settings{}).IsZero())
}

func TestLaborPlanFromCounts(t *testing.T) {
	t.Parallel()

	catalog := []StaffRole{
		{Name: "Welder", DefaultSalary: decimal.NewFromInt(500)},
		{Name: "Helper", DefaultSalary: decimal.NewFromInt(300)},
		{Name: "Painter", DefaultSalary: decimal.NewFromInt(450)},
	}
	plan := LaborPlanFromCounts(catalog, map[string]Number{
		"Welder":  Num(2),
		"Painter": Num(0),
		"Ghost":   Num(4),
	})

	require.Len(t, plan.Roles, 1)
	assert.Equal(t, "Welder", plan.Roles[0].Role)
	assertDecimal(t, "rate", "500", plan.Roles[0].DailyRate.Decimal())
	assertDecimal(t, "labor", "1000", plan.Cost(decimal.NewFromInt(1), Settings{}))
}

func TestCatalogItem_LineItem(t *testing.T) {
	t.Parallel()

	item := CatalogItem{Name: "MS Angle 25x25", Unit: "ft", BaseRate: decimal.RequireFromString("40.5")}
	line := item.LineItem(Num(10))

	assert.Equal(t, "MS Angle 25x25", line.Name)
	assert.Equal(t, "ft", line.Unit)
	assertDecimal(t, "base rate", "40.5", line.BaseRate.Decimal())
}

func TestNumber_PermissiveDecoding(t *testing.T) {
	t.Parallel()

	var rec struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": "4.5", "c": null, "d": "n/a", "e": true}`), &rec))

	assertDecimal(t, "a", "3", rec.A.Decimal())
	assertDecimal(t, "b", "4.5", rec.B.Decimal())
	assert.False(t, rec.C.IsSet())
	assert.False(t, rec.D.IsSet())
	assert.False(t, rec.E.IsSet())
	assertDecimal(t, "default", "7", rec.D.Or(decimal.NewFromInt(7)))
}

func TestParseNumber_RejectsOutOfRangeValues(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"1e20000000",
		"1e29",
		"1e-29",
		"12345678901234567890123456789",
		"-1e20000000",
	} {
		assert.False(t, ParseNumber(s).IsSet(), s)
	}
	for _, s := range []string{"1e28", "-1e-28", "1234567890123456789012345678", "0.5"} {
		assert.True(t, ParseNumber(s).IsSet(), s)
	}
}

func TestCompute_HugeExponentsFallBackToDefaults(t *testing.T) {
	t.Parallel()

	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{
		"items": [{"name": "Rail", "qty": "1e20000000", "base_rate": "1e20000000"}],
		"days": 1e20000000
	}`), &req))

	start := time.Now()
	res, err := ComputeRequest(req, Settings{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, res.BillAmount.IsZero())
	assertDecimal(t, "days", "1", res.Days)

	_, err = ResolveMargin(BareMargin("1e20000000"), Number{})
	assert.True(t, eris.Is(err, ErrInvalidMargin))
}

func TestNum_NonFiniteIsUnset(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.NotPanics(t, func() { Num(v) })
		assert.False(t, Num(v).IsSet())
	}
}
