package estimate

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Number is an optional numeric field read from a loosely-typed record.
// Absent, null, empty and unparseable values all decode to an unset Number,
// so callers pick the documented default once with Or.
type Number struct {
	value decimal.Decimal
	set   bool
}

// Bounds on accepted numbers. Values outside them would make rounding
// rescale to arbitrarily large integers.
const (
	maxExponent          = 28
	maxCoefficientDigits = 28
)

// maxCoefficient is 10^maxCoefficientDigits; coefficients must stay below it.
var maxCoefficient = decimal.New(1, maxCoefficientDigits).BigInt()

// Num returns a set Number holding v. NaN and infinities yield an unset
// Number.
func Num(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{value: decimal.NewFromFloat(v), set: true}
}

// NumDecimal returns a set Number holding d.
func NumDecimal(d decimal.Decimal) Number {
	return Number{value: d, set: true}
}

// ParseNumber coerces s into a Number. Anything decimal.NewFromString
// rejects, and anything with an exponent beyond ±28 or more than 28
// significant digits, yields an unset Number.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !inBounds(d) {
		return Number{}
	}
	return Number{value: d, set: true}
}

func inBounds(d decimal.Decimal) bool {
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return false
	}
	c := d.Coefficient()
	return c.CmpAbs(maxCoefficient) < 0
}

// IsSet reports whether the field carried a usable number.
func (n Number) IsSet() bool { return n.set }

// Decimal returns the value, or zero when unset.
func (n Number) Decimal() decimal.Decimal {
	if !n.set {
		return decimal.Zero
	}
	return n.value
}

// Or returns the value, or def when unset.
func (n Number) Or(def decimal.Decimal) decimal.Decimal {
	if !n.set {
		return def
	}
	return n.value
}

func (n Number) String() string {
	if !n.set {
		return ""
	}
	return n.value.String()
}

// MarshalJSON writes a bare JSON number, or null when unset.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return []byte(n.value.String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null. It never fails:
// malformed values leave the Number unset.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*n = ParseNumber(s)
		return nil
	}
	*n = ParseNumber(raw)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML scalars.
func (n *Number) UnmarshalYAML(node *yaml.Node) error {
	*n = Number{}
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return nil
	}
	*n = ParseNumber(node.Value)
	return nil
}
