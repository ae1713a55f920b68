package estimate

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultProfitMarginPercent applies when neither the estimate nor the
// global settings carry a margin.
const DefaultProfitMarginPercent = 15

// ErrInvalidMargin is returned when a bare margin override cannot be read
// as a number.
var ErrInvalidMargin = eris.New("invalid profit margin")

type marginKind int

const (
	marginAbsent marginKind = iota
	marginBare
	marginStructured
)

// MarginOverride is the per-estimate margin: absent, a bare percent (number
// or numeric string), or a structured {"profit_margin": n} object.
type MarginOverride struct {
	kind    marginKind
	raw     string
	percent Number
}

// BareMargin returns an override holding an uncoerced scalar.
func BareMargin(raw string) MarginOverride {
	return MarginOverride{kind: marginBare, raw: raw}
}

// BareMarginPercent returns a bare override of v percent.
func BareMarginPercent(v float64) MarginOverride {
	return BareMargin(strconv.FormatFloat(v, 'f', -1, 64))
}

// StructuredMargin returns an object override; an unset percent falls
// through to the global default.
func StructuredMargin(percent Number) MarginOverride {
	return MarginOverride{kind: marginStructured, percent: percent}
}

// IsAbsent reports whether no override was supplied.
func (m MarginOverride) IsAbsent() bool { return m.kind == marginAbsent }

// ResolveMargin returns the effective profit margin percent.
//
// An absent override yields globalDefault, else 15. A structured override
// yields its own percent, else globalDefault, else 15. A bare override is
// coerced and returned as-is, zero included; only absence triggers the
// fallback chain.
func ResolveMargin(override MarginOverride, globalDefault Number) (decimal.Decimal, error) {
	fallback := globalDefault.Or(decimal.NewFromInt(DefaultProfitMarginPercent))

	switch override.kind {
	case marginStructured:
		return override.percent.Or(fallback), nil
	case marginBare:
		n := ParseNumber(override.raw)
		if !n.IsSet() {
			return decimal.Zero, eris.Wrapf(ErrInvalidMargin, "margin override %q is not a number", override.raw)
		}
		return n.Decimal(), nil
	default:
		return fallback, nil
	}
}

type structuredMargin struct {
	ProfitMargin Number `json:"profit_margin" yaml:"profit_margin"`
}

// MarshalJSON writes the override back in the shape it was read.
func (m MarginOverride) MarshalJSON() ([]byte, error) {
	switch m.kind {
	case marginStructured:
		return json.Marshal(structuredMargin{ProfitMargin: m.percent})
	case marginBare:
		if n := ParseNumber(m.raw); n.IsSet() {
			return []byte(n.String()), nil
		}
		return json.Marshal(m.raw)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reads null, an object, a string or a number. Coercion is
// deferred to ResolveMargin so the offending value can be reported there.
func (m *MarginOverride) UnmarshalJSON(b []byte) error {
	*m = MarginOverride{}
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "" || raw == "null":
		return nil
	case raw[0] == '{':
		var s structuredMargin
		if err := json.Unmarshal(b, &s); err != nil {
			return eris.Wrap(err, "decode structured margin")
		}
		*m = StructuredMargin(s.ProfitMargin)
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return eris.Wrap(err, "decode margin string")
		}
		*m = BareMargin(s)
	default:
		*m = BareMargin(raw)
	}
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML nodes.
func (m *MarginOverride) UnmarshalYAML(node *yaml.Node) error {
	*m = MarginOverride{}
	switch node.Kind {
	case yaml.MappingNode:
		var s structuredMargin
		if err := node.Decode(&s); err != nil {
			return eris.Wrap(err, "decode structured margin")
		}
		*m = StructuredMargin(s.ProfitMargin)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		*m = BareMargin(node.Value)
	default:
		return eris.Errorf("margin override must be a scalar or a mapping, got line %d", node.Line)
	}
	return nil
}
