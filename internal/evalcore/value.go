// Package evalcore implements the Evaluator: the orchestration of
// kill-switch, activation, rule-precedence, and default fallback that turns
// a Feature, a Context, and a Configuration into a total, deterministic
// value.
package evalcore

import (
	"fmt"

	"github.com/konditional/konditional/internal/feature"
)

// Value is a runtime-typed value carrying exactly one of the primitive
// shapes a Feature may declare. It exists because a Configuration holds
// heterogeneously-typed FeatureDefinitions in a single map; typed access is
// recovered at the call site via the Feature's declared ValueType, which is
// a runtime type witness alongside the Go static type.
type Value struct {
	Type   feature.ValueType
	Bool   bool
	Str    string
	Int    int64
	Dbl    float64
	Enum   string
	Custom any
}

func Bool(v bool) Value    { return Value{Type: feature.Boolean, Bool: v} }
func Str(v string) Value   { return Value{Type: feature.String, Str: v} }
func Int(v int64) Value    { return Value{Type: feature.Integer, Int: v} }
func Dbl(v float64) Value  { return Value{Type: feature.Double, Dbl: v} }
func EnumVal(v string) Value { return Value{Type: feature.Enum, Enum: v} }
func CustomVal(v any) Value { return Value{Type: feature.Custom, Custom: v} }

// Raw returns the value as an `any`, suitable for JSON encoding or for a
// caller that only cares about the dynamic value.
func (v Value) Raw() any {
	switch v.Type {
	case feature.Boolean:
		return v.Bool
	case feature.String:
		return v.Str
	case feature.Integer:
		return v.Int
	case feature.Double:
		return v.Dbl
	case feature.Enum:
		return v.Enum
	case feature.Custom:
		return v.Custom
	default:
		return nil
	}
}

// Equal reports deep equality, used by round-trip tests.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case feature.Boolean:
		return v.Bool == o.Bool
	case feature.String:
		return v.Str == o.Str
	case feature.Integer:
		return v.Int == o.Int
	case feature.Double:
		return v.Dbl == o.Dbl
	case feature.Enum:
		return v.Enum == o.Enum
	case feature.Custom:
		return fmt.Sprint(v.Custom) == fmt.Sprint(o.Custom)
	default:
		return true
	}
}

// CheckType verifies v matches want, returning a descriptive error if not.
// The codec does its own type comparison at decode time and does not call
// this helper.
func CheckType(v Value, want feature.ValueType) error {
	if v.Type != want {
		return fmt.Errorf("value has type %s, expected %s", v.Type, want)
	}
	return nil
}
