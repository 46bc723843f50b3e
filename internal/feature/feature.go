// Package feature implements the typed feature declaration and the
// process-wide FeatureResolver that maps stable identifiers to those
// declarations. Features are registered once at startup; identifiers are
// unique process-wide and the (identifier, value type) pair never changes
// after registration.
package feature

import (
	"fmt"
	"strings"

	"github.com/konditional/konditional/internal/schema"
)

// ValueType tags the primitive shape a Feature's value takes. The sealed
// hierarchy the spec describes (booleans, strings, numbers, enums, and a
// schema-carrying custom type) is modeled here as a closed Go enum rather
// than an interface hierarchy, since Go has no sealed classes.
type ValueType int

const (
	Boolean ValueType = iota
	String
	Integer
	Double
	Enum
	Custom
)

func (t ValueType) String() string {
	switch t {
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Integer:
		return "int"
	case Double:
		return "double"
	case Enum:
		return "enum"
	case Custom:
		return "json"
	default:
		return "unknown"
	}
}

// ParseValueType maps a wire type discriminant to a ValueType.
// Accepts "long" as a synonym of "int" for interop with sources that
// distinguish 32/64-bit integers.
func ParseValueType(s string) (ValueType, bool) {
	switch s {
	case "boolean":
		return Boolean, true
	case "string":
		return String, true
	case "int", "long":
		return Integer, true
	case "double":
		return Double, true
	case "enum":
		return Enum, true
	case "json":
		return Custom, true
	default:
		return 0, false
	}
}

// Feature is a stable, typed declaration. Features are registered by the
// declaring code at startup; identifiers must be globally unique, and the
// (Identifier, ValueType) pair is immutable once registered.
type Feature struct {
	Identifier  string
	Key         string
	NamespaceID string
	Type        ValueType
	// EnumValues lists the legal constants for an Enum-typed feature.
	EnumValues []string
	// Schema is required when Type == Custom and describes the structural
	// shape validated at the JSON boundary (schema.Validate).
	Schema *schema.Schema
}

// legacyPrefix is the deprecated identifier prefix accepted at decode time
// for backward compatibility with identifiers minted before the rename.
const (
	currentPrefix = "feature"
	legacyPrefix  = "value"
)

// ParseIdentifier validates the grammar
// "<prefix>::<namespaceSeed>::<featureKey>" where prefix is "feature" or,
// for backward compatibility, the legacy "value" form, and both
// namespaceSeed and featureKey are non-empty and contain no "::".
func ParseIdentifier(id string) (namespaceSeed, key string, err error) {
	parts := strings.Split(id, "::")
	if len(parts) != 3 {
		return "", "", fmt.Errorf("feature: identifier %q must have exactly three :: separated segments", id)
	}
	prefix, ns, k := parts[0], parts[1], parts[2]
	if prefix != currentPrefix && prefix != legacyPrefix {
		return "", "", fmt.Errorf("feature: identifier %q has unknown prefix %q", id, prefix)
	}
	if ns == "" || k == "" {
		return "", "", fmt.Errorf("feature: identifier %q has an empty namespace seed or key", id)
	}
	return ns, k, nil
}

// CanonicalIdentifier rewrites a legacy "value::ns::key" identifier to its
// current "feature::ns::key" form; non-legacy identifiers pass through
// unchanged. It does not validate the identifier's grammar.
func CanonicalIdentifier(id string) string {
	if strings.HasPrefix(id, legacyPrefix+"::") {
		return currentPrefix + strings.TrimPrefix(id, legacyPrefix)
	}
	return id
}

// Identifier composes a canonical "feature::ns::key" identifier.
func Identifier(namespaceSeed, key string) string {
	return currentPrefix + "::" + namespaceSeed + "::" + key
}
