package schema

import (
	"fmt"
	"sort"
)

// Validate checks value against s, returning nil on success or a
// *ValidationError describing the first failure found, with its field/index
// path threaded through the message.
func Validate(value any, s *Schema) error {
	if s == nil {
		return errf("schema is nil")
	}
	if value == nil {
		if s.Nullable || s.Kind == KindNull {
			return nil
		}
		return errf("value is null but schema is not nullable")
	}

	switch s.Kind {
	case KindNull:
		return errf("expected null, got %T", value)
	case KindBoolean:
		return validateBoolean(value)
	case KindString:
		return validateString(value, s)
	case KindInteger:
		return validateNumber(value, s, true)
	case KindDouble:
		return validateNumber(value, s, false)
	case KindEnum:
		return validateEnum(value, s)
	case KindArray:
		return validateArray(value, s)
	case KindObject:
		return validateObject(value, s)
	default:
		return errf("unknown schema kind %d", s.Kind)
	}
}

func validateBoolean(value any) error {
	if _, ok := value.(bool); !ok {
		return errf("expected boolean, got %T", value)
	}
	return nil
}

func validateString(value any, s *Schema) error {
	str, ok := value.(string)
	if !ok {
		return errf("expected string, got %T", value)
	}
	n := len(str)
	if s.MinLength != nil && n < *s.MinLength {
		return errf("value '%s' length %d is less than minimum length %d", str, n, *s.MinLength)
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		return errf("value '%s' length %d is greater than maximum length %d", str, n, *s.MaxLength)
	}
	if s.Pattern != "" {
		rx, err := compile(s.Pattern)
		if err != nil {
			return errf("pattern %q does not compile: %v", s.Pattern, err)
		}
		if loc := rx.FindStringIndex(str); loc == nil || loc[0] != 0 || loc[1] != len(str) {
			return errf("value '%s' does not fully match pattern %q", str, s.Pattern)
		}
	}
	if len(s.StrEnum) > 0 && !containsString(s.StrEnum, str) {
		return errf("value '%s' is not one of %v", str, s.StrEnum)
	}
	return nil
}

func validateNumber(value any, s *Schema, wantInteger bool) error {
	f, isInt, ok := asNumber(value)
	if !ok {
		return errf("expected number, got %T", value)
	}
	if wantInteger && !isInt {
		return errf("value %v is not an integer", f)
	}
	if s.Minimum != nil && f < *s.Minimum {
		return errf("value %v is less than minimum %v", f, *s.Minimum)
	}
	if s.Maximum != nil && f > *s.Maximum {
		return errf("value %v is greater than maximum %v", f, *s.Maximum)
	}
	if len(s.NumEnum) > 0 && !containsFloat(s.NumEnum, f) {
		return errf("value %v is not one of %v", f, s.NumEnum)
	}
	return nil
}

func validateEnum(value any, s *Schema) error {
	for _, allowed := range s.EnumValues {
		if fmt.Sprint(allowed) == fmt.Sprint(value) {
			return nil
		}
	}
	return errf("value %v is not one of the enumerated constants %v", value, s.EnumValues)
}

func validateArray(value any, s *Schema) error {
	items, ok := value.([]any)
	if !ok {
		return errf("expected array, got %T", value)
	}
	if s.MinItems != nil && len(items) < *s.MinItems {
		return errf("array has %d items, fewer than minimum %d", len(items), *s.MinItems)
	}
	if s.MaxItems != nil && len(items) > *s.MaxItems {
		return errf("array has %d items, more than maximum %d", len(items), *s.MaxItems)
	}
	if s.UniqueItems {
		seen := make(map[string]struct{}, len(items))
		for i, it := range items {
			key := fmt.Sprint(it)
			if _, dup := seen[key]; dup {
				return wrapIndex(i, errf("duplicate item %v violates uniqueItems", it))
			}
			seen[key] = struct{}{}
		}
	}
	if s.Elements != nil {
		for i, it := range items {
			if err := Validate(it, s.Elements); err != nil {
				return wrapIndex(i, err)
			}
		}
	}
	return nil
}

func validateObject(value any, s *Schema) error {
	obj, ok := value.(map[string]any)
	if !ok {
		return errf("expected object, got %T", value)
	}

	missing := make([]string, 0)
	for name, field := range s.Fields {
		v, present := obj[name]
		if !present {
			if field.Required {
				missing = append(missing, name)
			}
			continue
		}
		if err := Validate(v, field.Schema); err != nil {
			return wrapField(name, err)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errf("missing required field(s): %v", missing)
	}

	if s.Strict {
		for name := range obj {
			if _, known := s.Fields[name]; !known {
				return errf("unknown field '%s' is not permitted by a strict schema", name)
			}
		}
	}
	return nil
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsFloat(set []float64, v float64) bool {
	for _, f := range set {
		if f == v {
			return true
		}
	}
	return false
}

func asNumber(v any) (f float64, isInteger bool, ok bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true, true
	case int32:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case float32:
		ff := float64(n)
		return ff, ff == float64(int64(ff)), true
	case float64:
		return n, n == float64(int64(n)), true
	default:
		return 0, false, false
	}
}
