package targeting

import "github.com/Masterminds/semver/v3"

// VersionRangeKind tags which bounds a VersionRange carries, matching the
// wire discriminant.
type VersionRangeKind string

const (
	Unbounded      VersionRangeKind = "UNBOUNDED"
	MinBound       VersionRangeKind = "MIN_BOUND"
	MaxBound       VersionRangeKind = "MAX_BOUND"
	MinAndMaxBound VersionRangeKind = "MIN_AND_MAX_BOUND"
)

// VersionRange matches app_version against an optional inclusive-minimum,
// exclusive-maximum half-open interval: min <= v < max. This upper-bound-
// exclusive convention is kept deliberately rather than silently switched
// to inclusive.
type VersionRange struct {
	Kind VersionRangeKind
	Min  *semver.Version
	Max  *semver.Version
}

// Matches reports whether v falls inside the range. A nil v never matches a
// bounded range but does match Unbounded (an absent app_version with no
// constraint to fail).
func (r VersionRange) Matches(v *semver.Version) bool {
	switch r.Kind {
	case Unbounded, "":
		return true
	case MinBound:
		return v != nil && !v.LessThan(r.Min)
	case MaxBound:
		return v != nil && v.LessThan(r.Max)
	case MinAndMaxBound:
		return v != nil && !v.LessThan(r.Min) && v.LessThan(r.Max)
	default:
		return false
	}
}

// Bounded reports whether the range constrains at least one side, used by
// SpecificityCalculator.
func (r VersionRange) Bounded() bool {
	return r.Kind == MinBound || r.Kind == MaxBound || r.Kind == MinAndMaxBound
}
