package targeting

import "github.com/konditional/konditional/internal/stableid"

// Predicate is an extension predicate closure over a Context. It must be
// total and side-effect-free; callers that raise a panic inside a predicate
// are treated by MatchesRule as "does not match", never as an
// evaluation failure.
type Predicate func(Context) bool

// BaseCriteria is the serializable half of a rule's targeting predicates.
// Absent (nil/empty) criteria match everything.
type BaseCriteria struct {
	Locales      []string
	Platforms    []string
	VersionRange *VersionRange
	AxisConstraints map[AxisID]map[AxisValueID]struct{}
}

// Rule is a targeting predicate set plus a value, modeled as a tagged
// variant of {base, extension}: the extension predicate is only ever
// produced by the in-process builder and is never present on a rule decoded
// from JSON.
type Rule[T any] struct {
	Value      T
	RampUp     float64
	Allowlist  map[stableid.ID]struct{}
	Base       BaseCriteria
	Extension  Predicate
	Note       string
}

// InAllowlist reports whether id bypasses the rollout gate for this rule.
func (r Rule[T]) InAllowlist(id stableid.ID) bool {
	if id.Empty() {
		return false
	}
	_, ok := r.Allowlist[id]
	return ok
}
