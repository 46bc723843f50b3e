package evalcore

import (
	"fmt"
	"sort"

	"github.com/konditional/konditional/internal/targeting"
)

// DefaultSalt is used when NewFeatureDefinition is given an empty salt,
// whether by a builder call or by a JSON flag that omits "salt".
const DefaultSalt = "v1"

// FeatureDefinition is per-feature runtime state: exactly one default,
// an order-insensitive set of rules (precedence is computed, not
// positional), a non-empty salt, and an activation flag.
type FeatureDefinition struct {
	Default  Value
	Rules    []targeting.Rule[Value]
	Salt     string
	IsActive bool

	sorted []targeting.Rule[Value]
}

// NewFeatureDefinition validates and constructs a FeatureDefinition. Salt
// defaults to DefaultSalt when empty.
func NewFeatureDefinition(def Value, rules []targeting.Rule[Value], salt string, active bool) (FeatureDefinition, error) {
	if salt == "" {
		salt = DefaultSalt
	}
	for i, r := range rules {
		if r.RampUp < 0 || r.RampUp > 100 {
			return FeatureDefinition{}, fmt.Errorf("rule %d: ramp_up %v out of [0,100]", i, r.RampUp)
		}
	}
	fd := FeatureDefinition{Default: def, Rules: rules, Salt: salt, IsActive: active}
	fd.sortRules()
	return fd, nil
}

// sortRules orders rules by specificity descending, with a deterministic
// tie-break by Note (not load-bearing for
// correctness, but must be deterministic rather than insertion order).
func (fd *FeatureDefinition) sortRules() {
	fd.sorted = make([]targeting.Rule[Value], len(fd.Rules))
	copy(fd.sorted, fd.Rules)
	sort.SliceStable(fd.sorted, func(i, j int) bool {
		si := targeting.Specificity(fd.sorted[i].Base, fd.sorted[i].Extension != nil)
		sj := targeting.Specificity(fd.sorted[j].Base, fd.sorted[j].Extension != nil)
		if si != sj {
			return si > sj
		}
		return fd.sorted[i].Note < fd.sorted[j].Note
	})
}

// RulesByPrecedence returns the rules sorted by specificity, computing the
// order lazily on first access if the definition was constructed without
// going through NewFeatureDefinition (e.g. decoded field-by-field).
func (fd *FeatureDefinition) RulesByPrecedence() []targeting.Rule[Value] {
	if fd.sorted == nil {
		fd.sortRules()
	}
	return fd.sorted
}
