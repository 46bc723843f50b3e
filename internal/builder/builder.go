// Package builder provides typed, in-process constructors for assembling a
// Configuration without going through the JSON boundary. This is the only
// path on which a Rule may carry an extension predicate: the codec never
// produces one.
package builder

import (
	"github.com/konditional/konditional/internal/evalcore"
	"github.com/konditional/konditional/internal/stableid"
	"github.com/konditional/konditional/internal/targeting"
)

// RuleBuilder assembles a single targeting.Rule[evalcore.Value] with a
// fluent, chainable API.
type RuleBuilder struct {
	rule targeting.Rule[evalcore.Value]
}

// NewRule starts a rule carrying value and a 0% rollout (call RampUp to
// change it).
func NewRule(value evalcore.Value) *RuleBuilder {
	return &RuleBuilder{rule: targeting.Rule[evalcore.Value]{Value: value}}
}

func (b *RuleBuilder) RampUp(percent float64) *RuleBuilder {
	b.rule.RampUp = percent
	return b
}

func (b *RuleBuilder) Note(note string) *RuleBuilder {
	b.rule.Note = note
	return b
}

func (b *RuleBuilder) Locales(locales ...string) *RuleBuilder {
	b.rule.Base.Locales = locales
	return b
}

func (b *RuleBuilder) Platforms(platforms ...string) *RuleBuilder {
	b.rule.Base.Platforms = platforms
	return b
}

func (b *RuleBuilder) VersionRange(vr targeting.VersionRange) *RuleBuilder {
	b.rule.Base.VersionRange = &vr
	return b
}

func (b *RuleBuilder) AxisConstraint(axis targeting.AxisID, values ...targeting.AxisValueID) *RuleBuilder {
	if b.rule.Base.AxisConstraints == nil {
		b.rule.Base.AxisConstraints = map[targeting.AxisID]map[targeting.AxisValueID]struct{}{}
	}
	set := make(map[targeting.AxisValueID]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	b.rule.Base.AxisConstraints[axis] = set
	return b
}

func (b *RuleBuilder) Allow(ids ...stableid.ID) *RuleBuilder {
	if b.rule.Allowlist == nil {
		b.rule.Allowlist = map[stableid.ID]struct{}{}
	}
	for _, id := range ids {
		b.rule.Allowlist[id] = struct{}{}
	}
	return b
}

// Extension attaches an in-process predicate closure. Rules built this way
// do not survive a JSON encode/decode round trip with the predicate intact.
func (b *RuleBuilder) Extension(pred targeting.Predicate) *RuleBuilder {
	b.rule.Extension = pred
	return b
}

// Build returns the assembled rule.
func (b *RuleBuilder) Build() targeting.Rule[evalcore.Value] {
	return b.rule
}

// FeatureDefinitionBuilder assembles a FeatureDefinition.
type FeatureDefinitionBuilder struct {
	def      evalcore.Value
	rules    []targeting.Rule[evalcore.Value]
	salt     string
	isActive bool
}

// NewFeatureDefinition starts a builder with the given default value. The
// definition is active by default.
func NewFeatureDefinition(def evalcore.Value) *FeatureDefinitionBuilder {
	return &FeatureDefinitionBuilder{def: def, isActive: true}
}

func (b *FeatureDefinitionBuilder) Salt(salt string) *FeatureDefinitionBuilder {
	b.salt = salt
	return b
}

func (b *FeatureDefinitionBuilder) Active(active bool) *FeatureDefinitionBuilder {
	b.isActive = active
	return b
}

func (b *FeatureDefinitionBuilder) AddRule(rule targeting.Rule[evalcore.Value]) *FeatureDefinitionBuilder {
	b.rules = append(b.rules, rule)
	return b
}

// Build validates and assembles the FeatureDefinition.
func (b *FeatureDefinitionBuilder) Build() (evalcore.FeatureDefinition, error) {
	return evalcore.NewFeatureDefinition(b.def, b.rules, b.salt, b.isActive)
}

// ConfigurationBuilder assembles a Configuration from named definitions.
type ConfigurationBuilder struct {
	definitions map[string]evalcore.FeatureDefinition
	meta        evalcore.Meta
}

// NewConfiguration starts an empty configuration builder.
func NewConfiguration() *ConfigurationBuilder {
	return &ConfigurationBuilder{definitions: map[string]evalcore.FeatureDefinition{}}
}

func (b *ConfigurationBuilder) Meta(meta evalcore.Meta) *ConfigurationBuilder {
	b.meta = meta
	return b
}

func (b *ConfigurationBuilder) With(identifier string, def evalcore.FeatureDefinition) *ConfigurationBuilder {
	b.definitions[identifier] = def
	return b
}

// Build returns the assembled Configuration.
func (b *ConfigurationBuilder) Build() evalcore.Configuration {
	return evalcore.NewConfiguration(b.definitions, b.meta)
}
