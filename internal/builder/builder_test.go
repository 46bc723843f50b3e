package builder

import (
	"testing"

	"github.com/konditional/konditional/internal/codec"
	"github.com/konditional/konditional/internal/evalcore"
	"github.com/konditional/konditional/internal/feature"
	"github.com/konditional/konditional/internal/stableid"
	"github.com/konditional/konditional/internal/targeting"
)

func TestRuleBuilder_BuildsExpectedRule(t *testing.T) {
	id := stableid.ID("aa")
	rule := NewRule(evalcore.Bool(true)).
		RampUp(25).
		Note("beta cohort").
		Locales("EN_US").
		Platforms("IOS").
		AxisConstraint("cohort", "beta").
		Allow(id).
		Build()

	if rule.RampUp != 25 {
		t.Fatalf("RampUp = %v, want 25", rule.RampUp)
	}
	if !rule.InAllowlist(id) {
		t.Fatal("expected id to be allowlisted")
	}
	if !rule.Base.Matches(targeting.Context{Locale: "EN_US", Platform: "IOS", AxisValues: map[targeting.AxisID]targeting.AxisValueID{"cohort": "beta"}}) {
		t.Fatal("expected built base criteria to match a conforming context")
	}
}

func TestFeatureDefinitionBuilder_DefaultsActiveAndSalt(t *testing.T) {
	fd, err := NewFeatureDefinition(evalcore.Bool(false)).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fd.IsActive {
		t.Fatal("expected a freshly built definition to default to active")
	}
	if fd.Salt != evalcore.DefaultSalt {
		t.Fatalf("Salt = %q, want %q", fd.Salt, evalcore.DefaultSalt)
	}
}

func TestConfigurationBuilder_AssemblesNamedDefinitions(t *testing.T) {
	fd, _ := NewFeatureDefinition(evalcore.Bool(true)).Build()
	c := NewConfiguration().With("feature::core::x", fd).Build()

	got, ok := c.Lookup("feature::core::x")
	if !ok || !got.Default.Equal(evalcore.Bool(true)) {
		t.Fatalf("unexpected lookup: %+v ok=%v", got, ok)
	}
}

func TestBuiltExtensionPredicate_DoesNotSurviveJSONRoundTrip(t *testing.T) {
	called := false
	rule := NewRule(evalcore.Bool(true)).
		RampUp(100).
		Extension(func(targeting.Context) bool { called = true; return true }).
		Build()
	fd, err := NewFeatureDefinition(evalcore.Bool(false)).AddRule(rule).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fd.Rules[0].Extension == nil {
		t.Fatal("expected the in-process rule to carry its extension predicate")
	}

	c := NewConfiguration().With("feature::core::x", fd).Build()
	resolver := feature.NewResolver()
	resolver.Register(feature.Feature{Identifier: "feature::core::x", Key: "x", NamespaceID: "core", Type: feature.Boolean})

	out, err := codec.Encode(c)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := codec.Decode([]byte(out), resolver, codec.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	decodedFd, _ := decoded.Lookup("feature::core::x")
	if len(decodedFd.Rules) != 1 {
		t.Fatalf("expected the rule to survive the round trip, got %d rules", len(decodedFd.Rules))
	}
	if decodedFd.Rules[0].Extension != nil {
		t.Fatal("a decoded rule must never carry an extension predicate")
	}
	if called {
		t.Fatal("the original predicate must never be invoked by encode/decode")
	}
}
