package evalcore

import (
	"testing"

	"github.com/konditional/konditional/internal/stableid"
	"github.com/konditional/konditional/internal/targeting"
)

func mustDefinition(t *testing.T, def Value, rules []targeting.Rule[Value], salt string, active bool) FeatureDefinition {
	t.Helper()
	fd, err := NewFeatureDefinition(def, rules, salt, active)
	if err != nil {
		t.Fatalf("NewFeatureDefinition: %v", err)
	}
	return fd
}

func TestEvaluate_KillSwitchIsTotal(t *testing.T) {
	fd := mustDefinition(t, Bool(false), []targeting.Rule[Value]{
		{Value: Bool(true), RampUp: 100},
	}, "v1", true)

	res := Evaluate("feature::core::x", true, fd, targeting.Context{StableID: stableid.ID("ab")}, nil)
	if res.Decision.Kind != RegistryDisabled {
		t.Fatalf("Kind = %v, want RegistryDisabled", res.Decision.Kind)
	}
	if !res.Value.Equal(Bool(false)) {
		t.Fatalf("expected default value under kill switch, got %+v", res.Value)
	}
	if res.Decision.BucketComputed {
		t.Fatal("kill switch must short-circuit before any bucket is computed")
	}
}

func TestEvaluate_InactiveDefinitionFallsThroughToDefault(t *testing.T) {
	fd := mustDefinition(t, Str("off"), []targeting.Rule[Value]{
		{Value: Str("on"), RampUp: 100},
	}, "v1", false)

	res := Evaluate("feature::core::x", false, fd, targeting.Context{}, nil)
	if res.Decision.Kind != Inactive {
		t.Fatalf("Kind = %v, want Inactive", res.Decision.Kind)
	}
	if res.Value.Str != "off" {
		t.Fatalf("Value.Str = %q, want off", res.Value.Str)
	}
}

func TestEvaluate_PrecedenceBySpecificity(t *testing.T) {
	broad := targeting.Rule[Value]{Value: Int(1), RampUp: 100, Note: "broad"}
	narrow := targeting.Rule[Value]{
		Value:  Int(2),
		RampUp: 100,
		Base:   targeting.BaseCriteria{Locales: []string{"EN_US"}, Platforms: []string{"IOS"}},
		Note:   "narrow",
	}
	fd := mustDefinition(t, Int(0), []targeting.Rule[Value]{broad, narrow}, "v1", true)

	res := Evaluate("feature::core::x", false, fd, targeting.Context{Locale: "EN_US", Platform: "IOS"}, nil)
	if res.Decision.Kind != RuleMatched {
		t.Fatalf("Kind = %v, want RuleMatched", res.Decision.Kind)
	}
	if res.Value.Int != 2 {
		t.Fatalf("expected the more specific rule to win, got Int=%d", res.Value.Int)
	}
}

func TestEvaluate_AllowlistBypassesRolloutGate(t *testing.T) {
	id := stableid.ID("deadbeef")
	rule := targeting.Rule[Value]{
		Value:     Bool(true),
		RampUp:    0, // would never roll in on its own
		Allowlist: map[stableid.ID]struct{}{id: {}},
	}
	fd := mustDefinition(t, Bool(false), []targeting.Rule[Value]{rule}, "v1", true)

	res := Evaluate("feature::core::x", false, fd, targeting.Context{StableID: id}, nil)
	if res.Decision.Kind != RuleMatched {
		t.Fatalf("Kind = %v, want RuleMatched", res.Decision.Kind)
	}
	if !res.Value.Bool {
		t.Fatal("allowlisted caller must bypass a 0%% rollout gate")
	}
	if res.Decision.BucketComputed {
		t.Fatal("an allowlist bypass on the only rule should need no bucket")
	}
}

func TestEvaluate_NonAllowlistedCallerStillGatedByRollout(t *testing.T) {
	allowed := stableid.ID("aa")
	other := stableid.ID("bb")
	rule := targeting.Rule[Value]{
		Value:     Bool(true),
		RampUp:    0,
		Allowlist: map[stableid.ID]struct{}{allowed: {}},
	}
	fd := mustDefinition(t, Bool(false), []targeting.Rule[Value]{rule}, "v1", true)

	res := Evaluate("feature::core::x", false, fd, targeting.Context{StableID: other}, nil)
	if res.Decision.Kind != Default {
		t.Fatalf("Kind = %v, want Default", res.Decision.Kind)
	}
	if res.Decision.SkippedByRollout != 0 {
		t.Fatalf("SkippedByRollout = %d, want 0", res.Decision.SkippedByRollout)
	}
}

func TestEvaluate_LaterRuleWinsAfterRolloutSkips(t *testing.T) {
	rules := []targeting.Rule[Value]{
		{Value: Int(1), RampUp: 0, Note: "a"},
		{Value: Int(2), RampUp: 0, Note: "b"},
		{Value: Int(3), RampUp: 100, Note: "c"},
	}
	fd := mustDefinition(t, Int(0), rules, "v1", true)

	res := Evaluate("feature::core::x", false, fd, targeting.Context{StableID: stableid.ID("ff")}, nil)
	if res.Decision.Kind != RuleMatched || res.Value.Int != 3 {
		t.Fatalf("expected the 100%% rule to win, got Kind=%v Value=%+v", res.Decision.Kind, res.Value)
	}
	if res.Decision.SkippedByRollout != 0 {
		t.Fatalf("SkippedByRollout = %d, want 0 (first rule skipped)", res.Decision.SkippedByRollout)
	}
	if !res.Decision.BucketComputed {
		t.Fatal("expected a bucket to have been computed")
	}
}

func TestEvaluate_NoMatchingRuleFallsThroughToDefault(t *testing.T) {
	rule := targeting.Rule[Value]{
		Value:  Bool(true),
		RampUp: 100,
		Base:   targeting.BaseCriteria{Platforms: []string{"ANDROID"}},
	}
	fd := mustDefinition(t, Bool(false), []targeting.Rule[Value]{rule}, "v1", true)

	res := Evaluate("feature::core::x", false, fd, targeting.Context{Platform: "IOS"}, nil)
	if res.Decision.Kind != Default {
		t.Fatalf("Kind = %v, want Default", res.Decision.Kind)
	}
	if res.Decision.BucketComputed {
		t.Fatal("a rule that never matched its base criteria should never reach the bucket step")
	}
}

func TestEvaluate_PanickingExtensionIsReportedAndSkipped(t *testing.T) {
	rule := targeting.Rule[Value]{
		Value:  Bool(true),
		RampUp: 100,
		Extension: func(targeting.Context) bool {
			panic("extension blew up")
		},
	}
	fd := mustDefinition(t, Bool(false), []targeting.Rule[Value]{rule}, "v1", true)

	var reported any
	res := Evaluate("feature::core::x", false, fd, targeting.Context{}, func(r any) { reported = r })
	if res.Decision.Kind != Default {
		t.Fatalf("Kind = %v, want Default", res.Decision.Kind)
	}
	if reported != "extension blew up" {
		t.Fatalf("onPanic did not receive the recovered value, got %v", reported)
	}
}

func TestEvaluate_IsDeterministicForFixedInputs(t *testing.T) {
	rule := targeting.Rule[Value]{Value: Bool(true), RampUp: 37}
	fd := mustDefinition(t, Bool(false), []targeting.Rule[Value]{rule}, "v1", true)
	ctx := targeting.Context{StableID: stableid.ID("c0ffee")}

	first := Evaluate("feature::core::x", false, fd, ctx, nil)
	second := Evaluate("feature::core::x", false, fd, ctx, nil)
	if first.Value.Raw() != second.Value.Raw() || first.Decision.Kind != second.Decision.Kind {
		t.Fatal("repeated evaluation of identical inputs must be identical")
	}
}
