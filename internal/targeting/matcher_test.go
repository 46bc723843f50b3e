package targeting

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestBaseCriteria_AbsentCriteriaMatchEverything(t *testing.T) {
	var base BaseCriteria
	if !base.Matches(Context{}) {
		t.Fatal("an empty BaseCriteria must match any context")
	}
}

func TestBaseCriteria_LocalesAndPlatforms(t *testing.T) {
	base := BaseCriteria{Locales: []string{"EN_US"}, Platforms: []string{"IOS"}}
	if !base.Matches(Context{Locale: "EN_US", Platform: "IOS"}) {
		t.Fatal("expected match")
	}
	if base.Matches(Context{Locale: "FR_FR", Platform: "IOS"}) {
		t.Fatal("expected locale mismatch to fail")
	}
}

func TestBaseCriteria_VersionRangeHalfOpen(t *testing.T) {
	min := semver.MustParse("2.0.0")
	max := semver.MustParse("3.0.0")
	base := BaseCriteria{VersionRange: &VersionRange{Kind: MinAndMaxBound, Min: min, Max: max}}

	if !base.Matches(Context{AppVersion: semver.MustParse("2.0.0")}) {
		t.Fatal("min bound should be inclusive")
	}
	if base.Matches(Context{AppVersion: semver.MustParse("3.0.0")}) {
		t.Fatal("max bound should be exclusive")
	}
	if base.Matches(Context{AppVersion: semver.MustParse("1.9.9")}) {
		t.Fatal("below min should not match")
	}
}

func TestBaseCriteria_AxisConstraints(t *testing.T) {
	base := BaseCriteria{
		AxisConstraints: map[AxisID]map[AxisValueID]struct{}{
			"cohort": {"beta": {}, "canary": {}},
		},
	}
	if !base.Matches(Context{AxisValues: map[AxisID]AxisValueID{"cohort": "beta"}}) {
		t.Fatal("expected axis match")
	}
	if base.Matches(Context{AxisValues: map[AxisID]AxisValueID{"cohort": "stable"}}) {
		t.Fatal("unlisted axis value should not match")
	}
	if base.Matches(Context{}) {
		t.Fatal("missing axis value should not match")
	}
}

func TestMatchesRule_ExtensionPredicatePanicBecomesNoMatch(t *testing.T) {
	rule := Rule[string]{
		Value: "x",
		Extension: func(Context) bool {
			panic("boom")
		},
	}
	var captured any
	got := MatchesRule(rule, Context{}, func(r any) { captured = r })
	if got {
		t.Fatal("a panicking extension predicate must not match")
	}
	if captured != "boom" {
		t.Fatalf("expected panic to be reported, got %v", captured)
	}
}

func TestSpecificity_CountsTargetingCriteria(t *testing.T) {
	base := BaseCriteria{Locales: []string{"EN_US"}, Platforms: []string{"IOS"}}
	s1 := Specificity(base, false)
	if s1 != 2 {
		t.Fatalf("Specificity() = %d, want 2", s1)
	}

	base2 := BaseCriteria{Platforms: []string{"IOS"}}
	s2 := Specificity(base2, false)
	if s2 != 1 {
		t.Fatalf("Specificity() = %d, want 1", s2)
	}
	if s1 <= s2 {
		t.Fatal("more targeting criteria must yield higher specificity")
	}
}

func TestJSONLogicPredicate(t *testing.T) {
	pred, err := JSONLogicPredicate(`{"==": [{"var": "platform"}, "IOS"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pred(Context{Platform: "IOS"}) {
		t.Fatal("expected predicate to match IOS")
	}
	if pred(Context{Platform: "ANDROID"}) {
		t.Fatal("expected predicate to reject ANDROID")
	}
}

func TestJSONLogicPredicate_InvalidExpression(t *testing.T) {
	if _, err := JSONLogicPredicate(""); err == nil {
		t.Fatal("expected error for empty expression")
	}
	if _, err := JSONLogicPredicate("not json"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
