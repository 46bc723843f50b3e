package evalcore

import (
	"github.com/konditional/konditional/internal/bucket"
	"github.com/konditional/konditional/internal/targeting"
)

// Evaluate runs the full decision algorithm for one feature against one
// context:
//
//  1. A namespace-wide kill switch, if on, short-circuits everything below
//     it to the feature's default with Decision::RegistryDisabled.
//  2. An inactive definition short-circuits to the default with
//     Decision::Inactive.
//  3. Rules are considered in precedence order (specificity descending,
//     already sorted on the definition). The first rule whose base/extension
//     criteria match AND whose rollout gate admits the caller wins.
//  4. The rollout bucket is computed at most once per call, lazily, the
//     first time a matching rule actually needs it — not once per rule and
//     not when the kill switch or inactivity already settled the outcome.
//  5. A caller in a matching rule's allowlist bypasses that rule's rollout
//     gate entirely and wins at once; no bucket is computed for it, so the
//     decision carries a bucket only if an earlier rule already computed one.
//  6. Falling off the end of the rule list yields the default.
//
// onPanic, if non-nil, receives any value recovered from a panicking
// extension predicate; it is typically wired to a namespace's Logger hook.
func Evaluate(featureKey string, killSwitch bool, fd FeatureDefinition, ctx targeting.Context, onPanic func(recovered any)) Result {
	if killSwitch {
		return Result{Value: fd.Default, Decision: Decision{Kind: RegistryDisabled, MatchedRuleIndex: -1, SkippedByRollout: -1, Bucket: -1}}
	}
	if !fd.IsActive {
		return Result{Value: fd.Default, Decision: Decision{Kind: Inactive, MatchedRuleIndex: -1, SkippedByRollout: -1, Bucket: -1}}
	}

	rules := fd.RulesByPrecedence()
	salt := fd.Salt

	haveBucket := false
	b := 0
	skippedByRollout := -1

	for i, rule := range rules {
		if !targeting.MatchesRule(rule, ctx, onPanic) {
			continue
		}
		if rule.InAllowlist(ctx.StableID) {
			return Result{
				Value: rule.Value,
				Decision: Decision{
					Kind:             RuleMatched,
					MatchedRuleIndex: i,
					SkippedByRollout: skippedByRollout,
					Bucket:           bucketOrPlaceholder(haveBucket, b),
					BucketComputed:   haveBucket,
				},
			}
		}
		if !haveBucket {
			b = bucket.Of(salt, featureKey, ctx.StableID)
			haveBucket = true
		}
		if bucket.InRollout(rule.RampUp, b) {
			return Result{
				Value: rule.Value,
				Decision: Decision{
					Kind:             RuleMatched,
					MatchedRuleIndex: i,
					SkippedByRollout: skippedByRollout,
					Bucket:           b,
					BucketComputed:   true,
				},
			}
		}
		if skippedByRollout == -1 {
			skippedByRollout = i
		}
	}

	return Result{
		Value: fd.Default,
		Decision: Decision{
			Kind:             Default,
			MatchedRuleIndex: -1,
			SkippedByRollout: skippedByRollout,
			Bucket:           bucketOrPlaceholder(haveBucket, b),
			BucketComputed:   haveBucket,
		},
	}
}

func bucketOrPlaceholder(have bool, b int) int {
	if !have {
		return -1
	}
	return b
}
