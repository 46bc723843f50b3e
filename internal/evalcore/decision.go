package evalcore

// DecisionKind tags why an evaluation produced the value it did: a kill
// switch, an inactive feature, a matched rule, or fallthrough to the
// default.
type DecisionKind int

const (
	// RegistryDisabled means the namespace's kill switch was on; the
	// definition was never consulted.
	RegistryDisabled DecisionKind = iota
	// Inactive means the definition was found but IsActive is false.
	Inactive
	// RuleMatched means a rule matched and its rollout gate (or allowlist)
	// admitted the caller.
	RuleMatched
	// Default means every rule was skipped (non-matching, or matching but
	// rolled out) and evaluation fell through to the feature's default.
	Default
)

func (k DecisionKind) String() string {
	switch k {
	case RegistryDisabled:
		return "registry_disabled"
	case Inactive:
		return "inactive"
	case RuleMatched:
		return "rule"
	case Default:
		return "default"
	default:
		return "unknown"
	}
}

// Decision is an explain trace of how a value was produced: which rule (if
// any) matched, which index (if any) was the first to be skipped purely by
// its rollout gate, and the bucket computed for the call — bucketing is
// computed at most once per evaluation regardless of how many rules are
// considered.
type Decision struct {
	Kind             DecisionKind
	MatchedRuleIndex int // -1 when Kind != RuleMatched
	SkippedByRollout int // index of the first rule skipped purely by rollout, or -1
	Bucket           int // -1 when no rule needed a bucket
	BucketComputed   bool
}

// Result is the outcome of a single Evaluate call: the resolved value and
// the decision that produced it.
type Result struct {
	Value    Value
	Decision Decision
}
