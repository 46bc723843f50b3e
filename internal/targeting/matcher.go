package targeting

// Matches reports whether every present criterion in base matches ctx
// (AND semantics). Absent criteria match everything; a rule with no
// criteria at all therefore always matches.
func (base BaseCriteria) Matches(ctx Context) bool {
	if len(base.Locales) > 0 && !containsString(base.Locales, ctx.Locale) {
		return false
	}
	if len(base.Platforms) > 0 && !containsString(base.Platforms, ctx.Platform) {
		return false
	}
	if base.VersionRange != nil && !base.VersionRange.Matches(ctx.AppVersion) {
		return false
	}
	for axis, allowed := range base.AxisConstraints {
		v, ok := ctx.AxisValues[axis]
		if !ok {
			return false
		}
		if _, ok := allowed[v]; !ok {
			return false
		}
	}
	return true
}

// MatchesRule evaluates a rule's base criteria AND, if present, its
// extension predicate. A panicking extension predicate is treated as
// "does not match" and reported via onPanic (typically wired to the
// namespace's Logger hook), never propagated as an evaluation failure.
func MatchesRule[T any](rule Rule[T], ctx Context, onPanic func(recovered any)) (matched bool) {
	if !rule.Base.Matches(ctx) {
		return false
	}
	if rule.Extension == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			matched = false
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	return rule.Extension(ctx)
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
