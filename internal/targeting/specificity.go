package targeting

// Specificity scores a rule's targeting breadth. Ramp-up is deliberately
// excluded — it is a post-match gate, not a matching criterion.
func Specificity(base BaseCriteria, hasExtension bool) int {
	score := 0
	if len(base.Locales) > 0 {
		score++
	}
	if len(base.Platforms) > 0 {
		score++
	}
	if base.VersionRange != nil && base.VersionRange.Bounded() {
		score++
	}
	score += len(base.AxisConstraints)
	if hasExtension {
		score++
	}
	return score
}
