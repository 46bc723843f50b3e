// Package targeting implements the runtime Context, the rule specificity
// calculator, and the rule matcher that together decide whether a Rule
// applies to a given Context.
package targeting

import (
	"github.com/Masterminds/semver/v3"
	"github.com/konditional/konditional/internal/stableid"
)

// AxisID and AxisValueID are opaque, case-sensitive string identifiers used
// both in runtime contexts and in serialized rule criteria.
type AxisID string
type AxisValueID string

// Context supplies the capabilities a rule's targeting predicates inspect.
// It is constructed fresh per evaluation call and has no lifecycle beyond
// it.
type Context struct {
	StableID   stableid.ID
	Locale     string
	Platform   string
	AppVersion *semver.Version
	AxisValues map[AxisID]AxisValueID
}

// HasLocale reports whether the context carries a locale.
func (c Context) HasLocale() bool { return c.Locale != "" }

// HasPlatform reports whether the context carries a platform.
func (c Context) HasPlatform() bool { return c.Platform != "" }
