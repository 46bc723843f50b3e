package codec

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/konditional/konditional/internal/evalcore"
	"github.com/konditional/konditional/internal/feature"
	"github.com/konditional/konditional/internal/schema"
	"github.com/konditional/konditional/internal/stableid"
	"github.com/konditional/konditional/internal/targeting"
)

// Options controls decode's handling of unrecognized JSON keys. Strict
// (the default, Options{}) fails the whole decode with InvalidSnapshot on
// any unknown top-level or per-flag key. WarnUnknownKeys, when set, makes
// unknown keys non-fatal: each is reported once via the callback and
// decoding proceeds using only the keys it recognizes.
type Options struct {
	WarnUnknownKeys func(key string)
}

func (o Options) strict() bool { return o.WarnUnknownKeys == nil }

// checkKeys enforces or reports unknown object keys in raw depending on
// opts: strict mode turns any unknown key into an InvalidSnapshot error,
// skipUnknownKeys mode reports each via the warn callback and proceeds.
func checkKeys(raw json.RawMessage, allowed map[string]struct{}, opts Options) error {
	extra, err := unknownKeys(raw, allowed)
	if err != nil {
		return errInvalidJSON(err.Error())
	}
	if len(extra) == 0 {
		return nil
	}
	if opts.strict() {
		return errInvalidSnapshot(fmt.Sprintf("unknown key(s): %v", extra))
	}
	for _, k := range extra {
		opts.WarnUnknownKeys(k)
	}
	return nil
}

// Decode parses a snapshot JSON document into a Configuration, resolving
// every flag's identifier and declared type against resolver and, for
// Custom-typed features, validating structured values against the
// feature's schema.
func Decode(data []byte, resolver *feature.Resolver, opts Options) (evalcore.Configuration, error) {
	if err := checkKeys(data, snapshotTopLevelKeys, opts); err != nil {
		return evalcore.Configuration{}, err
	}

	var top struct {
		Meta  *wireMeta         `json:"meta,omitempty"`
		Flags []json.RawMessage `json:"flags"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return evalcore.Configuration{}, errInvalidJSON(err.Error())
	}

	definitions := make(map[string]evalcore.FeatureDefinition, len(top.Flags))
	for _, raw := range top.Flags {
		if err := checkKeys(raw, flagKeys, opts); err != nil {
			return evalcore.Configuration{}, err
		}
		var wf wireFlag
		if err := json.Unmarshal(raw, &wf); err != nil {
			return evalcore.Configuration{}, errInvalidJSON(err.Error())
		}
		identifier, fd, perr := decodeFlag(wf, resolver, opts)
		if perr != nil {
			return evalcore.Configuration{}, perr
		}
		definitions[identifier] = fd
	}
	ws := wireSnapshot{Meta: top.Meta}

	meta := evalcore.Meta{}
	if ws.Meta != nil {
		meta.Version = ws.Meta.Version
		meta.Source = ws.Meta.Source
		if ws.Meta.Timestamp != nil {
			meta.Timestamp = *ws.Meta.Timestamp
		}
	}
	return evalcore.NewConfiguration(definitions, meta), nil
}

func decodeFlag(wf wireFlag, resolver *feature.Resolver, opts Options) (string, evalcore.FeatureDefinition, *ParseError) {
	if wf.Key == "" {
		return "", evalcore.FeatureDefinition{}, errMissingKey("key")
	}
	canonical := feature.CanonicalIdentifier(wf.Key)
	feat, ok := resolver.Resolve(canonical)
	if !ok {
		return "", evalcore.FeatureDefinition{}, errFeatureNotFound(wf.Key)
	}

	def, perr := decodeValue(wf.DefaultValue, feat, wf.Key+".defaultValue")
	if perr != nil {
		return "", evalcore.FeatureDefinition{}, perr
	}

	rules := make([]targeting.Rule[evalcore.Value], 0, len(wf.Values))
	for i, entry := range wf.Values {
		rule, perr := decodeRule(entry, feat, fmt.Sprintf("%s.values[%d]", wf.Key, i))
		if perr != nil {
			return "", evalcore.FeatureDefinition{}, perr
		}
		rules = append(rules, rule)
	}

	fd, err := evalcore.NewFeatureDefinition(def, rules, wf.Salt, wf.IsActive)
	if err != nil {
		return "", evalcore.FeatureDefinition{}, errInvalidSnapshot(err.Error())
	}
	return canonical, fd, nil
}

func decodeValue(wv wireValue, feat feature.Feature, path string) (evalcore.Value, *ParseError) {
	wantType, ok := feature.ParseValueType(wv.Type)
	if !ok {
		return evalcore.Value{}, errInvalidType(path, feat.Type.String(), wv.Type)
	}
	if wantType != feat.Type {
		return evalcore.Value{}, errInvalidType(path, feat.Type.String(), wv.Type)
	}

	switch feat.Type {
	case feature.Boolean:
		var b bool
		if err := json.Unmarshal(wv.Value, &b); err != nil {
			return evalcore.Value{}, errInvalidType(path, "boolean", string(wv.Value))
		}
		return evalcore.Bool(b), nil
	case feature.String:
		var s string
		if err := json.Unmarshal(wv.Value, &s); err != nil {
			return evalcore.Value{}, errInvalidType(path, "string", string(wv.Value))
		}
		return evalcore.Str(s), nil
	case feature.Integer:
		var n int64
		if err := json.Unmarshal(wv.Value, &n); err != nil {
			return evalcore.Value{}, errInvalidType(path, "int", string(wv.Value))
		}
		return evalcore.Int(n), nil
	case feature.Double:
		var f float64
		if err := json.Unmarshal(wv.Value, &f); err != nil {
			return evalcore.Value{}, errInvalidType(path, "double", string(wv.Value))
		}
		return evalcore.Dbl(f), nil
	case feature.Enum:
		var s string
		if err := json.Unmarshal(wv.Value, &s); err != nil {
			return evalcore.Value{}, errInvalidType(path, "enum", string(wv.Value))
		}
		if !containsString(feat.EnumValues, s) {
			return evalcore.Value{}, &ParseError{Kind: InvalidSnapshot, Reason: fmt.Sprintf("%s: %q is not one of %v", path, s, feat.EnumValues)}
		}
		return evalcore.EnumVal(s), nil
	case feature.Custom:
		var v any
		if err := json.Unmarshal(wv.Value, &v); err != nil {
			return evalcore.Value{}, errInvalidType(path, "json", string(wv.Value))
		}
		if feat.Schema == nil {
			return evalcore.Value{}, errInvalidSnapshot(fmt.Sprintf("%s: feature %s has no schema", path, feat.Identifier))
		}
		if err := schema.Validate(v, feat.Schema); err != nil {
			return evalcore.Value{}, errInvalidSnapshot(fmt.Sprintf("%s: %v", path, err))
		}
		return evalcore.CustomVal(v), nil
	default:
		return evalcore.Value{}, errInvalidSnapshot(fmt.Sprintf("%s: unsupported value type", path))
	}
}

func decodeRule(entry wireRuleEntry, feat feature.Feature, path string) (targeting.Rule[evalcore.Value], *ParseError) {
	value, perr := decodeValue(entry.Value, feat, path+".value")
	if perr != nil {
		return targeting.Rule[evalcore.Value]{}, perr
	}

	if entry.Rule.RampUp < 0 || entry.Rule.RampUp > 100 {
		return targeting.Rule[evalcore.Value]{}, errInvalidSnapshot(fmt.Sprintf("%s: rampUp %v out of [0,100]", path, entry.Rule.RampUp))
	}

	allowlist := make(map[stableid.ID]struct{}, len(entry.Rule.Allowlist))
	for _, hex := range entry.Rule.Allowlist {
		id := stableid.ID(hex)
		if !stableid.Valid(id) {
			return targeting.Rule[evalcore.Value]{}, errInvalidSnapshot(fmt.Sprintf("%s: allowlist entry %q is not valid hex", path, hex))
		}
		allowlist[id] = struct{}{}
	}

	base, perr := decodeBaseEvaluable(entry.Rule.BaseEvaluable, path+".baseEvaluable")
	if perr != nil {
		return targeting.Rule[evalcore.Value]{}, perr
	}

	return targeting.Rule[evalcore.Value]{
		Value:     value,
		RampUp:    entry.Rule.RampUp,
		Allowlist: allowlist,
		Base:      base,
		Note:      entry.Rule.Note,
	}, nil
}

func decodeBaseEvaluable(wb *wireBaseEvaluable, path string) (targeting.BaseCriteria, *ParseError) {
	if wb == nil {
		return targeting.BaseCriteria{}, nil
	}
	base := targeting.BaseCriteria{Locales: wb.Locales, Platforms: wb.Platforms}

	if wb.VersionRange != nil {
		vr, perr := decodeVersionRange(wb.VersionRange, path+".versionRange")
		if perr != nil {
			return targeting.BaseCriteria{}, perr
		}
		base.VersionRange = vr
	}

	if len(wb.Axes) > 0 {
		base.AxisConstraints = make(map[targeting.AxisID]map[targeting.AxisValueID]struct{}, len(wb.Axes))
		for axis, values := range wb.Axes {
			set := make(map[targeting.AxisValueID]struct{}, len(values))
			for _, v := range values {
				set[targeting.AxisValueID(v)] = struct{}{}
			}
			base.AxisConstraints[targeting.AxisID(axis)] = set
		}
	}
	return base, nil
}

func decodeVersionRange(wv *wireVersionRange, path string) (*targeting.VersionRange, *ParseError) {
	var kind targeting.VersionRangeKind
	switch wv.Type {
	case string(targeting.Unbounded):
		kind = targeting.Unbounded
	case string(targeting.MinBound):
		kind = targeting.MinBound
	case string(targeting.MaxBound):
		kind = targeting.MaxBound
	case string(targeting.MinAndMaxBound):
		kind = targeting.MinAndMaxBound
	default:
		return nil, errInvalidSnapshot(fmt.Sprintf("%s: unknown version range type %q", path, wv.Type))
	}

	vr := &targeting.VersionRange{Kind: kind}
	if wv.Min != nil {
		min, err := semver.NewVersion(fmt.Sprintf("%d.%d.%d", wv.Min.Major, wv.Min.Minor, wv.Min.Patch))
		if err != nil {
			return nil, errInvalidSnapshot(fmt.Sprintf("%s.min: not a valid semantic version: %v", path, err))
		}
		vr.Min = min
	}
	if wv.Max != nil {
		max, err := semver.NewVersion(fmt.Sprintf("%d.%d.%d", wv.Max.Major, wv.Max.Minor, wv.Max.Patch))
		if err != nil {
			return nil, errInvalidSnapshot(fmt.Sprintf("%s.max: not a valid semantic version: %v", path, err))
		}
		vr.Max = max
	}
	if (kind == targeting.MinBound || kind == targeting.MinAndMaxBound) && vr.Min == nil {
		return nil, errInvalidSnapshot(fmt.Sprintf("%s: min bound required for %s", path, wv.Type))
	}
	if (kind == targeting.MaxBound || kind == targeting.MinAndMaxBound) && vr.Max == nil {
		return nil, errInvalidSnapshot(fmt.Sprintf("%s: max bound required for %s", path, wv.Type))
	}
	return vr, nil
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
