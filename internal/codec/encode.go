package codec

import (
	"encoding/json"
	"fmt"

	"github.com/konditional/konditional/internal/evalcore"
	"github.com/konditional/konditional/internal/targeting"
)

// Encode serializes a Configuration to the stable snapshot JSON shape.
// Identifiers are emitted exactly as they are keyed in the Configuration;
// Decode always keys by the canonical "feature::..." form.
func Encode(c evalcore.Configuration) (string, error) {
	ws := wireSnapshot{Flags: make([]wireFlag, 0, c.Len())}
	if c.Meta != (evalcore.Meta{}) {
		m := wireMeta{Version: c.Meta.Version, Source: c.Meta.Source}
		if c.Meta.Timestamp != 0 {
			ts := c.Meta.Timestamp
			m.Timestamp = &ts
		}
		ws.Meta = &m
	}

	ids := c.Identifiers()
	for _, id := range ids {
		fd, _ := c.Lookup(id)
		wf, err := encodeFlag(id, fd)
		if err != nil {
			return "", err
		}
		ws.Flags = append(ws.Flags, wf)
	}

	out, err := json.Marshal(ws)
	if err != nil {
		return "", fmt.Errorf("codec: encode: %w", err)
	}
	return string(out), nil
}

func encodeFlag(identifier string, fd evalcore.FeatureDefinition) (wireFlag, error) {
	defVal, err := encodeValue(fd.Default)
	if err != nil {
		return wireFlag{}, err
	}
	values := make([]wireRuleEntry, 0, len(fd.Rules))
	for _, r := range fd.Rules {
		v, err := encodeValue(r.Value)
		if err != nil {
			return wireFlag{}, err
		}
		values = append(values, wireRuleEntry{
			Rule:  encodeRule(r),
			Value: v,
		})
	}
	return wireFlag{
		Key:          identifier,
		DefaultValue: defVal,
		IsActive:     fd.IsActive,
		Salt:         fd.Salt,
		Values:       values,
	}, nil
}

func encodeValue(v evalcore.Value) (wireValue, error) {
	raw, err := json.Marshal(v.Raw())
	if err != nil {
		return wireValue{}, fmt.Errorf("codec: encode value: %w", err)
	}
	return wireValue{Type: v.Type.String(), Value: raw}, nil
}

func encodeRule(r targeting.Rule[evalcore.Value]) wireRule {
	allowlist := make([]string, 0, len(r.Allowlist))
	for id := range r.Allowlist {
		allowlist = append(allowlist, id.String())
	}
	wr := wireRule{RampUp: r.RampUp, Note: r.Note, Allowlist: allowlist}
	if be := encodeBaseEvaluable(r.Base); be != nil {
		wr.BaseEvaluable = be
	}
	return wr
}

func encodeBaseEvaluable(base targeting.BaseCriteria) *wireBaseEvaluable {
	if len(base.Locales) == 0 && len(base.Platforms) == 0 && base.VersionRange == nil && len(base.AxisConstraints) == 0 {
		return nil
	}
	wb := &wireBaseEvaluable{Locales: base.Locales, Platforms: base.Platforms}
	if base.VersionRange != nil {
		wb.VersionRange = encodeVersionRange(base.VersionRange)
	}
	if len(base.AxisConstraints) > 0 {
		wb.Axes = make(map[string][]string, len(base.AxisConstraints))
		for axis, values := range base.AxisConstraints {
			vals := make([]string, 0, len(values))
			for v := range values {
				vals = append(vals, string(v))
			}
			wb.Axes[string(axis)] = vals
		}
	}
	return wb
}

func encodeVersionRange(vr *targeting.VersionRange) *wireVersionRange {
	wv := &wireVersionRange{Type: string(vr.Kind)}
	if vr.Min != nil {
		wv.Min = &wireVersionPart{Major: int64(vr.Min.Major()), Minor: int64(vr.Min.Minor()), Patch: int64(vr.Min.Patch())}
	}
	if vr.Max != nil {
		wv.Max = &wireVersionPart{Major: int64(vr.Max.Major()), Minor: int64(vr.Max.Minor()), Patch: int64(vr.Max.Patch())}
	}
	return wv
}
