package codec

import "encoding/json"

type wireMeta struct {
	Version   string `json:"version,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
	Source    string `json:"source,omitempty"`
}

type wireVersionPart struct {
	Major int64 `json:"major"`
	Minor int64 `json:"minor"`
	Patch int64 `json:"patch"`
}

type wireVersionRange struct {
	Type string           `json:"type"`
	Min  *wireVersionPart `json:"min,omitempty"`
	Max  *wireVersionPart `json:"max,omitempty"`
}

type wireBaseEvaluable struct {
	Locales      []string            `json:"locales,omitempty"`
	Platforms    []string            `json:"platforms,omitempty"`
	VersionRange *wireVersionRange   `json:"versionRange,omitempty"`
	Axes         map[string][]string `json:"axes,omitempty"`
}

type wireRule struct {
	RampUp        float64            `json:"rampUp"`
	Note          string             `json:"note,omitempty"`
	Allowlist     []string           `json:"allowlist,omitempty"`
	BaseEvaluable *wireBaseEvaluable `json:"baseEvaluable,omitempty"`
}

type wireValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type wireRuleEntry struct {
	Rule  wireRule  `json:"rule"`
	Value wireValue `json:"value"`
}

type wireFlag struct {
	Key          string          `json:"key"`
	DefaultValue wireValue       `json:"defaultValue"`
	IsActive     bool            `json:"isActive"`
	Salt         string          `json:"salt,omitempty"`
	Values       []wireRuleEntry `json:"values,omitempty"`
}

type wireSnapshot struct {
	Meta  *wireMeta  `json:"meta,omitempty"`
	Flags []wireFlag `json:"flags"`
}

type wirePatch struct {
	Meta       *wireMeta  `json:"meta,omitempty"`
	Flags      []wireFlag `json:"flags,omitempty"`
	RemoveKeys []string   `json:"removeKeys,omitempty"`
}

var snapshotTopLevelKeys = map[string]struct{}{"meta": {}, "flags": {}}
var patchTopLevelKeys = map[string]struct{}{"meta": {}, "flags": {}, "removeKeys": {}}
var flagKeys = map[string]struct{}{
	"key": {}, "defaultValue": {}, "isActive": {}, "salt": {}, "values": {},
}

// unknownKeys reports any object keys in raw not present in allowed.
func unknownKeys(raw json.RawMessage, allowed map[string]struct{}) ([]string, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	var extra []string
	for k := range m {
		if _, ok := allowed[k]; !ok {
			extra = append(extra, k)
		}
	}
	return extra, nil
}
