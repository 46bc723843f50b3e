package codec

import (
	"encoding/json"
	"fmt"

	"github.com/konditional/konditional/internal/evalcore"
	"github.com/konditional/konditional/internal/feature"
)

// DecodePatch parses a patch JSON document: the same per-flag validation
// discipline as Decode, plus a "removeKeys" array of identifiers to drop.
// Legacy "value::..." identifiers in removeKeys are normalized to their
// canonical "feature::..." form.
func DecodePatch(data []byte, resolver *feature.Resolver, opts Options) (evalcore.Patch, error) {
	if err := checkKeys(data, patchTopLevelKeys, opts); err != nil {
		return evalcore.Patch{}, err
	}

	var top struct {
		Flags      []json.RawMessage `json:"flags"`
		RemoveKeys []string          `json:"removeKeys"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return evalcore.Patch{}, errInvalidJSON(err.Error())
	}

	upserts := make(map[string]evalcore.FeatureDefinition, len(top.Flags))
	for _, raw := range top.Flags {
		if err := checkKeys(raw, flagKeys, opts); err != nil {
			return evalcore.Patch{}, err
		}
		var wf wireFlag
		if err := json.Unmarshal(raw, &wf); err != nil {
			return evalcore.Patch{}, errInvalidJSON(err.Error())
		}
		identifier, fd, perr := decodeFlag(wf, resolver, opts)
		if perr != nil {
			return evalcore.Patch{}, perr
		}
		upserts[identifier] = fd
	}

	removeKeys := make([]string, 0, len(top.RemoveKeys))
	for _, k := range top.RemoveKeys {
		removeKeys = append(removeKeys, feature.CanonicalIdentifier(k))
	}

	return evalcore.Patch{Upserts: upserts, RemoveKeys: removeKeys}, nil
}

// EncodePatch serializes a Patch to the wire patch JSON shape.
func EncodePatch(p evalcore.Patch) (string, error) {
	wp := wirePatch{RemoveKeys: p.RemoveKeys, Flags: make([]wireFlag, 0, len(p.Upserts))}
	for id, fd := range p.Upserts {
		wf, err := encodeFlag(id, fd)
		if err != nil {
			return "", err
		}
		wp.Flags = append(wp.Flags, wf)
	}
	out, err := json.Marshal(wp)
	if err != nil {
		return "", fmt.Errorf("codec: encode patch: %w", err)
	}
	return string(out), nil
}

// ApplyPatchJSON decodes a patch and applies it to current, returning the
// resulting Configuration. current is never mutated; the caller is
// responsible for publishing the result into a namespace.
func ApplyPatchJSON(current evalcore.Configuration, data []byte, resolver *feature.Resolver, opts Options) (evalcore.Configuration, error) {
	patch, err := DecodePatch(data, resolver, opts)
	if err != nil {
		return evalcore.Configuration{}, err
	}
	return patch.Apply(current), nil
}
