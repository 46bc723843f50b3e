// Package loader provides the side-effecting glue between the codec and a
// namespace registry: decode, and on success only, atomically publish the
// result. A failed decode leaves the namespace's current configuration
// untouched.
package loader

import (
	"github.com/konditional/konditional/internal/codec"
	"github.com/konditional/konditional/internal/feature"
	"github.com/konditional/konditional/internal/registry"
)

// Summary reports what a successful load published.
type Summary struct {
	Namespace    string
	FeatureCount int
}

// Load decodes json against resolver and, only if decoding succeeds,
// publishes the resulting Configuration into ns via Load. On failure ns is
// left completely unchanged and the typed *codec.ParseError is returned.
func Load(ns *registry.Namespace, data []byte, resolver *feature.Resolver, opts codec.Options) (Summary, error) {
	config, err := codec.Decode(data, resolver, opts)
	if err != nil {
		return Summary{}, err
	}
	ns.Load(config)
	return Summary{Namespace: ns.Name(), FeatureCount: config.Len()}, nil
}

// LoadPatch decodes a patch against resolver, applies it to ns's current
// configuration, and, only on success, publishes the merged result.
func LoadPatch(ns *registry.Namespace, data []byte, resolver *feature.Resolver, opts codec.Options) (Summary, error) {
	current := ns.Configuration()
	next, err := codec.ApplyPatchJSON(current, data, resolver, opts)
	if err != nil {
		return Summary{}, err
	}
	ns.Load(next)
	return Summary{Namespace: ns.Name(), FeatureCount: next.Len()}, nil
}
