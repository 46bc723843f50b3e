package evalcore

// Meta carries optional, informational metadata about a Configuration's
// provenance. None of it affects evaluation.
type Meta struct {
	Version   string
	Source    string
	Timestamp int64 // unix seconds; zero means unset
}

// Configuration is an immutable mapping from Feature identifier to
// FeatureDefinition, plus optional metadata. Once constructed it is never
// mutated; Patch.Apply and the builder both produce a new Configuration
// rather than editing one in place.
type Configuration struct {
	definitions map[string]FeatureDefinition
	Meta        Meta
}

// NewConfiguration builds a Configuration from a definitions map. The map
// is copied so the caller's map may be mutated afterward without affecting
// the Configuration.
func NewConfiguration(definitions map[string]FeatureDefinition, meta Meta) Configuration {
	cp := make(map[string]FeatureDefinition, len(definitions))
	for k, v := range definitions {
		cp[k] = v
	}
	return Configuration{definitions: cp, Meta: meta}
}

// Empty is the configuration a Namespace starts with before any snapshot
// has ever loaded successfully: it has no entries, so every feature falls
// through to its declared default — absence of an entry is modeled
// explicitly, not papered over with a hard-coded default baked into the
// evaluator.
func Empty() Configuration {
	return Configuration{definitions: map[string]FeatureDefinition{}}
}

// Lookup returns the FeatureDefinition for a feature identifier.
func (c Configuration) Lookup(identifier string) (FeatureDefinition, bool) {
	fd, ok := c.definitions[identifier]
	return fd, ok
}

// Identifiers lists every feature identifier present in the configuration.
func (c Configuration) Identifiers() []string {
	out := make([]string, 0, len(c.definitions))
	for id := range c.definitions {
		out = append(out, id)
	}
	return out
}

// Len reports how many feature definitions the configuration holds.
func (c Configuration) Len() int { return len(c.definitions) }

// WithDefinition returns a new Configuration with identifier bound to def,
// replacing any prior entry. The receiver is left unmodified.
func (c Configuration) WithDefinition(identifier string, def FeatureDefinition) Configuration {
	cp := make(map[string]FeatureDefinition, len(c.definitions)+1)
	for k, v := range c.definitions {
		cp[k] = v
	}
	cp[identifier] = def
	return Configuration{definitions: cp, Meta: c.Meta}
}

// WithoutDefinition returns a new Configuration with identifier removed.
func (c Configuration) WithoutDefinition(identifier string) Configuration {
	cp := make(map[string]FeatureDefinition, len(c.definitions))
	for k, v := range c.definitions {
		if k == identifier {
			continue
		}
		cp[k] = v
	}
	return Configuration{definitions: cp, Meta: c.Meta}
}

// Patch is a partial update: a set of added/replaced FeatureDefinitions and
// a set of removed feature identifiers.
type Patch struct {
	Upserts    map[string]FeatureDefinition
	RemoveKeys []string
}

// Apply produces a new Configuration with the patch's removals and upserts
// applied; it never mutates base. Upserts are applied after removals so a
// patch may remove and immediately re-add the same identifier.
func (p Patch) Apply(base Configuration) Configuration {
	out := base
	for _, id := range p.RemoveKeys {
		out = out.WithoutDefinition(id)
	}
	for id, def := range p.Upserts {
		out = out.WithDefinition(id, def)
	}
	return out
}
