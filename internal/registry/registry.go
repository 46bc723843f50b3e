// Package registry implements the NamespaceRegistry: a named isolation
// boundary holding exactly one current Configuration, a bounded history of
// prior configurations, a kill switch, and a set of observability hooks.
// Reads are wait-free atomic pointer loads; writes are serialized by a
// mutex. The pattern is the same atomic-pointer-swap discipline a
// reference flag service uses for its global snapshot, generalized here
// into a reusable, per-namespace type instead of a package-level global.
package registry

import (
	"strconv"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/konditional/konditional/internal/codec"
	"github.com/konditional/konditional/internal/evalcore"
	"github.com/konditional/konditional/internal/hooks"
	"github.com/konditional/konditional/internal/targeting"
)

// DefaultHistoryCapacity is H from the rollback history contract: the
// number of prior configurations retained, oldest evicted first.
const DefaultHistoryCapacity = 8

// Namespace is a single named isolation boundary. The zero value is not
// usable; construct with New.
type Namespace struct {
	name string

	current unsafe.Pointer // *evalcore.Configuration, atomic

	writeMu    sync.Mutex
	history    []evalcore.Configuration // index 0 is the most recently pushed
	historyCap int

	killSwitch int32 // atomic bool: 0 = enabled, 1 = disabled

	hooksPtr unsafe.Pointer // *hooks.Hooks, atomic

	generation uint64 // atomic; bumped on every successful Load and Rollback
	configHash uint64 // atomic; xxhash of the current configuration's canonical JSON
}

// New creates a Namespace with no configuration loaded yet (evaluation
// against it behaves as if every feature is absent — callers see whatever
// Evaluate does when FeatureDefinition is not found) and a history capacity
// of historyCapacity (DefaultHistoryCapacity if <= 0).
func New(name string, historyCapacity int) *Namespace {
	if historyCapacity <= 0 {
		historyCapacity = DefaultHistoryCapacity
	}
	ns := &Namespace{name: name, historyCap: historyCapacity}
	empty := evalcore.Empty()
	atomic.StorePointer(&ns.current, unsafe.Pointer(&empty))
	h := hooks.Hooks{}
	atomic.StorePointer(&ns.hooksPtr, unsafe.Pointer(&h))
	ns.refreshConfigHash(empty)
	return ns
}

// Name returns the namespace's identifying name.
func (ns *Namespace) Name() string { return ns.name }

// Configuration returns an immutable handle to the current snapshot. This
// is a single atomic pointer load: readers never observe a Configuration
// mid-construction and never block on a concurrent writer.
func (ns *Namespace) Configuration() evalcore.Configuration {
	p := (*evalcore.Configuration)(atomic.LoadPointer(&ns.current))
	return *p
}

// Generation returns the count of successful Load and Rollback calls, usable as a
// lightweight config-version fingerprint independent of Configuration.Meta.
func (ns *Namespace) Generation() uint64 {
	return atomic.LoadUint64(&ns.generation)
}

// ConfigVersion returns a non-cryptographic xxhash fingerprint of the
// current configuration's canonical JSON encoding. Unlike Generation,
// which counts Load and Rollback calls, two configurations with identical content
// always produce the same ConfigVersion regardless of how many times each
// was (re)loaded — useful for content-addressed caching by a client that
// wants to skip re-fetching a snapshot it already has. This is a fingerprint
// for change detection, not the bucketing hash used for rollout assignment
// (that is mandated SHA-256, computed in internal/bucket).
func (ns *Namespace) ConfigVersion() string {
	return strconv.FormatUint(atomic.LoadUint64(&ns.configHash), 16)
}

// refreshConfigHash recomputes the fingerprint backing ConfigVersion. A
// Configuration built through NewFeatureDefinition always encodes cleanly,
// so a failure here would indicate a value that cannot round-trip through
// json.Marshal; that is reported through Hooks rather than treated as
// fatal, and leaves the previous fingerprint in place.
func (ns *Namespace) refreshConfigHash(config evalcore.Configuration) {
	raw, err := codec.Encode(config)
	if err != nil {
		ns.Hooks().Warn("failed to compute config fingerprint", err)
		return
	}
	atomic.StoreUint64(&ns.configHash, xxhash.Sum64String(raw))
}

// Hooks returns the currently installed hooks.
func (ns *Namespace) Hooks() hooks.Hooks {
	p := (*hooks.Hooks)(atomic.LoadPointer(&ns.hooksPtr))
	return *p
}

// SetHooks atomically replaces the installed hooks.
func (ns *Namespace) SetHooks(h hooks.Hooks) {
	atomic.StorePointer(&ns.hooksPtr, unsafe.Pointer(&h))
}

// KillSwitchEngaged reports whether evaluations are currently forced to
// their defaults.
func (ns *Namespace) KillSwitchEngaged() bool {
	return atomic.LoadInt32(&ns.killSwitch) != 0
}

// DisableAll engages the kill switch. It never touches the current
// configuration or history.
func (ns *Namespace) DisableAll() {
	atomic.StoreInt32(&ns.killSwitch, 1)
}

// EnableAll disengages the kill switch.
func (ns *Namespace) EnableAll() {
	atomic.StoreInt32(&ns.killSwitch, 0)
}

// Load serializes with any concurrent writer, pushes the current
// configuration onto history (trimming to historyCap), then atomically
// installs next as current. Readers never see a torn state.
func (ns *Namespace) Load(next evalcore.Configuration) {
	ns.writeMu.Lock()
	defer ns.writeMu.Unlock()

	prev := ns.Configuration()
	ns.history = append([]evalcore.Configuration{prev}, ns.history...)
	if len(ns.history) > ns.historyCap {
		ns.history = ns.history[:ns.historyCap]
	}

	atomic.StorePointer(&ns.current, unsafe.Pointer(&next))
	atomic.AddUint64(&ns.generation, 1)
	ns.refreshConfigHash(next)

	ns.Hooks().RecordConfigLoad(ns.name, next.Len())
}

// Rollback pops up to steps entries off history into current. It reports
// false, leaving everything unchanged, if history holds fewer than steps
// entries. steps <= 0 is treated as 1.
func (ns *Namespace) Rollback(steps int) bool {
	if steps <= 0 {
		steps = 1
	}
	ns.writeMu.Lock()
	defer ns.writeMu.Unlock()

	if len(ns.history) < steps {
		ns.Hooks().RecordConfigRollback(ns.name, steps, false)
		return false
	}

	target := ns.history[steps-1]
	ns.history = ns.history[steps:]
	atomic.StorePointer(&ns.current, unsafe.Pointer(&target))
	atomic.AddUint64(&ns.generation, 1)
	ns.refreshConfigHash(target)

	ns.Hooks().RecordConfigRollback(ns.name, steps, true)
	return true
}

// HistoryLen reports how many prior configurations are retained.
func (ns *Namespace) HistoryLen() int {
	ns.writeMu.Lock()
	defer ns.writeMu.Unlock()
	return len(ns.history)
}

// Evaluate runs the full decision algorithm for one feature identifier
// against ctx, consulting the kill switch and the current configuration,
// and reports the outcome to the installed metrics hook. ok is false when
// the identifier has no FeatureDefinition in the current configuration —
// a caller error the namespace cannot resolve on its own.
func (ns *Namespace) Evaluate(identifier string, ctx targeting.Context) (result evalcore.Result, ok bool) {
	h := ns.Hooks()
	fd, found := ns.Configuration().Lookup(identifier)
	if !found {
		return evalcore.Result{}, false
	}

	killed := ns.KillSwitchEngaged()
	onPanic := func(recovered any) {
		h.Warn("extension predicate panicked during evaluation", nil)
		_ = recovered
	}
	result = evalcore.Evaluate(identifier, killed, fd, ctx, onPanic)
	h.RecordEvaluation(identifier, result.Decision.Kind.String())
	return result, true
}
