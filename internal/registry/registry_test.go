package registry

import (
	"sync"
	"testing"

	"github.com/konditional/konditional/internal/evalcore"
	"github.com/konditional/konditional/internal/hooks"
	"github.com/konditional/konditional/internal/targeting"
)

func configWithBool(key string, v bool) evalcore.Configuration {
	fd, _ := evalcore.NewFeatureDefinition(evalcore.Bool(v), nil, "v1", true)
	return evalcore.NewConfiguration(map[string]evalcore.FeatureDefinition{key: fd}, evalcore.Meta{})
}

func TestNamespace_StartsEmpty(t *testing.T) {
	ns := New("core", 0)
	if ns.Configuration().Len() != 0 {
		t.Fatal("expected a fresh namespace to start with an empty configuration")
	}
	if ns.HistoryLen() != 0 {
		t.Fatal("expected a fresh namespace to start with no history")
	}
}

func TestNamespace_LoadInstallsConfigurationAndPushesHistory(t *testing.T) {
	ns := New("core", 4)
	c1 := configWithBool("feature::core::x", true)
	ns.Load(c1)

	if ns.Configuration().Len() != 1 {
		t.Fatal("expected the loaded configuration to be current")
	}
	if ns.HistoryLen() != 1 {
		t.Fatalf("HistoryLen() = %d, want 1 (the empty configuration pushed aside)", ns.HistoryLen())
	}
	if ns.Generation() != 1 {
		t.Fatalf("Generation() = %d, want 1", ns.Generation())
	}
}

func TestNamespace_HistoryTrimsToCapacity(t *testing.T) {
	ns := New("core", 2)
	for i := 0; i < 5; i++ {
		ns.Load(configWithBool("feature::core::x", i%2 == 0))
	}
	if ns.HistoryLen() != 2 {
		t.Fatalf("HistoryLen() = %d, want 2 (capacity)", ns.HistoryLen())
	}
}

func TestNamespace_RollbackRestoresPriorConfiguration(t *testing.T) {
	ns := New("core", 4)
	ns.Load(configWithBool("feature::core::x", true))
	ns.Load(configWithBool("feature::core::x", false))

	if ok := ns.Rollback(1); !ok {
		t.Fatal("expected rollback to succeed")
	}
	fd, _ := ns.Configuration().Lookup("feature::core::x")
	if !fd.Default.Equal(evalcore.Bool(true)) {
		t.Fatalf("expected rollback to restore the prior configuration, got %+v", fd.Default)
	}
}

func TestNamespace_ConfigVersionStableWithoutLoad(t *testing.T) {
	ns := New("core", 4)
	v1 := ns.ConfigVersion()
	v2 := ns.ConfigVersion()
	if v1 != v2 {
		t.Fatalf("ConfigVersion() changed with no Load in between: %q vs %q", v1, v2)
	}
}

func TestNamespace_ConfigVersionMatchesForIdenticalContent(t *testing.T) {
	ns1 := New("core", 4)
	ns1.Load(configWithBool("feature::core::x", true))

	ns2 := New("other", 4)
	ns2.Load(configWithBool("feature::core::x", true))

	if ns1.ConfigVersion() != ns2.ConfigVersion() {
		t.Fatalf("ConfigVersion() differed for identical configuration content: %q vs %q", ns1.ConfigVersion(), ns2.ConfigVersion())
	}
}

func TestNamespace_ConfigVersionChangesWithContent(t *testing.T) {
	ns := New("core", 4)
	before := ns.ConfigVersion()

	ns.Load(configWithBool("feature::core::x", true))
	afterFirstLoad := ns.ConfigVersion()
	if afterFirstLoad == before {
		t.Fatal("expected ConfigVersion() to change after loading a non-empty configuration")
	}

	ns.Load(configWithBool("feature::core::x", false))
	afterSecondLoad := ns.ConfigVersion()
	if afterSecondLoad == afterFirstLoad {
		t.Fatal("expected ConfigVersion() to change when loaded content changes")
	}

	if ok := ns.Rollback(1); !ok {
		t.Fatal("expected rollback to succeed")
	}
	if ns.ConfigVersion() != afterFirstLoad {
		t.Fatalf("expected rollback to restore the prior ConfigVersion, got %q, want %q", ns.ConfigVersion(), afterFirstLoad)
	}
}

func TestNamespace_RollbackFailsPastHistoryLength(t *testing.T) {
	ns := New("core", 4)
	ns.Load(configWithBool("feature::core::x", true))

	if ok := ns.Rollback(5); ok {
		t.Fatal("expected rollback beyond available history to fail")
	}
	if ns.Configuration().Len() != 1 {
		t.Fatal("a failed rollback must not alter the current configuration")
	}
}

func TestNamespace_KillSwitchForcesDefaultWithoutAlteringConfiguration(t *testing.T) {
	ns := New("core", 4)
	ns.Load(configWithBool("feature::core::x", true))
	before := ns.Configuration()

	ns.DisableAll()
	if !ns.KillSwitchEngaged() {
		t.Fatal("expected kill switch to be engaged")
	}
	res, ok := ns.Evaluate("feature::core::x", targeting.Context{})
	if !ok {
		t.Fatal("expected the feature to be found")
	}
	if res.Decision.Kind != evalcore.RegistryDisabled {
		t.Fatalf("Kind = %v, want RegistryDisabled", res.Decision.Kind)
	}
	if ns.Configuration().Len() != before.Len() {
		t.Fatal("kill switch must never mutate the current configuration")
	}

	ns.EnableAll()
	if ns.KillSwitchEngaged() {
		t.Fatal("expected kill switch to be disengaged")
	}
}

func TestNamespace_EvaluateUnknownIdentifierReportsNotOK(t *testing.T) {
	ns := New("core", 4)
	_, ok := ns.Evaluate("feature::core::missing", targeting.Context{})
	if ok {
		t.Fatal("expected an unknown identifier to report ok=false")
	}
}

type countingMetrics struct {
	mu    sync.Mutex
	evals int
	loads int
}

func (m *countingMetrics) RecordEvaluation(string, string)      { m.mu.Lock(); m.evals++; m.mu.Unlock() }
func (m *countingMetrics) RecordConfigLoad(string, int)         { m.mu.Lock(); m.loads++; m.mu.Unlock() }
func (m *countingMetrics) RecordConfigRollback(string, int, bool) {}

func TestNamespace_HooksReceiveLoadAndEvaluationEvents(t *testing.T) {
	ns := New("core", 4)
	metrics := &countingMetrics{}
	ns.SetHooks(hooks.Hooks{Metrics: metrics})

	ns.Load(configWithBool("feature::core::x", true))
	ns.Evaluate("feature::core::x", targeting.Context{})

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if metrics.loads != 1 {
		t.Fatalf("loads = %d, want 1", metrics.loads)
	}
	if metrics.evals != 1 {
		t.Fatalf("evals = %d, want 1", metrics.evals)
	}
}

func TestNamespace_ConcurrentReadsDuringLoadNeverObserveNil(t *testing.T) {
	ns := New("core", 4)
	ns.Load(configWithBool("feature::core::x", true))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			ns.Load(configWithBool("feature::core::x", i%2 == 0))
		}
		close(stop)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = ns.Configuration()
			}
		}
	}()
	wg.Wait()
}
