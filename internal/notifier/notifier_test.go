package notifier

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestComputeHMAC_VerifySignatureRoundTrips(t *testing.T) {
	payload := []byte(`{"hello":"world"}`)
	sig := ComputeHMAC(payload, "secret")
	if !VerifySignature(payload, sig, "secret") {
		t.Fatal("expected a matching signature to verify")
	}
	if VerifySignature(payload, sig, "wrong-secret") {
		t.Fatal("expected a mismatched secret to fail verification")
	}
}

func TestNotifier_DeliversSignedPayloadToSink(t *testing.T) {
	var received atomic.Bool
	var mu sync.Mutex
	var gotSig string

	sink := Sink{
		Secret:     "shh",
		MaxRetries: 1,
		Deliver: func(payload []byte, signature string) error {
			mu.Lock()
			gotSig = signature
			mu.Unlock()
			if VerifySignature(payload, signature, "shh") {
				received.Store(true)
			}
			return nil
		},
	}

	n := New([]Sink{sink})
	defer n.Close()

	n.Notify(Event{Type: EventLoad, Namespace: "core", Generation: 1, FeatureCount: 3})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if received.Load() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !received.Load() {
		t.Fatalf("expected the sink to receive a validly signed delivery (last sig %q)", gotSig)
	}
}

func TestNotifier_RetriesOnFailureThenGivesUp(t *testing.T) {
	var attempts atomic.Int32
	sink := Sink{
		Secret:     "shh",
		MaxRetries: 2,
		Deliver: func(payload []byte, signature string) error {
			attempts.Add(1)
			return errors.New("boom")
		},
	}

	n := New([]Sink{sink})
	defer n.Close()

	n.Notify(Event{Type: EventRollback, Namespace: "core"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if attempts.Load() >= 3 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("attempts = %d, want 3 (1 initial + 2 retries)", got)
	}
}

func TestNotifier_CloseDrainsQueueBeforeReturning(t *testing.T) {
	var delivered atomic.Bool
	sink := Sink{
		Deliver: func(payload []byte, signature string) error {
			delivered.Store(true)
			return nil
		},
	}

	n := New([]Sink{sink})
	n.Notify(Event{Type: EventLoad, Namespace: "core"})
	n.Close()

	if !delivered.Load() {
		t.Fatal("expected Close to drain the queue before returning")
	}
}
