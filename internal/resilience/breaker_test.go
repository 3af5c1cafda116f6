package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBackendDown = errors.New("backend down")

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b := newBreaker("llm-primary", BreakerConfig{MaxFailures: 3})

	for i := 0; i < 2; i++ {
		if !b.allow() {
			t.Fatalf("call %d refused before tripping", i)
		}
		b.record(errBackendDown)
	}
	if b.currentState() != stateClosed {
		t.Fatal("tripped before reaching the failure limit")
	}

	b.allow()
	b.record(errBackendDown)
	if b.currentState() != stateOpen {
		t.Fatal("did not trip at the failure limit")
	}
	if b.allow() {
		t.Error("tripped breaker admitted a call")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := newBreaker("llm-primary", BreakerConfig{MaxFailures: 2})

	b.allow()
	b.record(errBackendDown)
	b.allow()
	b.record(nil)
	b.allow()
	b.record(errBackendDown)

	if b.currentState() != stateClosed {
		t.Error("breaker tripped although failures were not consecutive")
	}
}

func TestBreakerProbesAfterCooldown(t *testing.T) {
	b := newBreaker("stt-primary", BreakerConfig{
		MaxFailures: 1,
		Cooldown:    5 * time.Millisecond,
		ProbeQuota:  2,
	})

	b.allow()
	b.record(errBackendDown)
	if b.allow() {
		t.Fatal("admitted a call during the cooldown")
	}

	time.Sleep(10 * time.Millisecond)
	if !b.allow() {
		t.Fatal("refused the probe after the cooldown")
	}
	if b.currentState() != stateProbing {
		t.Fatalf("state = %v, want probing", b.currentState())
	}
}

func TestBreakerFailedProbeReTrips(t *testing.T) {
	b := newBreaker("stt-primary", BreakerConfig{
		MaxFailures: 1,
		Cooldown:    5 * time.Millisecond,
		ProbeQuota:  3,
	})

	b.allow()
	b.record(errBackendDown)
	time.Sleep(10 * time.Millisecond)

	b.allow()
	b.record(errBackendDown)
	if b.currentState() != stateOpen {
		t.Error("failed probe did not re-trip the breaker")
	}
	if b.allow() {
		t.Error("re-tripped breaker admitted a call")
	}
}

func TestBreakerClosesAfterSuccessfulProbes(t *testing.T) {
	b := newBreaker("tts-primary", BreakerConfig{
		MaxFailures: 1,
		Cooldown:    5 * time.Millisecond,
		ProbeQuota:  2,
	})

	b.allow()
	b.record(errBackendDown)
	time.Sleep(10 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if !b.allow() {
			t.Fatalf("probe %d refused", i)
		}
		b.record(nil)
	}
	if b.currentState() != stateClosed {
		t.Fatalf("state = %v, want closed after successful probes", b.currentState())
	}
	if !b.allow() {
		t.Error("closed breaker refused a call")
	}
}

func TestBreakerProbeQuotaBoundsAdmissions(t *testing.T) {
	b := newBreaker("llm-primary", BreakerConfig{
		MaxFailures: 1,
		Cooldown:    5 * time.Millisecond,
		ProbeQuota:  1,
	})

	b.allow()
	b.record(errBackendDown)
	time.Sleep(10 * time.Millisecond)

	if !b.allow() {
		t.Fatal("first probe refused")
	}
	// Outcome not recorded yet; further calls must wait for it.
	if b.allow() {
		t.Error("admitted a second probe beyond the quota")
	}
}
