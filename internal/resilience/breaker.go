package resilience

import (
	"log/slog"
	"sync"
	"time"
)

// breakerState tracks where a backend breaker currently is.
type breakerState int

const (
	// stateClosed: the backend is healthy, calls go through.
	stateClosed breakerState = iota

	// stateOpen: the backend tripped on consecutive failures; calls are
	// refused until the cooldown elapses.
	stateOpen

	// stateProbing: the cooldown elapsed; a limited number of calls are
	// admitted to judge whether the backend recovered.
	stateProbing
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateProbing:
		return "probing"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes the per-backend breaker of a fallback chain. The zero
// value selects the defaults.
type BreakerConfig struct {
	// MaxFailures is how many consecutive failures trip the breaker.
	// Default 5.
	MaxFailures int

	// Cooldown is how long a tripped breaker refuses calls before probing
	// the backend again. Default 30s.
	Cooldown time.Duration

	// ProbeQuota is how many consecutive successful probes close a tripped
	// breaker. A single failed probe re-trips it. Default 3.
	ProbeQuota int
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MaxFailures <= 0 {
		c.MaxFailures = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	if c.ProbeQuota <= 0 {
		c.ProbeQuota = 3
	}
	return c
}

// breaker guards one backend of a fallback chain. The chain asks allow
// before each call and feeds the outcome back through record.
type breaker struct {
	name string
	cfg  BreakerConfig

	mu         sync.Mutex
	state      breakerState
	failures   int
	trippedAt  time.Time
	probesUsed int
	probesOK   int
}

func newBreaker(name string, cfg BreakerConfig) *breaker {
	return &breaker{name: name, cfg: cfg.withDefaults()}
}

// allow reports whether a call to the backend may proceed, moving a tripped
// breaker into the probing state once its cooldown has elapsed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		return true

	case stateOpen:
		if time.Since(b.trippedAt) < b.cfg.Cooldown {
			return false
		}
		b.state = stateProbing
		b.probesUsed = 0
		b.probesOK = 0
		slog.Info("backend breaker probing after cooldown", "backend", b.name)
	}

	if b.probesUsed >= b.cfg.ProbeQuota {
		return false
	}
	b.probesUsed++
	return true
}

// record feeds one call outcome back into the breaker.
func (b *breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.trippedAt = time.Now()
		switch b.state {
		case stateProbing:
			// One bad probe is enough evidence.
			b.state = stateOpen
			slog.Warn("backend breaker re-tripped by failed probe", "backend", b.name)
		case stateClosed:
			b.failures++
			if b.failures >= b.cfg.MaxFailures {
				b.state = stateOpen
				slog.Warn("backend breaker tripped",
					"backend", b.name, "consecutive_failures", b.failures)
			}
		}
		return
	}

	switch b.state {
	case stateProbing:
		b.probesOK++
		if b.probesOK >= b.cfg.ProbeQuota {
			b.state = stateClosed
			b.failures = 0
			slog.Info("backend breaker closed after successful probes", "backend", b.name)
		}
	case stateClosed:
		b.failures = 0
	}
}

// currentState reports the breaker state, for introspection in tests and
// logs; a tripped breaker past its cooldown still reads open until the next
// allow call performs the transition.
func (b *breaker) currentState() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
