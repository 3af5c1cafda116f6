// Package resilience keeps a turn moving when a speech or language backend
// misbehaves. A fallback chain holds a primary backend plus ordered spares;
// each backend sits behind its own breaker, so a backend that keeps failing
// mid-conversation is skipped outright until it proves itself again.
// [LLMFallback], [STTFallback] and [TTSFallback] are the provider-facing
// chains wired from configuration.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllBackendsFailed is returned when no backend in a chain produced a
// result: every admitted call failed, or every breaker refused the call.
var ErrAllBackendsFailed = errors.New("resilience: all backends failed")

// Option configures a fallback chain.
type Option func(*options)

type options struct {
	breaker BreakerConfig
}

// WithBreaker overrides the breaker tuning applied to every backend in the
// chain.
func WithBreaker(cfg BreakerConfig) Option {
	return func(o *options) { o.breaker = cfg }
}

// backend pairs one provider instance with its breaker.
type backend[T any] struct {
	name string
	impl T
	brk  *breaker
}

// chain is the ordered backend list shared by the typed fallback wrappers.
type chain[T any] struct {
	backends []backend[T]
	breaker  BreakerConfig
}

func newChain[T any](name string, primary T, opts ...Option) *chain[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := &chain[T]{breaker: o.breaker}
	c.add(name, primary)
	return c
}

func (c *chain[T]) add(name string, impl T) {
	c.backends = append(c.backends, backend[T]{
		name: name,
		impl: impl,
		brk:  newBreaker(name, c.breaker),
	})
}

// tryEach runs fn against each backend in order until one succeeds, skipping
// backends whose breaker refuses the call. A package function because Go
// methods cannot introduce type parameters.
func tryEach[T, R any](c *chain[T], fn func(T) (R, error)) (R, error) {
	var (
		zero    R
		lastErr error
	)
	for i := range c.backends {
		b := &c.backends[i]
		if !b.brk.allow() {
			slog.Debug("skipping backend, breaker refused the call", "backend", b.name)
			continue
		}

		result, err := fn(b.impl)
		b.brk.record(err)
		if err == nil {
			return result, nil
		}
		lastErr = err
		slog.Warn("backend failed, failing over", "backend", b.name, "error", err)
	}
	if lastErr == nil {
		return zero, ErrAllBackendsFailed
	}
	return zero, fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
}
