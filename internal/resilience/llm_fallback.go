package resilience

import (
	"context"

	"github.com/Shadowru/voice-assistant/pkg/provider/llm"
)

// LLMFallback implements [llm.Provider] over a chain of language backends.
// A turn keeps getting answered as long as any backend in the chain is up.
type LLMFallback struct {
	chain *chain[llm.Provider]
}

// Compile-time interface assertion.
var _ llm.Provider = (*LLMFallback)(nil)

// NewLLMFallback creates an [LLMFallback] with primary as the preferred
// backend.
func NewLLMFallback(primary llm.Provider, name string, opts ...Option) *LLMFallback {
	return &LLMFallback{chain: newChain(name, primary, opts...)}
}

// AddFallback appends a spare backend, tried after everything added before it.
func (f *LLMFallback) AddFallback(name string, provider llm.Provider) {
	f.chain.add(name, provider)
}

// Complete answers the request from the first backend that produces a
// completion.
func (f *LLMFallback) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return tryEach(f.chain, func(p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}
