package resilience

import (
	"context"

	"github.com/Shadowru/voice-assistant/pkg/provider/tts"
)

// TTSFallback implements [tts.Provider] over a chain of synthesis backends,
// for instance two coqui servers behind different URLs.
type TTSFallback struct {
	chain *chain[tts.Provider]
}

// Compile-time interface assertion.
var _ tts.Provider = (*TTSFallback)(nil)

// NewTTSFallback creates a [TTSFallback] with primary as the preferred
// backend.
func NewTTSFallback(primary tts.Provider, name string, opts ...Option) *TTSFallback {
	return &TTSFallback{chain: newChain(name, primary, opts...)}
}

// AddFallback appends a spare backend, tried after everything added before it.
func (f *TTSFallback) AddFallback(name string, provider tts.Provider) {
	f.chain.add(name, provider)
}

// Synthesize renders text with backends in order until one returns audio.
func (f *TTSFallback) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return tryEach(f.chain, func(p tts.Provider) ([]byte, error) {
		return p.Synthesize(ctx, text)
	})
}
