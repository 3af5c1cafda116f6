package resilience

import (
	"context"

	"github.com/Shadowru/voice-assistant/pkg/provider/stt"
)

// STTFallback implements [stt.Provider] over a chain of transcription
// backends, typically a large primary model backed by a smaller spare.
type STTFallback struct {
	chain *chain[stt.Provider]
}

// Compile-time interface assertion.
var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred
// backend.
func NewSTTFallback(primary stt.Provider, name string, opts ...Option) *STTFallback {
	return &STTFallback{chain: newChain(name, primary, opts...)}
}

// AddFallback appends a spare backend, tried after everything added before it.
func (f *STTFallback) AddFallback(name string, provider stt.Provider) {
	f.chain.add(name, provider)
}

// Transcribe submits the utterance to backends in order until one returns a
// transcript.
func (f *STTFallback) Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (string, error) {
	return tryEach(f.chain, func(p stt.Provider) (string, error) {
		return p.Transcribe(ctx, samples, sampleRate, language)
	})
}
