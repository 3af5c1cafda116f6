// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g., a local Coqui server)
// behind a single batch call: the turn orchestrator hands over the assistant's
// response text and receives raw PCM audio. Synthesis failure is never fatal
// to a turn — callers deliver the text-only result when audio is unavailable.
//
// Implementations must be safe for concurrent use; multiple sessions may
// synthesize responses in parallel.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Synthesize converts text into raw mono signed 16-bit little-endian PCM
	// audio bytes. Implementations must respect ctx cancellation.
	//
	// Returns an error if synthesis fails; callers treat the audio as absent
	// and continue with the text-only result.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
