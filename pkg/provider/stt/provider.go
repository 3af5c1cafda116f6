// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription engine (e.g., a local whisper.cpp
// model or a remote API) behind a single batch call: the turn orchestrator
// hands over one complete utterance and receives the recognized text. There
// is no streaming surface — utterances are bounded by the endpoint detector
// before recognition starts, so partial results would never be delivered.
//
// Implementations must be safe for concurrent use; multiple sessions may
// transcribe utterances simultaneously.
package stt

import "context"

// Provider is the abstraction over any STT backend.
type Provider interface {
	// Transcribe converts one utterance (mono normalized float32 samples at
	// sampleRate Hz) into text. language is a BCP-47 hint; empty lets the
	// provider auto-detect if supported.
	//
	// An empty string with a nil error is a valid result and means the
	// utterance contained no recognizable speech. Implementations must
	// respect ctx cancellation.
	Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (string, error)
}
