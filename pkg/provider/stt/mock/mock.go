// Package mock provides a test double for the stt.Provider interface.
//
// Use Provider in unit tests to feed controlled transcripts into the turn
// orchestrator and to inspect the utterances it submits for recognition.
package mock

import (
	"context"
	"sync"

	"github.com/Shadowru/voice-assistant/pkg/provider/stt"
)

// Call records a single invocation of Transcribe.
type Call struct {
	// Samples is a copy of the utterance passed to Transcribe.
	Samples []float32
	// SampleRate is the sample rate passed to Transcribe.
	SampleRate int
	// Language is the language hint passed to Transcribe.
	Language string
}

// Provider is a mock implementation of stt.Provider.
// Zero values cause Transcribe to return an empty transcript and nil error.
type Provider struct {
	mu sync.Mutex

	// Text is the transcript returned by Transcribe.
	Text string

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Calls records every invocation of Transcribe in order.
	Calls []Call
}

// Compile-time interface assertion.
var _ stt.Provider = (*Provider)(nil)

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(_ context.Context, samples []float32, sampleRate int, language string) (string, error) {
	cp := make([]float32, len(samples))
	copy(cp, samples)

	p.mu.Lock()
	p.Calls = append(p.Calls, Call{Samples: cp, SampleRate: sampleRate, Language: language})
	p.mu.Unlock()

	if p.Err != nil {
		return "", p.Err
	}
	return p.Text, nil
}

// CallCount returns the number of recorded Transcribe calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
