// Package mock provides a test double for the tts.Provider interface.
//
// Use Provider to feed controlled PCM audio into the turn orchestrator and to
// inspect the text it submits for synthesis.
package mock

import (
	"context"
	"sync"

	"github.com/Shadowru/voice-assistant/pkg/provider/tts"
)

// Provider is a mock implementation of tts.Provider.
// Zero values cause Synthesize to return nil audio and nil error.
type Provider struct {
	mu sync.Mutex

	// Audio is the PCM returned by Synthesize.
	Audio []byte

	// Err, if non-nil, is returned as the error from Synthesize.
	Err error

	// Texts records the text passed to every Synthesize call in order.
	Texts []string
}

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(_ context.Context, text string) ([]byte, error) {
	p.mu.Lock()
	p.Texts = append(p.Texts, text)
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	return p.Audio, nil
}

// CallCount returns the number of recorded Synthesize calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Texts)
}
