// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that the orchestrator sends correct
// CompletionRequests and to feed controlled responses without a live backend.
//
// Example:
//
//	p := &mock.Provider{
//	    Response: &llm.CompletionResponse{Content: "Hello!"},
//	}
//	resp, err := p.Complete(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/Shadowru/voice-assistant/pkg/provider/llm"
)

// Call records a single invocation of Complete.
type Call struct {
	// Req is the CompletionRequest passed to Complete.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
// Zero values cause Complete to return an empty response and nil error.
type Provider struct {
	mu sync.Mutex

	// Response is returned by Complete. When nil, an empty
	// CompletionResponse is returned instead.
	Response *llm.CompletionResponse

	// Err, if non-nil, is returned as the error from Complete.
	Err error

	// Calls records every invocation of Complete in order.
	Calls []Call
}

// Compile-time interface assertion.
var _ llm.Provider = (*Provider)(nil)

// Complete implements llm.Provider.
func (p *Provider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, Call{Req: req})
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	if p.Response == nil {
		return &llm.CompletionResponse{}, nil
	}
	resp := *p.Response
	return &resp, nil
}

// CallCount returns the number of recorded Complete calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// LastRequest returns the most recent recorded request, or a zero value when
// Complete has not been called.
func (p *Provider) LastRequest() llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Calls) == 0 {
		return llm.CompletionRequest{}
	}
	return p.Calls[len(p.Calls)-1].Req
}
