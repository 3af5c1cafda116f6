// Package mock provides a test double for the vad.Engine interface.
//
// Use Engine to feed controlled per-frame speech probabilities into the
// endpoint detector without a live model.
//
// Example:
//
//	eng := &mock.Engine{
//	    Frame: 512,
//	    ProbFunc: func(frame []float32) float64 {
//	        if audio.MeanAbsAmplitude(frame) > 0.05 {
//	            return 0.95
//	        }
//	        return 0.01
//	    },
//	}
package mock

import (
	"sync"

	"github.com/Shadowru/voice-assistant/pkg/provider/vad"
)

// Call records a single invocation of SpeechProbabilities.
type Call struct {
	// Samples is the number of samples passed in.
	Samples int
	// SampleRate is the sample rate passed in.
	SampleRate int
}

// Engine is a mock implementation of vad.Engine.
// Zero values cause SpeechProbabilities to report probability 0 for every frame.
type Engine struct {
	mu sync.Mutex

	// Frame is the value returned by FrameSamples. Defaults to 512 when zero.
	Frame int

	// ProbFunc, when non-nil, computes the probability for each frame.
	ProbFunc func(frame []float32) float64

	// Probs, when non-nil and ProbFunc is nil, is returned verbatim
	// (truncated or zero-padded to the frame count).
	Probs []float64

	// Err, if non-nil, is returned as the error from SpeechProbabilities.
	Err error

	// Calls records every invocation of SpeechProbabilities in order.
	Calls []Call
}

// Compile-time interface assertion.
var _ vad.Engine = (*Engine)(nil)

// FrameSamples implements vad.Engine.
func (e *Engine) FrameSamples() int {
	if e.Frame <= 0 {
		return 512
	}
	return e.Frame
}

// SpeechProbabilities implements vad.Engine.
func (e *Engine) SpeechProbabilities(pcm []float32, sampleRate int) ([]float64, error) {
	e.mu.Lock()
	e.Calls = append(e.Calls, Call{Samples: len(pcm), SampleRate: sampleRate})
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}

	frame := e.FrameSamples()
	n := len(pcm) / frame
	probs := make([]float64, n)
	for i := range probs {
		switch {
		case e.ProbFunc != nil:
			probs[i] = e.ProbFunc(pcm[i*frame : (i+1)*frame])
		case i < len(e.Probs):
			probs[i] = e.Probs[i]
		}
	}
	return probs, nil
}
