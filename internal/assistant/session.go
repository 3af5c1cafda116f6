package assistant

import (
	"sync"

	"github.com/Shadowru/voice-assistant/internal/endpoint"
)

// State describes where a session currently is in the turn lifecycle.
type State string

// Session lifecycle states. A session spends most of its life in
// StateListening; the pipeline states are transient and exist mainly for
// introspection and logging.
const (
	StateIdle         State = "idle"
	StateListening    State = "listening"
	StateRecognizing  State = "recognizing"
	StateResponding   State = "responding"
	StateSynthesizing State = "synthesizing"
)

// Session holds the per-connection state of one conversation: the audio
// buffer being accumulated for the current utterance, the endpoint detector
// judging it, and the bounded conversation history.
//
// Safe for concurrent use; the audio buffer and state are guarded by a
// mutex, the history has its own synchronisation.
type Session struct {
	id         string
	sampleRate int
	maxSamples int
	detector   endpoint.Detector
	history    *History

	mu     sync.Mutex
	buffer []float32
	state  State
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// History returns the session's conversation history.
func (s *Session) History() *History { return s.history }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// setState transitions the session state.
func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// appendSamples adds decoded samples to the utterance buffer, discarding the
// oldest samples once the buffer exceeds its capacity. Returns a snapshot of
// the buffer for endpoint detection, or nil when a turn is mid-flight:
// audio arriving then still accumulates — it becomes the start of the next
// utterance once the session returns to listening — but must not trigger a
// second detection while the current turn is processed.
func (s *Session) appendSamples(samples []float32) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer = append(s.buffer, samples...)
	if len(s.buffer) > s.maxSamples {
		fresh := make([]float32, s.maxSamples)
		copy(fresh, s.buffer[len(s.buffer)-s.maxSamples:])
		s.buffer = fresh
	}

	if s.state != StateListening {
		return nil
	}

	snap := make([]float32, len(s.buffer))
	copy(snap, s.buffer)
	return snap
}

// takeUtterance atomically snapshots and clears the buffer and moves the
// session out of the listening state. Audio that arrives while the turn is
// processed accumulates into the fresh, post-clear buffer.
func (s *Session) takeUtterance() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	utterance := s.buffer
	s.buffer = nil
	s.state = StateRecognizing
	return utterance
}

// Reset discards the conversation history and any buffered audio, returning
// the session to a pristine listening state.
func (s *Session) Reset() {
	s.mu.Lock()
	s.buffer = nil
	s.state = StateListening
	s.mu.Unlock()
	s.history.Reset()
}

// buffered reports the number of currently buffered samples.
func (s *Session) buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}
