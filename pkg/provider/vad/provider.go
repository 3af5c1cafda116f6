// Package vad defines the Engine interface for Voice Activity Detection backends.
//
// A VAD engine wraps a frame-level speech detector (e.g., Silero VAD or a
// custom model) and reports a speech probability per fixed-size audio frame.
// The endpoint detector consumes these probabilities to build voiced intervals
// and decide when an utterance has ended; the engine itself carries no
// smoothing or interval state.
//
// VAD is synchronous by design: SpeechProbabilities returns immediately,
// making it suitable for the low-latency detection pass that runs on every
// buffered audio chunk.
//
// Implementations must be safe for concurrent use — multiple sessions may
// evaluate their buffers simultaneously.
package vad

// Engine is the abstraction over any frame-level speech detector.
type Engine interface {
	// SpeechProbabilities evaluates pcm (mono normalized float32 samples at
	// sampleRate Hz) and returns one speech probability in [0, 1] per frame
	// of FrameSamples() samples. A trailing partial frame is ignored.
	//
	// Returns an error if the sample rate is unsupported or the underlying
	// model fails; callers must treat such an error as "no decision yet",
	// never as end-of-turn.
	SpeechProbabilities(pcm []float32, sampleRate int) ([]float64, error)

	// FrameSamples returns the fixed number of samples per analysis frame.
	// The value is constant for the lifetime of the engine.
	FrameSamples() int
}
