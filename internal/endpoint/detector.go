// Package endpoint decides when a speaker has finished an utterance.
//
// A Detector inspects the session's buffered samples after every ingest and
// reports whether the turn has ended. Two interchangeable strategies exist:
//
//   - ModelDetector builds voiced intervals from a frame-level VAD engine and
//     signals end-of-turn once the trailing silence after the last voiced
//     interval exceeds the endpointing threshold.
//   - EnergyDetector is the fallback when no VAD engine is available. It
//     inspects only the trailing window's mean absolute amplitude.
//
// The strategy is selected once at session initialization via [New] and never
// re-checked per call. Both strategies are pure functions of the buffer
// contents, so one detector instance may be shared by a session across turns
// without reset bookkeeping.
package endpoint

import (
	"time"

	"github.com/Shadowru/voice-assistant/pkg/provider/vad"
)

// Detection tuning shared by both strategies. Durations are converted to
// sample counts against the session sample rate at construction time.
const (
	// MinWindow is the minimum buffered audio required before a detection
	// pass runs at all. Gating on this bounds decision latency and avoids
	// thrashing on tiny chunks.
	MinWindow = 500 * time.Millisecond

	// speechThreshold is the VAD probability above which a frame counts as
	// voiced.
	speechThreshold = 0.5

	// minSpeech is the shortest run of voiced frames kept as a voiced
	// interval; shorter blips are discarded as noise.
	minSpeech = 250 * time.Millisecond

	// minSilence is the gap below which two adjacent voiced intervals are
	// merged into one.
	minSilence = 700 * time.Millisecond

	// endSilence is the trailing silence after the last voiced interval that
	// concludes the turn.
	endSilence = 700 * time.Millisecond

	// energyMinBuffer is the minimum buffered audio the energy fallback needs
	// before it will judge anything.
	energyMinBuffer = 2 * time.Second

	// energyWindow is the trailing window the energy fallback inspects.
	energyWindow = 700 * time.Millisecond

	// energyThreshold is the mean absolute amplitude below which the energy
	// fallback considers a window silent.
	energyThreshold = 0.01
)

// VoicedInterval is a detected speech span within the buffer, in sample
// indices. End is exclusive.
type VoicedInterval struct {
	Start int
	End   int
}

// Detector decides, given the current buffer contents, whether the speaker
// has finished a turn.
//
// A strategy failure must surface as an error, which callers treat as "no
// endpoint yet" — the buffer is retained and the turn is not triggered.
type Detector interface {
	// EndOfTurn inspects pcm (mono normalized samples at the session sample
	// rate) and reports whether the current utterance has ended.
	EndOfTurn(pcm []float32) (bool, error)
}

// New selects the detection strategy for a session: model-based when a VAD
// engine is available, energy fallback otherwise.
func New(engine vad.Engine, sampleRate int) Detector {
	if engine != nil {
		return NewModel(engine, sampleRate)
	}
	return NewEnergy(sampleRate)
}

// samplesFor converts a duration to a sample count at rate Hz.
func samplesFor(d time.Duration, rate int) int {
	return int(d.Seconds() * float64(rate))
}
