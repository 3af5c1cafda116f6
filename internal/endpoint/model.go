package endpoint

import (
	"fmt"

	"github.com/Shadowru/voice-assistant/pkg/provider/vad"
)

// ModelDetector derives voiced intervals from a frame-level VAD engine and
// signals end-of-turn when the buffer ends in more than [endSilence] of
// silence after at least one voiced interval.
//
// Safe for concurrent use as long as the underlying engine is.
type ModelDetector struct {
	engine     vad.Engine
	sampleRate int
}

// Compile-time interface assertion.
var _ Detector = (*ModelDetector)(nil)

// NewModel creates a ModelDetector over the given VAD engine.
func NewModel(engine vad.Engine, sampleRate int) *ModelDetector {
	return &ModelDetector{engine: engine, sampleRate: sampleRate}
}

// VoicedIntervals runs the VAD engine over pcm and merges frame
// classifications into voiced intervals: frames above [speechThreshold] form
// runs, runs separated by less than [minSilence] are merged, and merged runs
// shorter than [minSpeech] are dropped as noise.
func (d *ModelDetector) VoicedIntervals(pcm []float32) ([]VoicedInterval, error) {
	probs, err := d.engine.SpeechProbabilities(pcm, d.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("endpoint: speech probabilities: %w", err)
	}

	frame := d.engine.FrameSamples()
	minSilenceFrames := samplesFor(minSilence, d.sampleRate) / frame
	minSpeechSamples := samplesFor(minSpeech, d.sampleRate)

	// Collect raw voiced frame runs.
	var raw []VoicedInterval
	runStart := -1
	for i, p := range probs {
		voiced := p >= speechThreshold
		switch {
		case voiced && runStart < 0:
			runStart = i
		case !voiced && runStart >= 0:
			raw = append(raw, VoicedInterval{Start: runStart * frame, End: i * frame})
			runStart = -1
		}
	}
	if runStart >= 0 {
		raw = append(raw, VoicedInterval{Start: runStart * frame, End: len(probs) * frame})
	}

	// Merge runs separated by less than minSilence.
	var merged []VoicedInterval
	for _, iv := range raw {
		if n := len(merged); n > 0 && iv.Start-merged[n-1].End < minSilenceFrames*frame {
			merged[n-1].End = iv.End
			continue
		}
		merged = append(merged, iv)
	}

	// Drop merged intervals shorter than minSpeech.
	out := merged[:0]
	for _, iv := range merged {
		if iv.End-iv.Start >= minSpeechSamples {
			out = append(out, iv)
		}
	}
	return out, nil
}

// EndOfTurn implements [Detector]. A silence-only buffer never ends a turn.
func (d *ModelDetector) EndOfTurn(pcm []float32) (bool, error) {
	intervals, err := d.VoicedIntervals(pcm)
	if err != nil {
		return false, err
	}
	if len(intervals) == 0 {
		return false, nil
	}

	last := intervals[len(intervals)-1]
	silenceSamples := len(pcm) - last.End
	return silenceSamples > samplesFor(endSilence, d.sampleRate), nil
}
