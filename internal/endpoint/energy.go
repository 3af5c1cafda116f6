package endpoint

import "github.com/Shadowru/voice-assistant/pkg/audio"

// EnergyDetector is the endpointing fallback used when no VAD engine is
// available. It requires at least [energyMinBuffer] of audio, then judges the
// turn ended when the trailing [energyWindow] is quiet while some earlier
// window was loud enough to presume speech happened.
//
// Unlike [ModelDetector] it reports no interval boundaries — its contract
// degenerates to the end-of-turn boolean.
type EnergyDetector struct {
	sampleRate int
}

// Compile-time interface assertion.
var _ Detector = (*EnergyDetector)(nil)

// NewEnergy creates an EnergyDetector for the given sample rate.
func NewEnergy(sampleRate int) *EnergyDetector {
	return &EnergyDetector{sampleRate: sampleRate}
}

// EndOfTurn implements [Detector].
func (d *EnergyDetector) EndOfTurn(pcm []float32) (bool, error) {
	if len(pcm) < samplesFor(energyMinBuffer, d.sampleRate) {
		return false, nil
	}

	window := samplesFor(energyWindow, d.sampleRate)
	if window <= 0 || window > len(pcm) {
		return false, nil
	}

	tail := pcm[len(pcm)-window:]
	if audio.MeanAbsAmplitude(tail) >= energyThreshold {
		return false, nil
	}

	// The tail is quiet; only end the turn when a prior voiced region exists,
	// so silence-only buffers never trigger.
	head := pcm[:len(pcm)-window]
	for start := 0; start < len(head); start += window {
		end := start + window
		if end > len(head) {
			end = len(head)
		}
		if audio.MeanAbsAmplitude(head[start:end]) >= energyThreshold {
			return true, nil
		}
	}
	return false, nil
}
