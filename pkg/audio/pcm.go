// Package audio provides PCM sample conversion helpers for the voice pipeline.
//
// All audio on the wire is mono signed 16-bit little-endian PCM; all audio in
// memory is normalized float32 samples in the range [-1, 1]. The conversion
// functions here sit at the transport boundary: DecodePCM16 on ingest,
// EncodePCM16 before synthesized audio is sent back to the client.
package audio

import (
	"encoding/binary"
	"errors"
)

// ErrOddByteCount is returned by [DecodePCM16] when the input length is not a
// multiple of the int16 sample size. Such a chunk cannot be decoded and must
// be dropped by the caller.
var ErrOddByteCount = errors.New("audio: PCM16 data has odd byte count")

// DecodePCM16 converts little-endian signed 16-bit PCM bytes into normalized
// float32 samples in [-1, 1]. Returns [ErrOddByteCount] if data cannot be
// split into whole samples; no partial result is returned in that case.
func DecodePCM16(data []byte) ([]float32, error) {
	if len(data)%2 != 0 {
		return nil, ErrOddByteCount
	}
	samples := make([]float32, len(data)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(s) / 32768.0
	}
	return samples, nil
}

// EncodePCM16 converts normalized float32 samples into little-endian signed
// 16-bit PCM bytes. Samples outside [-1, 1] are clamped rather than wrapped.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
	return out
}

// MeanAbsAmplitude returns the mean absolute amplitude of samples.
// Returns 0 for an empty slice.
func MeanAbsAmplitude(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		if s < 0 {
			sum -= float64(s)
		} else {
			sum += float64(s)
		}
	}
	return sum / float64(len(samples))
}
