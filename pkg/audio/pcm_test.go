package audio

import (
	"errors"
	"math"
	"testing"
)

func TestDecodePCM16_RoundTrip(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 0.25, -1}
	decoded, err := DecodePCM16(EncodePCM16(samples))
	if err != nil {
		t.Fatalf("DecodePCM16: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("len = %d, want %d", len(decoded), len(samples))
	}
	for i := range samples {
		if diff := math.Abs(float64(decoded[i] - samples[i])); diff > 1.0/32767 {
			t.Errorf("sample[%d] = %f, want %f (±1 LSB)", i, decoded[i], samples[i])
		}
	}
}

func TestDecodePCM16_OddByteCount(t *testing.T) {
	_, err := DecodePCM16([]byte{0x01, 0x02, 0x03})
	if !errors.Is(err, ErrOddByteCount) {
		t.Errorf("err = %v, want ErrOddByteCount", err)
	}
}

func TestDecodePCM16_Empty(t *testing.T) {
	samples, err := DecodePCM16(nil)
	if err != nil {
		t.Fatalf("DecodePCM16(nil): %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("len = %d, want 0", len(samples))
	}
}

func TestEncodePCM16_Clamps(t *testing.T) {
	out := EncodePCM16([]float32{2.0, -2.0})
	decoded, err := DecodePCM16(out)
	if err != nil {
		t.Fatalf("DecodePCM16: %v", err)
	}
	if decoded[0] < 0.99 {
		t.Errorf("positive overflow decoded to %f, want ≈1", decoded[0])
	}
	if decoded[1] > -0.99 {
		t.Errorf("negative overflow decoded to %f, want ≈-1", decoded[1])
	}
}

func TestMeanAbsAmplitude(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    float64
	}{
		{"empty", nil, 0},
		{"silence", []float32{0, 0, 0}, 0},
		{"mixed signs", []float32{0.5, -0.5}, 0.5},
		{"uniform", []float32{0.25, 0.25, 0.25, 0.25}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeanAbsAmplitude(tt.samples)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MeanAbsAmplitude = %f, want %f", got, tt.want)
			}
		})
	}
}
