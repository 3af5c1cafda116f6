package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/Shadowru/voice-assistant/pkg/provider/stt/mock"
)

func TestSTTFallbackSpareTranscribesSameUtterance(t *testing.T) {
	primary := &mock.Provider{Err: errBackendDown}
	spare := &mock.Provider{Text: "turn the lights off"}

	f := NewSTTFallback(primary, "whisper-large")
	f.AddFallback("whisper-tiny", spare)

	samples := []float32{0.1, 0.2, 0.3}
	text, err := f.Transcribe(context.Background(), samples, 16000, "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "turn the lights off" {
		t.Errorf("text = %q", text)
	}
	if spare.CallCount() != 1 {
		t.Fatalf("spare calls = %d, want 1", spare.CallCount())
	}
	call := spare.Calls[0]
	if len(call.Samples) != len(samples) || call.SampleRate != 16000 || call.Language != "en" {
		t.Errorf("spare saw %d samples at %d (%q), want the original utterance",
			len(call.Samples), call.SampleRate, call.Language)
	}
}

func TestSTTFallbackAllBackendsFailed(t *testing.T) {
	f := NewSTTFallback(&mock.Provider{Err: errBackendDown}, "whisper-large")
	f.AddFallback("whisper-tiny", &mock.Provider{Err: errBackendDown})

	_, err := f.Transcribe(context.Background(), []float32{0.1}, 16000, "en")
	if !errors.Is(err, ErrAllBackendsFailed) {
		t.Fatalf("error = %v, want ErrAllBackendsFailed", err)
	}
}
