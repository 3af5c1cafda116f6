package resilience

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Shadowru/voice-assistant/pkg/provider/tts/mock"
)

func TestTTSFallbackSpareSpeaksSameText(t *testing.T) {
	primary := &mock.Provider{Err: errBackendDown}
	spare := &mock.Provider{Audio: []byte{7, 7, 7}}

	f := NewTTSFallback(primary, "coqui")
	f.AddFallback("coqui-backup", spare)

	audio, err := f.Synthesize(context.Background(), "it is noon")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !bytes.Equal(audio, []byte{7, 7, 7}) {
		t.Errorf("audio = %v", audio)
	}
	if len(spare.Texts) != 1 || spare.Texts[0] != "it is noon" {
		t.Errorf("spare saw %v, want the original text", spare.Texts)
	}
}

func TestTTSFallbackAllBackendsFailed(t *testing.T) {
	f := NewTTSFallback(&mock.Provider{Err: errBackendDown}, "coqui")
	f.AddFallback("coqui-backup", &mock.Provider{Err: errBackendDown})

	_, err := f.Synthesize(context.Background(), "it is noon")
	if !errors.Is(err, ErrAllBackendsFailed) {
		t.Fatalf("error = %v, want ErrAllBackendsFailed", err)
	}
}
