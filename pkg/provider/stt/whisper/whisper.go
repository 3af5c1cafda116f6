// Package whisper provides an stt.Provider backed by the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
//
// The model is loaded once at startup and shared across all sessions; each
// Transcribe call creates its own whisper context because contexts are not
// thread-safe while the model is.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/Shadowru/voice-assistant/pkg/provider/stt"
)

const defaultLanguage = "en"

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider implements stt.Provider using whisper.cpp Go bindings (CGO),
// eliminating HTTP overhead entirely.
type Provider struct {
	model    whisperlib.Model
	language string
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the default BCP-47 language code for transcription
// (e.g., "en", "de", "ru"). Defaults to "en". A non-empty language passed to
// Transcribe takes precedence.
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// New creates a Provider that loads the whisper.cpp model from the given
// file path. The caller must call Close when the provider is no longer needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe implements stt.Provider. It runs whisper.cpp inference on the
// utterance using a fresh context and returns the concatenated segment text.
func (p *Provider) Transcribe(ctx context.Context, samples []float32, _ int, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("whisper: context already cancelled: %w", err)
	}
	if len(samples) == 0 {
		return "", nil
	}

	lang := language
	if lang == "" {
		lang = p.language
	}

	// Each context is NOT thread-safe, but the model can be shared across
	// goroutines.
	wctx, err := p.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}

	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", lang, "error", err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " "), nil
}
