// Package assistant orchestrates the voice turn pipeline: audio ingest,
// endpoint detection, transcription, response generation, and synthesis.
//
// An [Assistant] is the long-lived pipeline shared by every connection; a
// [Session] is the per-connection state it operates on. Audio chunks flow in
// through [Assistant.ProcessAudio]; when the endpoint detector concludes the
// utterance, the assistant runs the full turn and returns a [TurnResult].
// Text-only exchanges bypass audio entirely via [Assistant.ProcessText].
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shadowru/voice-assistant/internal/endpoint"
	"github.com/Shadowru/voice-assistant/internal/observe"
	"github.com/Shadowru/voice-assistant/internal/respcache"
	"github.com/Shadowru/voice-assistant/internal/turnlog"
	"github.com/Shadowru/voice-assistant/pkg/audio"
	"github.com/Shadowru/voice-assistant/pkg/provider/llm"
	"github.com/Shadowru/voice-assistant/pkg/provider/stt"
	"github.com/Shadowru/voice-assistant/pkg/provider/tts"
	"github.com/Shadowru/voice-assistant/pkg/provider/vad"
)

const (
	// defaultSampleRate is the session sample rate when none is configured.
	defaultSampleRate = 16000

	// defaultLanguage is the recognition language hint.
	defaultLanguage = "en"

	// defaultMaxBuffer bounds the per-session utterance buffer.
	defaultMaxBuffer = 30 * time.Second

	// defaultStageTimeout bounds each provider call within a turn.
	defaultStageTimeout = 30 * time.Second

	// defaultSystemPrompt is used when the configuration does not override it.
	defaultSystemPrompt = "You are a helpful voice assistant. Keep your answers short and conversational."

	// defaultApology is spoken when response generation fails entirely.
	defaultApology = "Sorry, I'm having trouble answering right now. Please try again."
)

// ErrMalformedChunk is returned by [Assistant.ProcessAudio] when the incoming
// chunk cannot be decoded as PCM16. The chunk is dropped; the session buffer
// is left untouched.
var ErrMalformedChunk = errors.New("assistant: malformed audio chunk")

// ErrEmptyText is returned by [Assistant.ProcessText] when the input contains
// no usable text.
var ErrEmptyText = errors.New("assistant: empty input text")

// Config carries the pipeline tuning. The zero value is usable; every field
// has a default.
type Config struct {
	// SampleRate is the PCM sample rate of all session audio. Default 16000.
	SampleRate int

	// Language is an optional language hint forwarded to transcription.
	Language string

	// MaxBufferDuration bounds the per-session utterance buffer; the oldest
	// audio is dropped once it is exceeded. Default 30s.
	MaxBufferDuration time.Duration

	// StageTimeout bounds each individual provider call. Default 30s.
	StageTimeout time.Duration

	// CacheTTL is the time-to-live for cached responses. Default
	// [respcache.DefaultTTL].
	CacheTTL time.Duration

	// SystemPrompt is injected into every completion request.
	SystemPrompt string

	// ApologyText is the fallback response when generation fails.
	ApologyText string
}

// withDefaults returns cfg with every unset field replaced by its default.
func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = defaultSampleRate
	}
	if c.Language == "" {
		c.Language = defaultLanguage
	}
	if c.MaxBufferDuration <= 0 {
		c.MaxBufferDuration = defaultMaxBuffer
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = defaultStageTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = respcache.DefaultTTL
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = defaultSystemPrompt
	}
	if c.ApologyText == "" {
		c.ApologyText = defaultApology
	}
	return c
}

// Providers bundles the pipeline's pluggable backends. STT and LLM are
// required; everything else degrades gracefully when nil: no TTS means
// text-only responses, no VAD engine selects the energy endpoint fallback,
// no cache disables response reuse, no turn store disables the turn log.
type Providers struct {
	STT   stt.Provider
	LLM   llm.Provider
	TTS   tts.Provider
	VAD   vad.Engine
	Cache respcache.Cache
	Turns turnlog.Store
}

// TurnResult is the outcome of one completed turn.
type TurnResult struct {
	// UserText is the recognized user utterance.
	UserText string

	// AssistantText is the response delivered to the user.
	AssistantText string

	// Audio is the synthesized response as PCM16 bytes; nil when synthesis
	// is unavailable or failed.
	Audio []byte

	// Cached reports whether AssistantText came from the response cache.
	Cached bool
}

// Readiness reports which pipeline stages are operational.
type Readiness struct {
	// Recognition is true when a transcription provider is configured.
	Recognition bool

	// Response is true when a response provider is configured.
	Response bool

	// Synthesis is true when a synthesis provider is configured. Synthesis
	// is optional and does not gate [Readiness.Healthy].
	Synthesis bool
}

// Healthy reports whether the pipeline can complete a text turn end to end.
func (r Readiness) Healthy() bool {
	return r.Recognition && r.Response
}

// Assistant is the turn pipeline. One instance serves all sessions.
type Assistant struct {
	cfg     Config
	prov    Providers
	metrics *observe.Metrics
	log     *slog.Logger
}

// Option configures an Assistant during construction.
type Option func(*Assistant)

// WithMetrics attaches a metrics recorder. Without it no metrics are
// recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *Assistant) { a.metrics = m }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assistant) { a.log = l }
}

// New constructs the pipeline. Returns an error when a required provider is
// missing.
func New(cfg Config, prov Providers, opts ...Option) (*Assistant, error) {
	if prov.STT == nil {
		return nil, fmt.Errorf("assistant: STT provider is required")
	}
	if prov.LLM == nil {
		return nil, fmt.Errorf("assistant: LLM provider is required")
	}

	a := &Assistant{
		cfg:  cfg.withDefaults(),
		prov: prov,
		log:  slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// NewSession creates a session for one connection. The endpoint detection
// strategy is fixed at creation: model-based when a VAD engine is configured,
// energy fallback otherwise.
func (a *Assistant) NewSession(id string) *Session {
	return &Session{
		id:         id,
		sampleRate: a.cfg.SampleRate,
		maxSamples: int(a.cfg.MaxBufferDuration.Seconds() * float64(a.cfg.SampleRate)),
		detector:   endpoint.New(a.prov.VAD, a.cfg.SampleRate),
		history:    NewHistory(),
		state:      StateListening,
	}
}

// Readiness reports which stages the pipeline can currently serve.
func (a *Assistant) Readiness() Readiness {
	return Readiness{
		Recognition: a.prov.STT != nil,
		Response:    a.prov.LLM != nil,
		Synthesis:   a.prov.TTS != nil,
	}
}

// ─── Audio ingest ─────────────────────────────────────────────────────────────

// ProcessAudio ingests one PCM16 chunk for the session. It returns a non-nil
// [TurnResult] only when this chunk concluded an utterance and the turn ran
// to completion; (nil, nil) means the assistant is still listening.
//
// A chunk that cannot be decoded returns [ErrMalformedChunk] and leaves the
// buffer untouched. A detector failure is treated as "no endpoint yet".
func (a *Assistant) ProcessAudio(ctx context.Context, sess *Session, chunk []byte) (*TurnResult, error) {
	samples, err := audio.DecodePCM16(chunk)
	if err != nil {
		if a.metrics != nil {
			a.metrics.IngestErrors.Add(ctx, 1)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedChunk, err)
	}

	buf := sess.appendSamples(samples)
	if buf == nil {
		// Turn in flight; the audio accumulates for the next utterance
		// but detection waits until the session listens again.
		return nil, nil
	}
	if len(buf) < a.minWindowSamples() {
		return nil, nil
	}

	done, err := sess.detector.EndOfTurn(buf)
	if err != nil {
		a.log.Warn("endpoint detection failed, retaining buffer",
			"session", sess.ID(), "error", err)
		return nil, nil
	}
	if !done {
		return nil, nil
	}

	utterance := sess.takeUtterance()
	return a.runTurn(ctx, sess, utterance)
}

// minWindowSamples is the detection gate in samples at the session rate.
func (a *Assistant) minWindowSamples() int {
	return int(endpoint.MinWindow.Seconds() * float64(a.cfg.SampleRate))
}

// ─── Turn pipeline ────────────────────────────────────────────────────────────

// runTurn drives transcription, response, and synthesis for one utterance.
// The session re-enters the listening state before the result is returned,
// whatever the outcome.
func (a *Assistant) runTurn(ctx context.Context, sess *Session, utterance []float32) (*TurnResult, error) {
	start := time.Now()
	defer sess.setState(StateListening)

	userText, err := a.transcribe(ctx, utterance)
	if err != nil {
		a.log.Warn("transcription failed, discarding utterance",
			"session", sess.ID(), "error", err)
		a.recordTurnMetric(ctx, "stt_error", start)
		return nil, nil
	}
	if strings.TrimSpace(userText) == "" {
		// Endpointed noise. Nothing to respond to.
		a.log.Debug("empty transcript, discarding utterance", "session", sess.ID())
		return nil, nil
	}

	sess.setState(StateResponding)
	assistantText, cached := a.respond(ctx, sess, userText)

	sess.setState(StateSynthesizing)
	audioBytes := a.synthesize(ctx, assistantText)

	if err := ctx.Err(); err != nil {
		// The caller is gone; do not hand back a result for a dead session.
		return nil, err
	}

	a.recordTurn(ctx, sess, userText, assistantText, len(audioBytes))
	outcome := "ok"
	if cached {
		outcome = "cached"
	}
	a.recordTurnMetric(ctx, outcome, start)

	return &TurnResult{
		UserText:      userText,
		AssistantText: assistantText,
		Audio:         audioBytes,
		Cached:        cached,
	}, nil
}

// transcribe runs the STT stage under the stage timeout.
func (a *Assistant) transcribe(ctx context.Context, utterance []float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.StageTimeout)
	defer cancel()

	start := time.Now()
	text, err := a.prov.STT.Transcribe(ctx, utterance, a.cfg.SampleRate, a.cfg.Language)
	if a.metrics != nil {
		a.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		a.metrics.RecordProviderRequest(ctx, "stt", "transcribe", status)
		if err != nil {
			a.metrics.RecordProviderError(ctx, "stt", "transcribe")
		}
	}
	return text, err
}

// respond produces the assistant's reply for userText, consulting the
// response cache first. Whatever text is returned — cached, generated, or
// apology — is appended to the session history together with the user text,
// so follow-up turns see a consistent transcript. Apologies are never
// cached.
func (a *Assistant) respond(ctx context.Context, sess *Session, userText string) (text string, cached bool) {
	key := respcache.Key(userText)

	if a.prov.Cache != nil {
		value, hit, err := a.prov.Cache.Get(ctx, key)
		if err != nil {
			a.log.Warn("cache lookup failed", "session", sess.ID(), "error", err)
		}
		if a.metrics != nil {
			a.metrics.RecordCacheLookup(ctx, hit)
		}
		if hit {
			sess.history.AppendExchange(userText, value)
			return value, true
		}
	}

	sess.history.Append(llm.RoleUser, userText)

	resp, err := a.complete(ctx, sess.history.Snapshot())
	if err != nil {
		a.log.Error("response generation failed, answering with apology",
			"session", sess.ID(), "error", err)
		sess.history.Append(llm.RoleAssistant, a.cfg.ApologyText)
		return a.cfg.ApologyText, false
	}

	sess.history.Append(llm.RoleAssistant, resp.Content)

	if a.prov.Cache != nil {
		if err := a.prov.Cache.Set(ctx, key, resp.Content, a.cfg.CacheTTL); err != nil {
			a.log.Warn("cache store failed", "session", sess.ID(), "error", err)
		}
	}
	return resp.Content, false
}

// complete runs the LLM stage under the stage timeout.
func (a *Assistant) complete(ctx context.Context, messages []llm.Message) (*llm.CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.StageTimeout)
	defer cancel()

	start := time.Now()
	resp, err := a.prov.LLM.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: a.cfg.SystemPrompt,
		Messages:     messages,
	})
	if a.metrics != nil {
		a.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		a.metrics.RecordProviderRequest(ctx, "llm", "complete", status)
		if err != nil {
			a.metrics.RecordProviderError(ctx, "llm", "complete")
		}
	}
	return resp, err
}

// synthesize runs the TTS stage under the stage timeout. Synthesis is best
// effort: any failure yields nil audio and the turn still completes with
// text.
func (a *Assistant) synthesize(ctx context.Context, text string) []byte {
	if a.prov.TTS == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.StageTimeout)
	defer cancel()

	start := time.Now()
	data, err := a.prov.TTS.Synthesize(ctx, text)
	if a.metrics != nil {
		a.metrics.TTSDuration.Record(ctx, time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		a.metrics.RecordProviderRequest(ctx, "tts", "synthesize", status)
		if err != nil {
			a.metrics.RecordProviderError(ctx, "tts", "synthesize")
		}
	}
	if err != nil {
		a.log.Warn("synthesis failed, returning text-only turn", "error", err)
		return nil
	}
	return data
}

// ─── Text exchanges ───────────────────────────────────────────────────────────

// ProcessText runs a text-only turn: same response path as a voice turn,
// including caching and history, but no transcription or synthesis.
func (a *Assistant) ProcessText(ctx context.Context, sess *Session, text string) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()
	assistantText, cached := a.respond(ctx, sess, text)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.recordTurn(ctx, sess, text, assistantText, 0)
	outcome := "ok"
	if cached {
		outcome = "cached"
	}
	a.recordTurnMetric(ctx, outcome, start)

	return &TurnResult{
		UserText:      text,
		AssistantText: assistantText,
		Cached:        cached,
	}, nil
}

// ─── Turn log ─────────────────────────────────────────────────────────────────

// recordTurn writes the completed exchange to the turn log. The log is
// strictly best effort: a write failure is logged and otherwise ignored.
func (a *Assistant) recordTurn(ctx context.Context, sess *Session, userText, assistantText string, audioLen int) {
	if a.prov.Turns == nil {
		return
	}
	rec := turnlog.Record{
		SessionID:     sess.ID(),
		UserText:      userText,
		AssistantText: assistantText,
		AudioBytes:    audioLen,
		CreatedAt:     time.Now(),
	}
	if err := a.prov.Turns.Write(ctx, rec); err != nil {
		a.log.Warn("turn log write failed", "session", sess.ID(), "error", err)
	}
}

// recordTurnMetric records turn completion when metrics are attached.
func (a *Assistant) recordTurnMetric(ctx context.Context, outcome string, start time.Time) {
	if a.metrics == nil {
		return
	}
	a.metrics.RecordTurn(ctx, outcome, time.Since(start).Seconds())
}
