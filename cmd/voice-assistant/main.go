// Command voice-assistant is the main entry point for the voice assistant server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/Shadowru/voice-assistant/internal/assistant"
	"github.com/Shadowru/voice-assistant/internal/config"
	"github.com/Shadowru/voice-assistant/internal/health"
	"github.com/Shadowru/voice-assistant/internal/observe"
	"github.com/Shadowru/voice-assistant/internal/resilience"
	"github.com/Shadowru/voice-assistant/internal/respcache"
	"github.com/Shadowru/voice-assistant/internal/server"
	"github.com/Shadowru/voice-assistant/internal/turnlog"
	pgturnlog "github.com/Shadowru/voice-assistant/internal/turnlog/postgres"
	"github.com/Shadowru/voice-assistant/pkg/provider/llm"
	"github.com/Shadowru/voice-assistant/pkg/provider/llm/anyllm"
	llmopenai "github.com/Shadowru/voice-assistant/pkg/provider/llm/openai"
	"github.com/Shadowru/voice-assistant/pkg/provider/stt/whisper"
	"github.com/Shadowru/voice-assistant/pkg/provider/tts"
	"github.com/Shadowru/voice-assistant/pkg/provider/tts/coqui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "voice-assistant: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "voice-assistant: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("voice-assistant starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownOtel, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "voice-assistant",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Providers ─────────────────────────────────────────────────────────────
	providers, closers, err := buildProviders(ctx, cfg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}
	defer func() {
		for _, close := range closers {
			close()
		}
	}()

	// ── Pipeline ──────────────────────────────────────────────────────────────
	asst, err := assistant.New(pipelineConfig(cfg), providers,
		assistant.WithMetrics(metrics),
		assistant.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		return 1
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srvCfg := server.Config{ListenAddr: cfg.Server.ListenAddr}
	if cfg.Server.TLS != nil {
		srvCfg.CertFile = cfg.Server.TLS.CertFile
		srvCfg.KeyFile = cfg.Server.TLS.KeyFile
	}

	srv := server.New(srvCfg, asst,
		server.WithHealthChecker(health.New(buildCheckers(asst, providers)...)),
		server.WithMetrics(metrics),
		server.WithLogger(logger),
	)

	printStartupSummary(cfg)
	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildProviders instantiates every backend named in cfg. The returned
// closers tear down connection-holding providers and are called in order on
// shutdown.
func buildProviders(ctx context.Context, cfg *config.Config) (assistant.Providers, []func(), error) {
	var (
		ps      assistant.Providers
		closers []func()
	)

	// STT — whisper primary plus optional spare models in a failover chain.
	sttP, sttClose, err := buildSTT(cfg.Providers.STT.ModelPath, cfg.Pipeline.Language)
	if err != nil {
		return ps, closers, fmt.Errorf("create stt provider %q: %w", cfg.Providers.STT.Name, err)
	}
	closers = append(closers, sttClose)
	slog.Info("provider created", "kind", "stt", "name", cfg.Providers.STT.Name)

	if len(cfg.Providers.STT.Fallbacks) == 0 {
		ps.STT = sttP
	} else {
		chn := resilience.NewSTTFallback(sttP, cfg.Providers.STT.Name)
		for _, fb := range cfg.Providers.STT.Fallbacks {
			p, close, err := buildSTT(fb.ModelPath, cfg.Pipeline.Language)
			if err != nil {
				return ps, closers, fmt.Errorf("create stt fallback %q: %w", fb.Name, err)
			}
			closers = append(closers, close)
			chn.AddFallback(fb.Name, p)
			slog.Info("provider created", "kind", "stt-fallback", "name", fb.Name, "model", fb.ModelPath)
		}
		ps.STT = chn
	}

	// LLM — primary plus optional failover chain.
	primary, err := buildLLM(cfg.Providers.LLM.Name, cfg.Providers.LLM.Model,
		cfg.Providers.LLM.APIKey, cfg.Providers.LLM.BaseURL)
	if err != nil {
		return ps, closers, fmt.Errorf("create llm provider %q: %w", cfg.Providers.LLM.Name, err)
	}
	slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name)

	if len(cfg.Providers.LLM.Fallbacks) == 0 {
		ps.LLM = primary
	} else {
		chn := resilience.NewLLMFallback(primary, cfg.Providers.LLM.Name)
		for _, fb := range cfg.Providers.LLM.Fallbacks {
			p, err := buildLLM(fb.Name, fb.Model, fb.APIKey, fb.BaseURL)
			if err != nil {
				return ps, closers, fmt.Errorf("create llm fallback %q: %w", fb.Name, err)
			}
			chn.AddFallback(fb.Name, p)
			slog.Info("provider created", "kind", "llm-fallback", "name", fb.Name)
		}
		ps.LLM = chn
	}

	// TTS — optional; without it turns are text-only.
	if cfg.Providers.TTS.Name != "" {
		ttsP := buildTTS(cfg.Providers.TTS.BaseURL, cfg)
		slog.Info("provider created", "kind", "tts", "name", cfg.Providers.TTS.Name)

		if len(cfg.Providers.TTS.Fallbacks) == 0 {
			ps.TTS = ttsP
		} else {
			chn := resilience.NewTTSFallback(ttsP, cfg.Providers.TTS.Name)
			for _, fb := range cfg.Providers.TTS.Fallbacks {
				chn.AddFallback(fb.Name, buildTTS(fb.BaseURL, cfg))
				slog.Info("provider created", "kind", "tts-fallback", "name", fb.Name, "base_url", fb.BaseURL)
			}
			ps.TTS = chn
		}
	}

	// VAD — no built-in engine ships yet; the endpoint detector falls back
	// to energy thresholds.
	if cfg.Providers.VAD.Name != "" {
		slog.Debug("provider not yet implemented — skipping", "kind", "vad", "name", cfg.Providers.VAD.Name)
	}

	// Response cache.
	if cfg.Cache.RedisAddr != "" {
		redisCache, err := respcache.NewRedis(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return ps, closers, fmt.Errorf("connect redis cache: %w", err)
		}
		ps.Cache = redisCache
		closers = append(closers, func() {
			if err := redisCache.Close(); err != nil {
				slog.Warn("redis close error", "err", err)
			}
		})
		slog.Info("response cache connected", "backend", "redis", "addr", cfg.Cache.RedisAddr)
	} else {
		ps.Cache = respcache.NewMemory()
		slog.Info("response cache created", "backend", "memory")
	}

	// Turn log.
	if cfg.Storage.PostgresDSN != "" {
		store, err := pgturnlog.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return ps, closers, fmt.Errorf("connect turn log: %w", err)
		}
		ps.Turns = store
		closers = append(closers, store.Close)
		slog.Info("turn log connected", "backend", "postgres")
	} else {
		ps.Turns = turnlog.NewMemStore()
		slog.Info("turn log created", "backend", "memory")
	}

	return ps, closers, nil
}

// buildSTT constructs one whisper backend and its teardown func.
func buildSTT(modelPath, language string) (*whisper.Provider, func(), error) {
	p, err := whisper.New(modelPath, whisper.WithLanguage(language))
	if err != nil {
		return nil, nil, err
	}
	close := func() {
		if err := p.Close(); err != nil {
			slog.Warn("stt close error", "err", err)
		}
	}
	return p, close, nil
}

// buildTTS constructs one coqui backend pointed at baseURL.
func buildTTS(baseURL string, cfg *config.Config) *coqui.Provider {
	var opts []coqui.Option
	if cfg.Providers.TTS.Language != "" {
		opts = append(opts, coqui.WithLanguage(cfg.Providers.TTS.Language))
	}
	if cfg.Providers.TTS.Speaker != "" {
		opts = append(opts, coqui.WithSpeaker(cfg.Providers.TTS.Speaker))
	}
	if cfg.Pipeline.SampleRate > 0 {
		opts = append(opts, coqui.WithOutputSampleRate(cfg.Pipeline.SampleRate))
	}
	return coqui.New(baseURL, opts...)
}

// buildLLM constructs one LLM backend by provider name. The OpenAI SDK is
// used directly for "openai"; everything else goes through the any-llm
// multiplexer.
func buildLLM(name, model, apiKey, baseURL string) (llm.Provider, error) {
	if name == "openai" {
		var opts []llmopenai.Option
		if baseURL != "" {
			opts = append(opts, llmopenai.WithBaseURL(baseURL))
		}
		return llmopenai.New(apiKey, model, opts...)
	}

	var opts []anyllmlib.Option
	if apiKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(baseURL))
	}
	return anyllm.New(name, model, opts...)
}

// buildCheckers assembles the /readyz probes. Synthesis is optional: its
// failure is reported but does not take the server out of rotation.
func buildCheckers(asst *assistant.Assistant, providers assistant.Providers) []health.Checker {
	checkers := []health.Checker{
		{Name: "pipeline", Check: func(context.Context) error {
			if !asst.Readiness().Healthy() {
				return errors.New("recognition or response stage unavailable")
			}
			return nil
		}},
	}

	if providers.TTS != nil {
		ttsP := providers.TTS
		checkers = append(checkers, health.Checker{
			Name:     "tts",
			Optional: true,
			Check: func(ctx context.Context) error {
				return probeTTS(ctx, ttsP)
			},
		})
	}

	if pg, ok := providers.Turns.(*pgturnlog.Store); ok {
		checkers = append(checkers, health.Checker{
			Name:     "turnlog",
			Optional: true,
			Check:    pg.Ping,
		})
	}

	return checkers
}

// probeTTS synthesizes a single short word to verify the voice server
// answers.
func probeTTS(ctx context.Context, p tts.Provider) error {
	_, err := p.Synthesize(ctx, "ok")
	return err
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// pipelineConfig maps the YAML pipeline section onto the orchestrator config.
func pipelineConfig(cfg *config.Config) assistant.Config {
	return assistant.Config{
		SampleRate:        cfg.Pipeline.SampleRate,
		Language:          cfg.Pipeline.Language,
		MaxBufferDuration: time.Duration(cfg.Pipeline.MaxBufferSeconds) * time.Second,
		StageTimeout:      time.Duration(cfg.Pipeline.StageTimeoutSeconds) * time.Second,
		CacheTTL:          time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		SystemPrompt:      cfg.Pipeline.SystemPrompt,
		ApologyText:       cfg.Pipeline.ApologyText,
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║    voice-assistant — startup summary  ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("STT", cfg.Providers.STT.Name, "")
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	printProvider("TTS", cfg.Providers.TTS.Name, "")
	printProvider("VAD", cfg.Providers.VAD.Name, "")
	printBackend("Cache", cfg.Cache.RedisAddr != "", "redis", "memory")
	printBackend("Turn log", cfg.Storage.PostgresDSN != "", "postgres", "memory")
	fallbacks := fmt.Sprintf("stt=%d llm=%d tts=%d",
		len(cfg.Providers.STT.Fallbacks),
		len(cfg.Providers.LLM.Fallbacks),
		len(cfg.Providers.TTS.Fallbacks))
	fmt.Printf("║  Fallbacks       : %-19s ║\n", fallbacks)
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(disabled)"
	} else if model != "" {
		value = fmt.Sprintf("%s (%s)", name, model)
	}
	fmt.Printf("║  %-15s : %-19s ║\n", kind, value)
}

func printBackend(kind string, remote bool, remoteName, localName string) {
	value := localName
	if remote {
		value = remoteName
	}
	fmt.Printf("║  %-15s : %-19s ║\n", kind, value)
}
