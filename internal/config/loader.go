package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm": {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"stt": {"whisper"},
	"tts": {"coqui"},
	"vad": {"silero"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil {
		if tls.CertFile == "" || tls.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("vad", cfg.Providers.VAD.Name)

	// Required backends.
	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt.name is required"))
	}
	if cfg.Providers.STT.Name == "whisper" && cfg.Providers.STT.ModelPath == "" {
		errs = append(errs, errors.New("providers.stt.model_path is required for whisper"))
	}
	for i, fb := range cfg.Providers.STT.Fallbacks {
		validateProviderName("stt", fb.Name)
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("providers.stt.fallbacks[%d].name is required", i))
		}
		if fb.Name == "whisper" && fb.ModelPath == "" {
			errs = append(errs, fmt.Errorf("providers.stt.fallbacks[%d].model_path is required for whisper", i))
		}
	}
	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm.name is required"))
	}
	for i, fb := range cfg.Providers.LLM.Fallbacks {
		validateProviderName("llm", fb.Name)
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("providers.llm.fallbacks[%d].name is required", i))
		}
	}

	// Optional backends — degrade with a warning, not an error.
	if cfg.Providers.TTS.Name == "" {
		slog.Warn("providers.tts is not configured; responses will be text-only")
	}
	if cfg.Providers.TTS.Name == "coqui" && cfg.Providers.TTS.BaseURL == "" {
		errs = append(errs, errors.New("providers.tts.base_url is required for coqui"))
	}
	for i, fb := range cfg.Providers.TTS.Fallbacks {
		validateProviderName("tts", fb.Name)
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("providers.tts.fallbacks[%d].name is required", i))
		}
		if fb.Name == "coqui" && fb.BaseURL == "" {
			errs = append(errs, fmt.Errorf("providers.tts.fallbacks[%d].base_url is required for coqui", i))
		}
	}
	if cfg.Providers.VAD.Name == "" {
		slog.Info("providers.vad is not configured; endpoint detection falls back to energy thresholds")
	}

	// Pipeline
	if cfg.Pipeline.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("pipeline.sample_rate %d must be positive", cfg.Pipeline.SampleRate))
	}
	if cfg.Pipeline.MaxBufferSeconds < 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_buffer_seconds %d must be positive", cfg.Pipeline.MaxBufferSeconds))
	}
	if cfg.Pipeline.StageTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("pipeline.stage_timeout_seconds %d must be positive", cfg.Pipeline.StageTimeoutSeconds))
	}

	// Cache / storage availability.
	if cfg.Cache.RedisAddr == "" {
		slog.Info("cache.redis_addr is empty; using the in-process response cache")
	}
	if cfg.Cache.TTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl_seconds %d must be positive", cfg.Cache.TTLSeconds))
	}
	if cfg.Storage.PostgresDSN == "" {
		slog.Info("storage.postgres_dsn is empty; the turn log will not survive restarts")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
