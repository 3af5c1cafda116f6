// Package config provides the configuration schema and loader for the voice
// assistant server.
package config

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for the voice assistant.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Cache     CacheConfig     `yaml:"cache"`
	Storage   StorageConfig   `yaml:"storage"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// ListenAddr is the host:port the server binds to. Default ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls log verbosity. Default "info".
	LogLevel LogLevel `yaml:"log_level"`

	// TLS enables HTTPS when set.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds the certificate pair for HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM private key.
	KeyFile string `yaml:"key_file"`
}

// ProvidersConfig selects and configures the pipeline backends.
type ProvidersConfig struct {
	STT STTConfig `yaml:"stt"`
	LLM LLMConfig `yaml:"llm"`
	TTS TTSConfig `yaml:"tts"`
	VAD VADConfig `yaml:"vad"`
}

// STTConfig configures the transcription backend and its optional fallbacks.
type STTConfig struct {
	// Name selects the provider implementation, e.g. "whisper".
	Name string `yaml:"name"`

	// ModelPath is the path to the local model file (whisper).
	ModelPath string `yaml:"model_path"`

	// Fallbacks are tried in order when the primary backend fails, e.g. a
	// smaller whisper model.
	Fallbacks []STTBackend `yaml:"fallbacks"`
}

// STTBackend describes one fallback transcription backend.
type STTBackend struct {
	Name      string `yaml:"name"`
	ModelPath string `yaml:"model_path"`
}

// LLMConfig configures the response backend and its optional fallbacks.
type LLMConfig struct {
	// Name selects the provider implementation, e.g. "openai" or "ollama".
	Name string `yaml:"name"`

	// Model is the model identifier in the provider's naming scheme.
	Model string `yaml:"model"`

	// APIKey authenticates against hosted providers. Local backends such as
	// ollama leave it empty.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `yaml:"base_url"`

	// Fallbacks are tried in order when the primary backend fails.
	Fallbacks []LLMBackend `yaml:"fallbacks"`
}

// LLMBackend describes one fallback LLM backend.
type LLMBackend struct {
	Name    string `yaml:"name"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// TTSConfig configures the synthesis backend.
type TTSConfig struct {
	// Name selects the provider implementation, e.g. "coqui".
	Name string `yaml:"name"`

	// BaseURL is the synthesis server endpoint.
	BaseURL string `yaml:"base_url"`

	// Language is the language_id forwarded to multi-lingual models.
	Language string `yaml:"language"`

	// Speaker is the speaker_id for multi-speaker models.
	Speaker string `yaml:"speaker"`

	// Fallbacks are tried in order when the primary backend fails, e.g. a
	// second synthesis server.
	Fallbacks []TTSBackend `yaml:"fallbacks"`
}

// TTSBackend describes one fallback synthesis backend.
type TTSBackend struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// VADConfig configures the voice activity detection engine. When Name is
// empty the endpoint detector falls back to energy thresholds.
type VADConfig struct {
	// Name selects the engine implementation.
	Name string `yaml:"name"`

	// ModelPath is the path to the local model file, for engines that load
	// one.
	ModelPath string `yaml:"model_path"`
}

// PipelineConfig tunes the turn pipeline.
type PipelineConfig struct {
	// SampleRate is the PCM sample rate of all session audio. Default 16000.
	SampleRate int `yaml:"sample_rate"`

	// Language is an optional language hint forwarded to transcription.
	Language string `yaml:"language"`

	// MaxBufferSeconds bounds the per-session utterance buffer.
	MaxBufferSeconds int `yaml:"max_buffer_seconds"`

	// StageTimeoutSeconds bounds each individual provider call.
	StageTimeoutSeconds int `yaml:"stage_timeout_seconds"`

	// SystemPrompt is injected into every completion request.
	SystemPrompt string `yaml:"system_prompt"`

	// ApologyText is the fallback response when generation fails.
	ApologyText string `yaml:"apology_text"`
}

// CacheConfig configures the response cache. An empty RedisAddr selects the
// in-process cache.
type CacheConfig struct {
	// RedisAddr is the host:port of a Redis server.
	RedisAddr string `yaml:"redis_addr"`

	// TTLSeconds is the response time-to-live. Default 3600.
	TTLSeconds int `yaml:"ttl_seconds"`
}

// StorageConfig configures durable storage. An empty PostgresDSN keeps the
// turn log in process memory.
type StorageConfig struct {
	// PostgresDSN is the connection string for the turn log database.
	PostgresDSN string `yaml:"postgres_dsn"`
}
