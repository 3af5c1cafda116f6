package config

import (
	"strings"
	"testing"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: info
providers:
  stt:
    name: whisper
    model_path: /models/ggml-base.bin
    fallbacks:
      - name: whisper
        model_path: /models/ggml-tiny.bin
  llm:
    name: ollama
    model: llama3
    base_url: http://localhost:11434
    fallbacks:
      - name: openai
        model: gpt-4o-mini
        api_key: sk-test
  tts:
    name: coqui
    base_url: http://localhost:5002
    language: en
    fallbacks:
      - name: coqui
        base_url: http://localhost:5003
  vad:
    name: silero
    model_path: /models/silero_vad.onnx
pipeline:
  sample_rate: 16000
  language: en
  system_prompt: "Be brief."
cache:
  redis_addr: localhost:6379
  ttl_seconds: 3600
storage:
  postgres_dsn: postgres://localhost/assistant
`

func TestLoadFromReader_Valid(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Providers.STT.ModelPath != "/models/ggml-base.bin" {
		t.Errorf("STT.ModelPath = %q", cfg.Providers.STT.ModelPath)
	}
	if cfg.Providers.LLM.Name != "ollama" || cfg.Providers.LLM.Model != "llama3" {
		t.Errorf("LLM = %+v", cfg.Providers.LLM)
	}
	if len(cfg.Providers.LLM.Fallbacks) != 1 || cfg.Providers.LLM.Fallbacks[0].Name != "openai" {
		t.Errorf("Fallbacks = %+v", cfg.Providers.LLM.Fallbacks)
	}
	if len(cfg.Providers.STT.Fallbacks) != 1 || cfg.Providers.STT.Fallbacks[0].ModelPath != "/models/ggml-tiny.bin" {
		t.Errorf("STT.Fallbacks = %+v", cfg.Providers.STT.Fallbacks)
	}
	if len(cfg.Providers.TTS.Fallbacks) != 1 || cfg.Providers.TTS.Fallbacks[0].BaseURL != "http://localhost:5003" {
		t.Errorf("TTS.Fallbacks = %+v", cfg.Providers.TTS.Fallbacks)
	}
	if cfg.Providers.TTS.BaseURL != "http://localhost:5002" {
		t.Errorf("TTS.BaseURL = %q", cfg.Providers.TTS.BaseURL)
	}
	if cfg.Pipeline.SampleRate != 16000 {
		t.Errorf("SampleRate = %d", cfg.Pipeline.SampleRate)
	}
	if cfg.Cache.TTLSeconds != 3600 {
		t.Errorf("TTLSeconds = %d", cfg.Cache.TTLSeconds)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	yaml := `
server:
  listen_addr: ":8080"
  unknown_field: true
`
	if _, err := LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate_MissingRequiredProviders(t *testing.T) {
	cfg := &Config{}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "providers.stt.name is required") {
		t.Errorf("missing stt error, got: %v", err)
	}
	if !strings.Contains(msg, "providers.llm.name is required") {
		t.Errorf("missing llm error, got: %v", err)
	}
}

func TestValidate_WhisperRequiresModelPath(t *testing.T) {
	cfg := &Config{}
	cfg.Providers.STT.Name = "whisper"
	cfg.Providers.LLM.Name = "ollama"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "model_path") {
		t.Fatalf("expected model_path error, got: %v", err)
	}
}

func TestValidate_CoquiRequiresBaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.Providers.STT.Name = "whisper"
	cfg.Providers.STT.ModelPath = "/m.bin"
	cfg.Providers.LLM.Name = "ollama"
	cfg.Providers.TTS.Name = "coqui"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "providers.tts.base_url") {
		t.Fatalf("expected tts base_url error, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := &Config{}
	cfg.Server.LogLevel = "verbose"
	cfg.Providers.STT.Name = "whisper"
	cfg.Providers.STT.ModelPath = "/m.bin"
	cfg.Providers.LLM.Name = "ollama"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("expected log level error, got: %v", err)
	}
}

func TestValidate_TLSRequiresBothFiles(t *testing.T) {
	cfg := &Config{}
	cfg.Server.TLS = &TLSConfig{CertFile: "/cert.pem"}
	cfg.Providers.STT.Name = "whisper"
	cfg.Providers.STT.ModelPath = "/m.bin"
	cfg.Providers.LLM.Name = "ollama"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "server.tls") {
		t.Fatalf("expected tls error, got: %v", err)
	}
}

func TestValidate_FallbackNameRequired(t *testing.T) {
	cfg := &Config{}
	cfg.Providers.STT.Name = "whisper"
	cfg.Providers.STT.ModelPath = "/m.bin"
	cfg.Providers.LLM.Name = "ollama"
	cfg.Providers.LLM.Fallbacks = []LLMBackend{{Model: "gpt-4o-mini"}}

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "fallbacks[0].name") {
		t.Fatalf("expected fallback name error, got: %v", err)
	}
}

func TestValidate_STTFallbackRequiresModelPath(t *testing.T) {
	cfg := &Config{}
	cfg.Providers.STT.Name = "whisper"
	cfg.Providers.STT.ModelPath = "/m.bin"
	cfg.Providers.STT.Fallbacks = []STTBackend{{Name: "whisper"}}
	cfg.Providers.LLM.Name = "ollama"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "providers.stt.fallbacks[0].model_path") {
		t.Fatalf("expected stt fallback model_path error, got: %v", err)
	}
}

func TestValidate_TTSFallbackRequiresBaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.Providers.STT.Name = "whisper"
	cfg.Providers.STT.ModelPath = "/m.bin"
	cfg.Providers.LLM.Name = "ollama"
	cfg.Providers.TTS.Name = "coqui"
	cfg.Providers.TTS.BaseURL = "http://localhost:5002"
	cfg.Providers.TTS.Fallbacks = []TTSBackend{{Name: "coqui"}}

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "providers.tts.fallbacks[0].base_url") {
		t.Fatalf("expected tts fallback base_url error, got: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
