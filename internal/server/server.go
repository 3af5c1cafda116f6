// Package server exposes the voice assistant over HTTP: a WebSocket voice
// endpoint, a text chat API, health probes, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Shadowru/voice-assistant/internal/assistant"
	"github.com/Shadowru/voice-assistant/internal/health"
	"github.com/Shadowru/voice-assistant/internal/observe"
)

const (
	// shutdownTimeout bounds graceful HTTP shutdown.
	shutdownTimeout = 10 * time.Second

	// textSessionID identifies the server-owned session backing /api/text.
	textSessionID = "api-text"
)

// Config holds the HTTP server settings.
type Config struct {
	// ListenAddr is the host:port to bind. Default ":8080".
	ListenAddr string

	// CertFile and KeyFile enable TLS when both are set.
	CertFile string
	KeyFile  string
}

// Server is the HTTP front end. One instance serves all clients.
type Server struct {
	cfg     Config
	asst    *assistant.Assistant
	checks  *health.Handler
	metrics *observe.Metrics
	log     *slog.Logger

	// textSess is the shared session behind /api/text and /api/reset.
	textSess *assistant.Session

	httpSrv *http.Server
}

// Option configures a Server during construction.
type Option func(*Server)

// WithHealthChecker attaches the readiness checkers served at /readyz.
func WithHealthChecker(h *health.Handler) Option {
	return func(s *Server) { s.checks = h }
}

// WithMetrics attaches a metrics recorder used by the HTTP middleware and
// the WebSocket session gauge.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New builds the server and its routes.
func New(cfg Config, asst *assistant.Assistant, opts ...Option) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	s := &Server{
		cfg:      cfg,
		asst:     asst,
		checks:   health.New(),
		log:      slog.Default(),
		textSess: asst.NewSession(textSessionID),
	}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/text", s.handleText)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /ws/voice", s.handleVoice)
	s.checks.Register(mux)

	var handler http.Handler = mux
	if s.metrics != nil {
		handler = observe.Middleware(s.metrics)(mux)
	}

	s.httpSrv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("http server listening", "addr", s.cfg.ListenAddr)
		var err error
		if s.cfg.CertFile != "" && s.cfg.KeyFile != "" {
			err = s.httpSrv.ListenAndServeTLS(s.cfg.CertFile, s.cfg.KeyFile)
		} else {
			err = s.httpSrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Handler returns the server's root handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// handleRoot serves a minimal service descriptor.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "voice-assistant",
		"voice":   "/ws/voice",
		"text":    "/api/text",
	})
}

// healthResponse is the /health body: overall status plus a readiness flag
// per pipeline stage.
type healthResponse struct {
	Status string `json:"status"`
	STT    bool   `json:"stt"`
	LLM    bool   `json:"llm"`
	TTS    bool   `json:"tts"`
}

// handleHealth reports pipeline readiness per stage. Synthesis being down
// degrades the answer but does not flip the overall status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	r := s.asst.Readiness()

	resp := healthResponse{
		Status: "ok",
		STT:    r.Recognition,
		LLM:    r.Response,
		TTS:    r.Synthesis,
	}
	status := http.StatusOK
	if !r.Healthy() {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// textRequest is the /api/text request body.
type textRequest struct {
	Text string `json:"text"`
}

// textResponse is the /api/text response body.
type textResponse struct {
	UserText      string `json:"user_text"`
	AssistantText string `json:"assistant_text"`
	Cached        bool   `json:"cached"`
}

// handleText runs a text-only turn against the server's shared text session.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := s.asst.ProcessText(r.Context(), s.textSess, req.Text)
	switch {
	case errors.Is(err, assistant.ErrEmptyText):
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	case err != nil:
		s.log.Error("text turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process text")
		return
	}

	writeJSON(w, http.StatusOK, textResponse{
		UserText:      res.UserText,
		AssistantText: res.AssistantText,
		Cached:        res.Cached,
	})
}

// handleReset clears the shared text session's conversation history.
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.textSess.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
