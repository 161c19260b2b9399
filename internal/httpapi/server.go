// Package httpapi exposes the Suara voice navigation pipeline over HTTP.
//
// The API surface:
//
//   - POST /v1/voice/turn       one conversation turn (text or base64 audio)
//   - POST /v1/voice/reset      drop a session back to idle
//   - GET  /v1/voice/stream     websocket conversation stream
//   - POST /v1/voiceprint/enroll, /v1/voiceprint/verify
//   - GET  /healthz, /readyz, /metrics
//
// All routes run behind [observe.Middleware], which records request durations
// and stamps responses with a correlation ID.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wanhafiz/suara/internal/dialog"
	"github.com/wanhafiz/suara/internal/health"
	"github.com/wanhafiz/suara/internal/observe"
	"github.com/wanhafiz/suara/internal/transcript"
	"github.com/wanhafiz/suara/internal/voiceprint"
	"github.com/wanhafiz/suara/pkg/provider/stt"
)

// defaultTurnTimeout bounds one voice turn end to end. It must leave room for
// the classifier's rate-limit backoff, which can hold a turn for tens of
// seconds before the keyword fallback takes over.
const defaultTurnTimeout = 60 * time.Second

// Server bundles the pipeline components behind the HTTP handlers.
type Server struct {
	machine     *dialog.Machine
	sessions    *dialog.Store
	transcriber stt.Transcriber
	normalizer  *transcript.TermNormalizer
	detector    *transcript.Detector
	matcher     *voiceprint.Matcher
	health      *health.Handler
	metrics     *observe.Metrics
	log         *slog.Logger
	turnTimeout time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithTranscriber enables audio input on the turn and stream endpoints. When
// absent, audio requests are rejected with 503 and only text turns work.
func WithTranscriber(t stt.Transcriber) Option {
	return func(s *Server) { s.transcriber = t }
}

// WithMatcher enables the voiceprint enroll/verify endpoints.
func WithMatcher(m *voiceprint.Matcher) Option {
	return func(s *Server) { s.matcher = m }
}

// WithHealth sets the health handler registered on /healthz and /readyz.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics overrides the metrics sink. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithServerLogger sets the server's logger.
func WithServerLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithTurnTimeout overrides the per-turn deadline.
func WithTurnTimeout(d time.Duration) Option {
	return func(s *Server) { s.turnTimeout = d }
}

// NewServer builds a Server over the dialogue machine and its session store.
func NewServer(machine *dialog.Machine, sessions *dialog.Store, opts ...Option) *Server {
	s := &Server{
		machine:     machine,
		sessions:    sessions,
		normalizer:  transcript.NewTermNormalizer(),
		detector:    transcript.NewDetector(),
		health:      health.New(),
		log:         slog.Default(),
		turnTimeout: defaultTurnTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler returns the fully routed HTTP handler, wrapped in the observability
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/voice/turn", s.handleTurn)
	mux.HandleFunc("POST /v1/voice/reset", s.handleReset)
	mux.HandleFunc("GET /v1/voice/stream", s.handleStream)
	mux.HandleFunc("POST /v1/voiceprint/enroll", s.handleEnroll)
	mux.HandleFunc("POST /v1/voiceprint/verify", s.handleVerify)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.health.Register(mux)

	return observe.Middleware(s.metrics)(mux)
}

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status. Encoding failures surface as a
// plain 500 since the header is already written.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encode failed", slog.String("err", err.Error()))
	}
}

// writeError sends a JSON error body with the given status.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
