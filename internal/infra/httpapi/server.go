package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"promptd/internal/domain"
	"promptd/internal/infra/auth"
	"promptd/internal/infra/telemetry"
)

const maxBodyBytes = 1 << 20

// EventSource hands out event subscriptions that end with ctx.
type EventSource interface {
	Subscribe(ctx context.Context) <-chan domain.Event
}

// Options configures the HTTP front end.
type Options struct {
	ControlPlane domain.ControlPlane
	Events       EventSource
	Publisher    domain.EventPublisher
	Auth         *auth.Authenticator
	Metrics      domain.Metrics
	Gatherer     prometheus.Gatherer
	RetryMillis  int
	Logger       *zap.Logger
}

// Server routes HTTP requests onto the control plane.
type Server struct {
	cp        domain.ControlPlane
	events    EventSource
	publisher domain.EventPublisher
	auth      *auth.Authenticator
	metrics   domain.Metrics
	retry     int
	logger    *zap.Logger
	mux       *http.ServeMux
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	retry := opts.RetryMillis
	if retry <= 0 {
		retry = domain.DefaultSSERetryMillis
	}
	s := &Server{
		cp:        opts.ControlPlane,
		events:    opts.Events,
		publisher: opts.Publisher,
		auth:      opts.Auth,
		metrics:   metrics,
		retry:     retry,
		logger:    logger.Named("http"),
		mux:       http.NewServeMux(),
	}

	s.handle("GET /events", true, http.HandlerFunc(s.handleEvents))
	s.handle("POST /reload_prompts", true, http.HandlerFunc(s.handleReloadPrompts))
	s.handle("POST /reload_resources", true, http.HandlerFunc(s.handleReloadResources))
	s.handle("GET /list_dynamic_prompts", true, http.HandlerFunc(s.handleListPrompts))
	s.handle("GET /list_resources", true, http.HandlerFunc(s.handleListResources))
	s.handle("POST /tool/{name}", true, http.HandlerFunc(s.handleTool))
	s.handle("GET /metrics", true, telemetry.MetricsHandler(opts.Gatherer))
	s.handle("GET /healthz", false, telemetry.HealthHandler(func(ctx context.Context) any {
		return s.cp.Status(ctx)
	}))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handle(pattern string, gated bool, h http.Handler) {
	if gated && s.auth != nil {
		h = s.auth.Middleware(h)
	}
	s.mux.Handle(pattern, s.instrument(pattern, h))
}

// instrument attaches request metadata and records latency per route.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, meta := telemetry.EnsureRequestMeta(r.Context(), telemetry.RequestIDFromHTTP(r))
		w.Header().Set(telemetry.RequestIDHeader, meta.RequestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		elapsed := time.Since(start)
		s.metrics.ObserveHTTPRequest(route, rec.status, elapsed)
		telemetry.LoggerWithRequest(ctx, s.logger).Debug("request served",
			zap.String("route", route),
			zap.Int("status", rec.status),
			telemetry.DurationField(elapsed),
		)
	})
}

func (s *Server) handleReloadPrompts(w http.ResponseWriter, r *http.Request) {
	res, err := s.cp.ReloadPrompts(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReloadResources(w http.ResponseWriter, r *http.Request) {
	res, err := s.cp.ReloadResources(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cp.ListPrompts(r.Context()))
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cp.ListResources(r.Context()))
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		auth.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		auth.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	res, err := s.cp.InvokeTool(r.Context(), name, body)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if s.publisher != nil {
		s.publisher.Publish(domain.Event{
			Type: domain.EventToolResult,
			Data: map[string]any{"tool": name, "result": res},
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		telemetry.LoggerWithRequest(r.Context(), s.logger).Warn("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	auth.WriteError(w, status, err.Error())
}

func statusFor(err error) int {
	code, ok := domain.CodeFrom(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidArgument:
		return http.StatusBadRequest
	case domain.CodeUnauthenticated:
		return http.StatusUnauthorized
	case domain.CodeCanceled:
		return 499
	case domain.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
