// Package server exposes report generation over HTTP: upload a score file,
// preview it, generate a report and download it.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gompdf/scorepdf/internal/storage"
	"github.com/gompdf/scorepdf/pkg/api"
	"github.com/gompdf/scorepdf/pkg/logger"
	"github.com/gompdf/scorepdf/pkg/metrics"
)

const (
	defaultMaxUpload    = 8 << 20
	defaultTimeout      = 60 * time.Second
	reportsPrefix       = "reports/"
	downloadName        = "report.pdf"
	shutdownGracePeriod = 10 * time.Second
)

// Server holds the HTTP collaborators.
type Server struct {
	gen       *api.Generator
	store     storage.BlobStore
	log       logger.Logger
	metrics   *metrics.Manager
	origins   []string
	maxUpload int64
	timeout   time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics serves m at /metrics and counts requests on it.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) { s.metrics = m }
}

// WithOrigins sets the CORS allowed origins.
func WithOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithMaxUpload caps the size of uploaded score files.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithTimeout bounds the time spent on one request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a server generating with gen and keeping reports in store.
func New(gen *api.Generator, store storage.BlobStore, opts ...Option) *Server {
	s := &Server{
		gen:       gen,
		store:     store,
		log:       logger.Discard(),
		origins:   []string{"*"},
		maxUpload: defaultMaxUpload,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("http")
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLog, middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Route("/v1", func(vr chi.Router) {
		vr.Post("/preview", s.handlePreview)
		vr.Post("/reports", s.handleCreateReport)
		vr.Get("/reports/{id}", s.handleGetReport)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// requestLog logs each request and counts it by route pattern.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(status))
		s.log.Info(r.Context(), "request",
			logger.String("method", r.Method),
			logger.String("route", route),
			logger.Int("status", status),
			logger.Int("bytes", ww.BytesWritten()),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Duration("took", time.Since(start)))
	})
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "listening", logger.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		s.log.Info(ctx, "shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
