// Package server implements the pidforge HTTP API.
//
// Routes:
//
//	GET    /health
//	GET    /api/components                    catalog, keyed by definition id
//	GET    /api/components/{id}               one definition
//	GET    /api/schematics                    stored schematic summaries
//	POST   /api/schematic                     validate and save a document
//	GET    /api/schematic/{id}                stored document
//	DELETE /api/schematic/{id}
//	GET    /api/schematic/{id}/export.png     cropped 2x raster export
//	GET    /api/schematic/{id}/export.svg
//	GET    /api/schematic/{id}/topology.svg   wiring topology via Graphviz
//	GET    /metrics                           Prometheus metrics, when enabled
//
// Every request builds its own diagram from the stored document, so the
// handlers share no mutable editing state.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/pidforge/internal/metrics"
	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/store"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":6969"

// maxDocumentBytes bounds POSTed schematic bodies.
const maxDocumentBytes = 4 << 20

// Options configures a Server.
type Options struct {
	Catalog     catalog.Source // nil means the built-in catalog
	Store       store.Store    // nil means a fresh in-memory store
	Logger      *log.Logger
	CORSOrigins []string           // empty allows any origin
	Timeout     time.Duration      // per-request timeout, 0 disables
	Metrics     *metrics.Collector // nil disables /metrics
	Now         func() time.Time
}

// Server serves the catalog and schematic API.
type Server struct {
	catalog catalog.Source
	store   store.Store
	logger  *log.Logger
	origins []string
	timeout time.Duration
	metrics *metrics.Collector
	now     func() time.Time
}

// New creates a server from opts.
func New(opts Options) *Server {
	s := &Server{
		catalog: opts.Catalog,
		store:   opts.Store,
		logger:  opts.Logger,
		origins: opts.CORSOrigins,
		timeout: opts.Timeout,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if s.catalog == nil {
		s.catalog = catalog.DefaultSource()
	}
	if s.store == nil {
		s.store = store.Instrument(store.NewMemoryStore(), store.BackendMemory)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(chimiddleware.Recoverer)
	if s.timeout > 0 {
		r.Use(chimiddleware.Timeout(s.timeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/components", s.listComponents)
		r.Get("/components/{id}", s.getComponent)
		r.Get("/schematics", s.listSchematics)
		r.Post("/schematic", s.saveSchematic)
		r.Route("/schematic/{id}", func(r chi.Router) {
			r.Get("/", s.getSchematic)
			r.Delete("/", s.deleteSchematic)
			r.Get("/export.png", s.exportPNG)
			r.Get("/export.svg", s.exportSVG)
			r.Get("/topology.svg", s.topologySVG)
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", chimiddleware.GetReqID(r.Context()))
	})
}
