// Package server exposes the CAD engine over a JSON HTTP API
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/philipparndt/gostep/internal/metrics"
	"github.com/philipparndt/gostep/pkg/cad"
	"github.com/philipparndt/gostep/pkg/watcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for the server
type Config struct {
	Engine  *cad.Engine
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// Gatherer serves /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer

	Addr              string
	MaxUploadBytes    int64
	ReadHeaderTimeout time.Duration
	Mesh              cad.MeshOptions

	// Watch reloads the loaded file when it changes on disk
	Watch         bool
	WatchDebounce time.Duration

	// UploadDir receives uploaded files; empty uses a fresh temp directory
	UploadDir string
}

// Server is the HTTP API server
type Server struct {
	cfg     Config
	engine  *cad.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	uploadDir  string
	lastUpload string
	fw         *watcher.FileWatcher
}

// New creates a server. Missing optional settings get defaults.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("server needs an engine")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 100 << 20
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.Mesh == (cad.MeshOptions{}) {
		cfg.Mesh = cad.DefaultMeshOptions()
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 300 * time.Millisecond
	}

	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		dir, err := os.MkdirTemp("", "gostep-uploads-")
		if err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
		uploadDir = dir
	}

	return &Server{
		cfg:       cfg,
		engine:    cfg.Engine,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		uploadDir: uploadDir,
	}, nil
}

// Router builds the HTTP handler
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.instrument,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/upload", s.handleUpload)
		r.Get("/faces", s.handleFaces)
		r.Get("/face/{id}", s.handleFace)
		r.Get("/mesh", s.handleMesh)
		r.Get("/summary", s.handleSummary)
		r.Get("/features", s.handleGetFeatures)
		r.Post("/features", s.handleSetFeatures)
		r.Post("/export", s.handleExport)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	return r
}

// instrument records request metrics and logs every request
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		s.metrics.RequestsInFlight.Inc()
		defer s.metrics.RequestsInFlight.Dec()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		s.metrics.ObserveRequest(route, r.Method, status, time.Since(start))
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// LoadFile loads a model from disk, records metrics and points the watcher at it
func (s *Server) LoadFile(path string) (cad.LoadInfo, error) {
	sess, err := s.open(path)
	if err != nil {
		return cad.LoadInfo{}, err
	}
	return sess.Info(), nil
}

// open loads path and returns the session it swapped in
func (s *Server) open(path string) (*cad.Session, error) {
	start := time.Now()
	sess, err := s.engine.Open(path)
	s.metrics.ObserveOperation("load", start, err)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveModel(sess.NumFaces(), len(sess.Entities()), time.Now())

	s.mu.Lock()
	fw := s.fw
	s.mu.Unlock()
	if fw != nil && s.engine.IsCurrent(sess) {
		s.watch(fw, path)
	}
	return sess, nil
}

func (s *Server) watch(fw *watcher.FileWatcher, path string) {
	if err := fw.RemoveAll(); err != nil {
		s.logger.Warn("failed to reset watcher", zap.Error(err))
	}
	if err := fw.Watch([]string{path}, s.reload); err != nil {
		s.logger.Warn("failed to watch model file", zap.String("path", path), zap.Error(err))
	}
}

// reload is the watcher callback
func (s *Server) reload(path string) {
	start := time.Now()
	info, err := s.engine.Reload()
	s.metrics.ObserveOperation("reload", start, err)
	if err != nil {
		s.logger.Warn("reload failed, keeping previous model", zap.String("path", path), zap.Error(err))
		return
	}
	s.metrics.ReloadsTotal.Inc()
	s.metrics.ObserveModel(info.NumFaces, info.NumStepEntities, time.Now())
	s.logger.Info("model reloaded", zap.String("path", path), zap.Int("faces", info.NumFaces))
}

// Serve starts the server and blocks until the context is cancelled
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	if s.cfg.Watch {
		fw, err := watcher.NewFileWatcher(s.cfg.WatchDebounce, s.logger)
		if err != nil {
			return err
		}
		defer fw.Close()

		s.mu.Lock()
		s.fw = fw
		s.mu.Unlock()
		if path := s.engine.CurrentPath(); path != "" {
			s.watch(fw, path)
		}

		eg.Go(func() error {
			return fw.Run(egctx)
		})
	}

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	s.logger.Info("starting server", zap.String("addr", s.cfg.Addr), zap.Bool("watch", s.cfg.Watch))

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	err := eg.Wait()
	s.cleanup()
	return err
}

// cleanup removes the upload directory if the server created it
func (s *Server) cleanup() {
	if s.cfg.UploadDir != "" {
		return
	}
	if err := os.RemoveAll(s.uploadDir); err != nil {
		s.logger.Warn("failed to remove upload directory", zap.Error(err))
	}
}
