package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"mosaic/internal/auth"
	"mosaic/internal/config"
	"mosaic/internal/labels"
	"mosaic/internal/logging"
	"mosaic/internal/media"
	"mosaic/internal/metrics"
	"mosaic/internal/persist"
)

// Server serves the mosaic HTTP API over a single listener.
type Server struct {
	cfg      *config.Config
	store    *labels.Store
	pipeline *persist.Pipeline
	prober   *media.Prober
	thumbs   *media.Thumbnailer
	auth     *auth.Service
	logger   *slog.Logger
	limiter  *rate.Limiter

	mu      sync.Mutex
	running bool
	httpSrv *http.Server
	addr    string
	wg      sync.WaitGroup
}

// New creates an HTTP server over the given collaborators. All of them must
// be non-nil; prober and thumbs carry their own disabled state internally.
func New(cfg *config.Config, store *labels.Store, pipeline *persist.Pipeline, prober *media.Prober, thumbs *media.Thumbnailer, authsvc *auth.Service, logger *slog.Logger) *Server {
	perMinute := cfg.Server.LoginRatePerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		pipeline: pipeline,
		prober:   prober,
		thumbs:   thumbs,
		auth:     authsvc,
		logger:   logging.NewComponentLogger(logger, "http"),
		limiter:  rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
	}
}

// Start binds the configured address and begins serving in the background.
// The passed context becomes the base context of every request.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server: already running")
	}

	listener, err := net.Listen("tcp", s.cfg.Server.Bind)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Bind, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		IdleTimeout:       2 * time.Minute,
		// No write deadline: /data streams whole video files to slow clients.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	s.httpSrv = srv
	s.addr = listener.Addr().String()
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server terminated", logging.Error(err))
		}
	}()

	s.logger.Info("listening", slog.String("addr", s.addr), slog.String("base_path", s.cfg.Server.BasePath))
	return nil
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	srv := s.httpSrv
	s.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown did not drain, closing", logging.Error(err))
		_ = srv.Close()
	}
	s.wg.Wait()
	s.logger.Info("stopped")
}

// Addr reports the bound listener address, useful when the configured bind
// uses port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler builds the full route table with per-route logging and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "POST /api/login", s.rateLimited(http.HandlerFunc(s.handleLogin)))
	s.handle(mux, "POST /api/guest", s.rateLimited(http.HandlerFunc(s.handleGuest)))
	s.handle(mux, "POST /api/logout", http.HandlerFunc(s.handleLogout))
	s.handle(mux, "GET /api/me", s.auth.RequireUser(http.HandlerFunc(s.handleMe)))

	s.handle(mux, "GET /api/categories", s.auth.RequireUser(http.HandlerFunc(s.handleCategories)))
	s.handle(mux, "GET /api/video/{orientation}/{file}/categories", s.auth.RequireUser(http.HandlerFunc(s.handleVideoCategoriesGet)))
	s.handle(mux, "POST /api/video/{orientation}/{file}/categories", s.auth.RequireAdmin(http.HandlerFunc(s.handleVideoCategoriesPost)))

	s.handle(mux, "GET /api/videos", s.auth.RequireUser(http.HandlerFunc(s.handlePlaylist)))
	s.handle(mux, "GET /api/search/count", s.auth.RequireUser(http.HandlerFunc(s.handleSearchCount)))

	s.handle(mux, "GET /api/config", http.HandlerFunc(s.handleUIConfig))
	s.handle(mux, "GET /metrics", metrics.Handler())

	s.mountStatic(mux)

	var handler http.Handler = mux
	if s.cfg.Server.Gzip {
		handler = gzipHandler(handler)
	}
	return handler
}
