package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/scorchos/site/internal/config"
	sitehttp "github.com/scorchos/site/internal/http"
	"github.com/scorchos/site/internal/logging"
	"github.com/scorchos/site/internal/manager"
	"github.com/scorchos/site/internal/middleware"
	"github.com/scorchos/site/internal/monitoring"
	"github.com/scorchos/site/internal/pages"
	"github.com/scorchos/site/internal/shell"
	"github.com/scorchos/site/internal/ws"
)

const (
	gzipMinSize     = 1024
	shutdownTimeout = 10 * time.Second
)

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg      config.Config
	router   *gin.Engine
	handler  http.Handler
	sessions *manager.Manager
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

// NewServer creates a new server instance
func NewServer(cfg config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	catalog, err := pages.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("load error catalog: %w", err)
	}

	site := pages.DefaultSite()
	site.Name = cfg.Site.Name
	site.Hostname = cfg.Shell.Hostname
	renderer, err := pages.NewRenderer(catalog, site)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()
	sessions := manager.New(manager.Options{
		MaxSessions: cfg.Shell.MaxSessions,
		IdleTimeout: cfg.Shell.IdleTimeout,
		Logger:      logger,
		Hooks: shell.Hooks{
			CommandExecuted: metrics.RecordCommand,
			Navigated:       metrics.RecordNavigation,
			BootCompleted:   metrics.IncBootsCompleted,
		},
		OnOpen:  metrics.SessionOpened,
		OnClose: metrics.SessionClosed,
	})

	handlers := sitehttp.NewHandlers(renderer, sessions, metrics, logger)

	wsCfg := ws.DefaultConfig()
	wsCfg.AllowOrigins = cfg.Server.AllowOrigins
	wsHandler := ws.NewHandler(sessions, catalog, metrics, logger, wsCfg)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger.Component("http")),
		gin.CustomRecovery(handlers.Recover),
		monitoring.Middleware(metrics),
		middleware.CORS(middleware.CORSForOrigins(cfg.Server.AllowOrigins)),
	)
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
		}, middleware.WithOnLimit(handlers.RateLimited)))
	}

	connectLimit := middleware.GlobalRateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.Shell.ConnectRPS,
		Burst:             cfg.Shell.ConnectBurst,
	}, middleware.WithOnLimit(handlers.RateLimited))
	router.GET(pages.ShellPath, connectLimit, wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	handlers.Register(router)

	s := &Server{
		cfg:      cfg,
		router:   router,
		handler:  router,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger.Component("server"),
	}

	if cfg.Site.Gzip {
		wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(gzipMinSize))
		if err != nil {
			return nil, fmt.Errorf("create gzip wrapper: %w", err)
		}
		s.handler = bypassWebSocket(router, wrap(router))
	}

	return s, nil
}

// bypassWebSocket sends the shell endpoint to raw and everything else to
// compressed; an upgraded connection must not go through the gzip writer.
func bypassWebSocket(raw, compressed http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == pages.ShellPath {
			raw.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions returns the session manager.
func (s *Server) Sessions() *manager.Manager {
	return s.sessions
}

// Metrics returns the metrics collector.
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// every session.
func (s *Server) Run(ctx context.Context) error {
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	reaperDone := make(chan struct{})
	go func() {
		defer close(reaperDone)
		s.sessions.Run(reaperCtx)
	}()
	defer func() {
		stopReaper()
		<-reaperDone
	}()

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown; closing
	// the sessions ends their read loops.
	s.sessions.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close cleans up resources
func (s *Server) Close() error {
	s.sessions.CloseAll()
	if err := s.logger.Sync(); err != nil {
		s.logger.Debug("logger sync failed", zap.Error(err))
	}
	return nil
}
