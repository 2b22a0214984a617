package server

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/foliokit/folioterm/internal/api/http"
	"github.com/foliokit/folioterm/internal/api/middleware"
	"github.com/foliokit/folioterm/internal/api/ws"
	"github.com/foliokit/folioterm/internal/content"
	"github.com/foliokit/folioterm/internal/domain/session"
	"github.com/foliokit/folioterm/internal/infrastructure/config"
	"github.com/foliokit/folioterm/internal/infrastructure/logging"
	"github.com/foliokit/folioterm/internal/infrastructure/monitoring"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router   *gin.Engine
	sessions *session.Manager
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	httpSrv  *stdhttp.Server
}

// NewServer wires the terminal service together.
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	logger.Info("initializing folioterm server",
		zap.String("port", cfg.Server.Port),
		zap.String("content_path", cfg.Content.Path),
	)

	metrics := monitoring.NewMetrics()

	snap := content.Default()
	if cfg.Content.Path != "" {
		loaded, err := content.LoadFile(cfg.Content.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
		snap = loaded
	}

	sessions := session.NewManager(snap, logger, metrics, session.Options{
		HistoryLimit:    cfg.Terminal.HistoryLimit,
		DebounceDelay:   cfg.Terminal.DebounceDelay,
		ScrollThreshold: cfg.Terminal.ScrollThreshold,
	})
	logger.Info("terminal core built",
		zap.String("owner", snap.Owner.Name),
		zap.Int("vfs_nodes", sessions.Tree().Len()),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(sessions, snap)
	wsHandler := ws.NewHandler(sessions, logger, metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	router.GET("/content", middleware.Gzip(), handlers.GetContent)

	router.POST("/sessions", handlers.OpenSession)
	router.DELETE("/sessions/:id", handlers.CloseSession)
	router.POST("/sessions/:id/execute", handlers.Execute)
	router.GET("/sessions/:id/output", handlers.GetOutput)

	router.GET("/stream", wsHandler.HandleConnection)

	router.GET("/metrics", func(c *gin.Context) {
		metrics.UpdateUptime()
		promhttp.Handler().ServeHTTP(c.Writer, c.Request)
	})

	logger.Info("server initialized")

	return &Server{
		router:   router,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("starting http server", zap.String("addr", addr))

	s.httpSrv = &stdhttp.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpSrv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
		return err
	}
	return nil
}

// Close drains in-flight requests, closes every session and syncs the
// logger.
func (s *Server) Close() error {
	s.logger.Info("shutting down server")

	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("http shutdown failed", zap.Error(err))
			return err
		}
	}

	s.sessions.Shutdown()
	s.logger.Sync()
	return nil
}
