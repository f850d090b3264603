// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/telecast/internal/api"
	"github.com/stwalsh4118/telecast/internal/config"
	"github.com/stwalsh4118/telecast/internal/db"
	"github.com/stwalsh4118/telecast/internal/logger"
	"github.com/stwalsh4118/telecast/internal/mediasource"
	"github.com/stwalsh4118/telecast/internal/middleware"
	"github.com/stwalsh4118/telecast/internal/playback"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	db       *db.DB
	repos    *db.Repositories
	cache    *playback.Cache
	resolver mediasource.Resolver
	router   *gin.Engine
	server   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)
	cache := playback.NewCache(repos.Channels)
	resolver := mediasource.NewClient(cfg.MediaSource.BaseURL, cfg.MediaSource.Token)

	return &Server{
		config:   cfg,
		db:       database,
		repos:    repos,
		cache:    cache,
		resolver: resolver,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())

	// Streaming surface lives at the root so the spawned concat process and
	// external players reach it with bare paths.
	api.SetupVideoRoutes(s.router, s.cache, s.repos, s.resolver, s.config.Server.Port)

	apiGroup := s.router.Group("/api")
	api.SetupHealthRoutes(apiGroup, s.db, s.repos)
	api.SetupVersionRoutes(apiGroup)
	api.SetupChannelRoutes(s.router, s.repos, s.cache)
	api.SetupSettingsRoutes(s.router, s.repos)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	// No WriteTimeout: streaming responses stay open as long as the client
	// keeps watching.
	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
