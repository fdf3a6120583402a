package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/api/middleware"
	"github.com/feral-file/ff-vault-indexer/internal/api/rest"
	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Chains       []domain.Chain
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	store      store.Store
	httpServer *http.Server
}

// New creates a new status server
func New(cfg Config, st store.Store) *Server {
	return &Server{
		config: cfg,
		store:  st,
	}
}

// Router builds the gin engine with all routes
func (s *Server) Router() *gin.Engine {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	rest.SetupRoutes(router, rest.NewHandler(s.store, s.config.Chains))
	return router
}

// Start initializes and starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.InfoCtx(ctx, "Starting status server", zap.String("address", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.InfoCtx(ctx, "Shutting down status server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
