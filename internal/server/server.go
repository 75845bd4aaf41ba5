package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edutrack/edutrack/internal/bootstrap"
	"github.com/edutrack/edutrack/internal/config"
	"github.com/edutrack/edutrack/internal/db"
	"github.com/edutrack/edutrack/internal/middleware"
	"github.com/edutrack/edutrack/internal/pkg/helpers"
	"github.com/edutrack/edutrack/internal/pkg/websocket"
)

// Server holds the state for the HTTP server.
type Server struct {
	config  *config.Config
	router  *gin.Engine
	db      *db.PostgresDB
	limiter *middleware.RateLimiter
	seats   *websocket.Hub
	logger  zerolog.Logger
	http    *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(configPath string) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		config:  cfg,
		router:  bootstrap.SetupRouter(cfg, deps, lgr),
		db:      database,
		limiter: deps.RateLimiter,
		seats:   deps.SeatHub,
		logger:  lgr,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  helpers.ParseDuration(s.config.Server.ReadTimeout, 10*time.Second),
		WriteTimeout: helpers.ParseDuration(s.config.Server.WriteTimeout, 10*time.Second),
		IdleTimeout:  120 * time.Second,
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go s.limiter.Cleanup(bgCtx)
	go s.seats.Run(bgCtx)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closeDB()
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	// Hijacked seat connections are not tracked by http.Server.
	stopBackground()
	return s.Shutdown(context.Background())
}

func (s *Server) closeDB() {
	if s.db != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.db.Close()
		s.db = nil
	}
}

// Shutdown drains in-flight requests, then closes the pool.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var shutdownErr error
	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = fmt.Errorf("server shutdown completed with errors: %w", err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	s.closeDB()
	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}
