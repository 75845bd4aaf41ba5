package main

import (
	"os"

	"github.com/edutrack/edutrack/internal/config"
	"github.com/edutrack/edutrack/internal/pkg/logger"
	"github.com/edutrack/edutrack/internal/server"
)

// @title EduTrack API
// @version 1.0
// @description Students, courses and capacity-checked enrollments.

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	srv, err := server.NewServer(config.GetEnv("CONFIG_PATH", "configs/config.yaml"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
