package main

import (
	"os"

	"github.com/yigit/schooldesk/internal/pkg/logger"
	"github.com/yigit/schooldesk/internal/server"
)

// @title SchoolDesk API
// @version 1.0
// @description School management API: staff, students, parents, classes, rooms, fees, timetable and notices

// @contact.name API Support
// @contact.email support@schooldesk.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token, prefixed with "Bearer "

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
