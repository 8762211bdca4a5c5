package globals

import (
	"log/slog"
	"os"
	"sync"

	"github.com/blackroad/sensor-dashboard/internal/config"
	"github.com/blackroad/sensor-dashboard/internal/database"
)

var (
	// Global instances
	Logger *slog.Logger

	initOnce sync.Once
	initErr  error
)

// Initialize sets up the logger, loads configuration, and opens the database
// exactly once.
func Initialize(verbose bool, configPath string) error {
	initOnce.Do(func() {
		setupLogger(verbose)

		Logger.Debug("Initializing global instances")

		if err := config.Load(configPath); err != nil {
			initErr = err
			return
		}

		if err := database.Init(); err != nil {
			initErr = err
			return
		}

		Logger.Debug("Database initialized", "path", config.DBPath())
	})

	return initErr
}

// setupLogger configures the global logger
func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// Set as default logger
	slog.SetDefault(Logger)
}
