package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the service logger. LOG_LEVEL overrides the environment default
// of debug in development and info elsewhere.
func New() zerolog.Logger {
	// For Google Cloud Logging, the level field name should be "severity".
	zerolog.LevelFieldName = "severity"
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	dev := os.Getenv("ENV") == "development"
	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return logger.Level(level(os.Getenv("LOG_LEVEL"), dev))
}

func level(raw string, dev bool) zerolog.Level {
	if raw != "" {
		if lvl, err := zerolog.ParseLevel(raw); err == nil {
			return lvl
		}
	}
	if dev {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
