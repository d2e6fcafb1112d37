// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"

	"gametable/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init applies the log configuration to the global logger and returns the
// configured instance for injection into components.
func Init(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}
