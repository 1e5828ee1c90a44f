// Package logging provides structured logging for fwmap using zerolog.
//
// Console output is used when stderr is a terminal, JSON otherwise.
// Loggers travel through context so that reconciliation passes can tag
// every event with the pass and source they belong to.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("model", "DS-2CD2047G2").Msg("ingesting release")
//
//	ctx := logging.WithLogger(context.Background(), log)
//	ctx = logging.WithPass(ctx, "directory")
//	logging.FromContext(ctx).Debug().Msg("scanning artifacts")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger zerolog.Logger

func init() {
	defaultLogger = createDefaultLogger()
}

// createDefaultLogger reads the LOG_* variables. DEBUG selects debug level
// when LOG_LEVEL is unset.
func createDefaultLogger() zerolog.Logger {
	cfg := ConfigFromEnv()
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	return NewLoggerFromConfig(cfg)
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts an info event on the default logger.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
