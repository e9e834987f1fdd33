package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger zerolog.Logger

// Output formats accepted by Config.Format
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config describes the process-wide logger
type Config struct {
	// Level is a zerolog level name; unknown or empty values mean info
	Level string
	// Format is FormatText for human-readable output, anything else is JSON
	Format string
	// Output defaults to os.Stdout
	Output io.Writer
	// Hooks run on every event, e.g. the Rollbar reporter
	Hooks []zerolog.Hook
}

// Configure replaces the default logger and zerolog's global log.Logger
func Configure(config Config) zerolog.Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(config.Level))

	writer := config.Output
	if strings.EqualFold(config.Format, FormatText) {
		writer = zerolog.ConsoleWriter{Out: config.Output, TimeFormat: time.RFC3339}
	}

	lgr := zerolog.New(writer).With().Timestamp().Logger()
	for _, h := range config.Hooks {
		lgr = lgr.Hook(h)
	}

	defaultLogger = lgr
	log.Logger = lgr
	return lgr
}

// ParseLevel maps a configured level name to a zerolog level
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func Debug() *zerolog.Event { return defaultLogger.Debug() }
func Info() *zerolog.Event  { return defaultLogger.Info() }
func Warn() *zerolog.Event  { return defaultLogger.Warn() }
func Error() *zerolog.Event { return defaultLogger.Error() }

func init() {
	Configure(Config{Level: "info", Format: FormatText})
}
