package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Package-level variable that holds our configured logger instance.
// It starts with a disabled logger to be safe until it's initialized.
var Log zerolog.Logger = zerolog.New(nil).Level(zerolog.Disabled)

// InitLogger initializes the global logger. Verbosity comes from
// OBAGG_LOG_LEVEL (zerolog level names: debug, info, warn, error),
// defaulting to info — the conventional RUST_LOG-style filter env var,
// with an implementation-defined name.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro

	level := zerolog.InfoLevel
	if raw := os.Getenv("OBAGG_LOG_LEVEL"); raw != "" {
		parsed, err := zerolog.ParseLevel(raw)
		if err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	outputWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05.000000",
	}

	Log = zerolog.New(outputWriter).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Get returns the global logger instance.
// This is useful if you need to pass the logger to other libraries that don't use this package directly.
func Get() *zerolog.Logger {
	return &Log
}
