package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls how the process logger is built.
type Config struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// New returns a JSON logger (console output when cfg.Pretty) tagged with service.
// An unknown level falls back to info.
func New(service string, cfg Config, w io.Writer) *zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	l := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	return &l
}
