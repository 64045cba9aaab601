package logger

import (
	"fmt"
	"log/slog"
	"os"

	. "github.com/go-ozzo/ozzo-validation"
	"github.com/lmittmann/tint"
)

type Config struct {
	Level     string
	Format    string
	AddSource bool
}

func (c *Config) Validate() error {
	return ValidateStruct(c,
		Field(&c.Level, Required, In("debug", "info", "warn", "error")),
		Field(&c.Format, Required, In("json", "text")),
	)
}

func (c *Config) slogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type Logger struct {
	*slog.Logger
}

func New(cfg *Config) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Logger{slog.New(createHandler(cfg))}, nil
}

func createHandler(cfg *Config) slog.Handler {
	level := cfg.slogLevel()
	switch cfg.Format {
	case "text":
		return tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			AddSource:  cfg.AddSource,
			TimeFormat: "15:04:05",
		})
	default:
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		})
	}
}

func (l *Logger) Component(name string) *Logger {
	return &Logger{l.Logger.With("component", name)}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return &Logger{slog.New(slog.DiscardHandler)}
}
