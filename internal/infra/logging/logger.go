package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Constants for log levels that match slog.Level values.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Type aliases for commonly used slog types.
type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

// LoggerConfig holds configuration parameters for logging.
type LoggerConfig struct {
	// AppName is added to every record as "app"
	AppName string

	// Output is "stdout", "stderr", "discard" or a file path
	Output string `env:"OUTPUT" default:"stderr"`

	// Level is the minimum level ("debug", "info", "warn", "error")
	Level string `env:"LEVEL" default:"info"`

	// Filter overrides the level per logger name prefix ("svc.dashboardsvc:debug,repo:warn")
	Filter string `env:"FILTER" default:""`

	// JSON switches from console output to slog's JSON handler
	JSON bool `env:"JSON" default:"false"`

	// Color enables ANSI colours in console output
	Color bool `env:"COLOR" default:"true"`

	OutputHandle io.Writer
}

//nolint:gochecknoglobals
var (
	Group = slog.Group

	config     LoggerConfig
	configLock sync.RWMutex
)

// Configure sets the process-wide logging configuration.
// Loggers obtained before the call keep their previous output.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) {
	if err := configure(cfg, appName); err != nil {
		panic(err)
	}

	GetLogger("infra.logging").DebugContext(ctx, "logging configured", Group("config",
		"app", appName,
		"output", cfg.Output,
		"level", cfg.Level,
		"filter", cfg.Filter,
		"json", cfg.JSON,
	))
}

func configure(cfg LoggerConfig, appName string) error {
	cfg.AppName = appName

	if cfg.OutputHandle == nil {
		switch cfg.Output {
		case "", "discard":
			cfg.OutputHandle = io.Discard
		case "stdout":
			cfg.OutputHandle = os.Stdout
		case "stderr":
			cfg.OutputHandle = os.Stderr
		default:
			file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}

			cfg.OutputHandle = file
		}
	}

	configLock.Lock()
	defer configLock.Unlock()

	config = cfg

	slog.SetLogLoggerLevel(ParseLevel(cfg.Level, LevelInfo))

	return nil
}

func currentConfig() LoggerConfig {
	configLock.RLock()
	defer configLock.RUnlock()

	return config
}

// GetLogger returns a logger tagged with the given name, e.g. "repo.dataset".
// Names are dotted so that Filter entries can target a whole subtree.
func GetLogger(name string) Logger {
	cfg := currentConfig()

	if cfg.OutputHandle == nil || cfg.OutputHandle == io.Discard {
		return NewNopLogger()
	}

	level := ParseLevel(cfg.Level, LevelInfo)
	if override, ok := cfg.levelFor(name); ok {
		level = override
	}

	var handler slog.Handler

	if cfg.JSON {
		//nolint:exhaustruct
		handler = slog.NewJSONHandler(cfg.OutputHandle, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		})
	} else {
		handler = NewConsoleHandler(cfg.OutputHandle, level, cfg.Color)
	}

	logger := slog.New(NewContextHandler(handler))

	if cfg.AppName != "" {
		logger = logger.With("app", cfg.AppName)
	}

	return logger.With("logger", name)
}

// GetLogLogger adapts a Logger for APIs that expect a *log.Logger, such as http.Server.ErrorLog.
func GetLogLogger(logger Logger, level Level) *log.Logger {
	return slog.NewLogLogger(logger.With("stdlog", true).Handler(), level)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// levelFor returns the level of the most specific Filter entry matching name.
func (cfg LoggerConfig) levelFor(name string) (Level, bool) {
	var (
		best      Level
		bestLen   = -1
		hasFilter bool
	)

	for _, entry := range strings.Split(cfg.Filter, ",") {
		prefix, levelStr, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			continue
		}

		if name != prefix && !strings.HasPrefix(name, prefix+".") {
			continue
		}

		if len(prefix) > bestLen {
			best, bestLen, hasFilter = ParseLevel(levelStr, LevelDebug), len(prefix), true
		}
	}

	return best, hasFilter
}

// ParseLevel converts a level name to a Level, returning fallback for unknown names.
func ParseLevel(levelStr string, fallback Level) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return fallback
	}
}
