// Package logger provides structured logging for vecdb.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog with vecdb-specific functionality.
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// NewLogger creates a new structured logger.
func NewLogger(cfg Config) *Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		With().
		Timestamp().
		Str("service", "vecdb").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// GetZerolog returns the underlying zerolog logger.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

// Info logs an info message.
func (l *Logger) Info(msg string) *zerolog.Event {
	return l.zlog.Info().Str("msg", msg)
}

// Debug logs a debug-level event with structured fields. Satisfies
// rawdb.Logger so a *Logger can be passed directly as rawdb.Config.Logger.
func (l *Logger) Debug(event string, fields map[string]any) {
	e := l.zlog.Debug().Str("event", event)
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(event)
}

// Warn logs a warn-level event with structured fields. Satisfies
// rawdb.Logger so a *Logger can be passed directly as rawdb.Config.Logger.
func (l *Logger) Warn(event string, fields map[string]any) {
	e := l.zlog.Warn().Str("event", event)
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(event)
}

// Error logs an error message.
func (l *Logger) Error(msg string) *zerolog.Event {
	return l.zlog.Error().Str("msg", msg)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(msg string) *zerolog.Event {
	return l.zlog.Fatal().Str("msg", msg)
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// RegionLogger returns a logger scoped to region-store operations.
func (l *Logger) RegionLogger(regionName string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "rawdb").
			Str("region", regionName).
			Logger(),
	}
}

// VectorLogger returns a logger scoped to typed-vector operations.
func (l *Logger) VectorLogger(vecName string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "vecdb").
			Str("vector", vecName).
			Logger(),
	}
}

// LogVectorWrite logs a completed vector write with structured fields.
func (l *Logger) LogVectorWrite(vecName string, duration time.Duration, elementCount int, err error) {
	event := l.zlog.Debug().
		Str("component", "vecdb").
		Str("vector", vecName).
		Dur("duration_ms", duration).
		Int("elements", elementCount)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "vecdb").
			Str("vector", vecName).
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("vector write completed")
}

// LogRegionGrow logs a region growth event.
func (l *Logger) LogRegionGrow(regionName string, oldCapacity, newCapacity uint64, relocated bool) {
	l.zlog.Debug().
		Str("component", "rawdb").
		Str("region", regionName).
		Uint64("old_capacity", oldCapacity).
		Uint64("new_capacity", newCapacity).
		Bool("relocated", relocated).
		Msg("region grown")
}

// LogDatabaseOpen logs database startup.
func (l *Logger) LogDatabaseOpen(dir string, regionCount int) {
	l.zlog.Info().
		Str("event", "database_open").
		Str("dir", dir).
		Int("regions", regionCount).
		Msg("vecdb database opened")
}

// LogDatabaseClose logs database shutdown.
func (l *Logger) LogDatabaseClose(dir string) {
	l.zlog.Info().
		Str("event", "database_close").
		Str("dir", dir).
		Msg("vecdb database closed")
}

// Global logger instance.
var globalLogger *Logger

// InitGlobalLogger initializes the global logger.
func InitGlobalLogger(cfg Config) {
	globalLogger = NewLogger(cfg)
	log.Logger = *globalLogger.GetZerolog()
}

// GetGlobalLogger returns the global logger instance.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		InitGlobalLogger(Config{
			Level:  "info",
			Pretty: true,
		})
	}
	return globalLogger
}
