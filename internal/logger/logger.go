package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	log  *slog.Logger
	once sync.Once
)

// Options — параметры инициализации логгера.
type Options struct {
	Env    string // "development" -> текст, иначе JSON
	Level  string // debug | info | warn | error
	Output io.Writer
}

// Init инициализирует глобальный логгер
func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     parseLevel(opts.Level, opts.Env),
		AddSource: opts.Env != "test",
	}

	var handler slog.Handler
	if opts.Env == "development" || opts.Env == "test" {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	log = slog.New(handler).With("service", "homefix")
	slog.SetDefault(log)
}

func parseLevel(level, env string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	}
	if env == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// GetLogger возвращает глобальный логгер
func GetLogger() *slog.Logger {
	once.Do(func() {
		if log == nil {
			Init(Options{Env: "development"})
		}
	})
	return log
}

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal логирует ошибку и завершает программу
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// With создает логгер с дополнительными полями
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// WithError создает логгер с полем error
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

// ============================================
// Специализированные логгеры
// ============================================

// DBLog логирует database операцию
func DBLog(operation string, duration time.Duration, err error) {
	fields := []any{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Error("database operation failed", fields...)
	} else {
		GetLogger().Debug("database operation", fields...)
	}
}

// WorkerLog логирует фоновую задачу
func WorkerLog(worker, operation string, affected int64, err error) {
	fields := []any{
		"worker", worker,
		"operation", operation,
		"affected", affected,
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Error("worker operation failed", fields...)
	} else {
		GetLogger().Info("worker operation completed", fields...)
	}
}

// FanoutLog логирует доставку realtime события. Ошибки доставки
// не критичны, поэтому уровень Warn.
func FanoutLog(userID, kind, channel string, err error) {
	fields := []any{
		"recipient", userID,
		"event", kind,
		"channel", channel,
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Warn("event delivery failed", fields...)
	} else {
		GetLogger().Debug("event delivered", fields...)
	}
}

// HTTPLog логирует завершённый HTTP запрос. 5xx — Error, 4xx — Warn.
func HTTPLog(log *slog.Logger, method, path string, status int, duration time.Duration, fields ...any) {
	fields = append([]any{
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	}, fields...)

	switch {
	case status >= 500:
		log.Error("HTTP server error", fields...)
	case status >= 400:
		log.Warn("HTTP client error", fields...)
	default:
		log.Info("HTTP request", fields...)
	}
}
