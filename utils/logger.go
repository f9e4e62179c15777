package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	s *zap.SugaredLogger
}

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	Level string
	// File receives a copy of every entry in addition to stdout. Empty disables it.
	File string
}

// NewLogger creates a Logger writing console output to stdout and,
// when opts.File is set, to that file as well.
func NewLogger(opts LoggerOptions) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(opts.Level))
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err == nil {
			cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
		}
	}

	l, err := cfg.Build()
	if err != nil {
		// Unwritable log file: fall back to stdout only.
		cfg.OutputPaths = []string{"stdout"}
		l, _ = cfg.Build()
	}
	return &Logger{s: l.Sugar()}
}

// NewTestLogger routes output through t.Log.
func NewTestLogger(t testing.TB) *Logger {
	return &Logger{s: zaptest.NewLogger(t).Sugar()}
}

// NewNopLogger discards everything.
func NewNopLogger() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// With returns a child Logger that tags every entry with key=value.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{s: l.s.With(key, value)}
}

func (l *Logger) Info(format string, args ...any) {
	l.s.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.s.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.s.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.s.Debugf(format, args...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.s.Sync()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
