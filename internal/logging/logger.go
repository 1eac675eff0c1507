// Package logging builds the zap logger every component writes to. Entries
// go to .secureaware/logs/secureaware.log as JSON, rotated by lumberjack, so
// learners can inspect failures after the TUI exits.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kingrea/secureaware/internal/config"
)

// Options configures New.
type Options struct {
	// File is the JSON log destination. Empty disables the file core.
	File string
	// Level is one of debug, info, warn, error.
	Level string
	// Console mirrors entries to Stderr in console format.
	Console bool
	// Stderr overrides the console destination (defaults to os.Stderr).
	Stderr io.Writer
}

// Logger owns the zap logger and the rotating file behind it.
type Logger struct {
	*zap.Logger
	file *lumberjack.Logger
}

// FromConfig builds the logger described by config.yaml.
func FromConfig(cfg *config.Config) (*Logger, error) {
	return New(Options{
		File:    cfg.LogFile(),
		Level:   cfg.Settings.Logging.Level,
		Console: cfg.Settings.Logging.Console,
	})
}

// New creates the logger. The log directory is created when needed.
func New(opts Options) (*Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	out := &Logger{}
	var cores []zapcore.Core
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		out.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(out.file), level))
	}
	if opts.Console {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), level))
	}
	if len(cores) == 0 {
		out.Logger = zap.NewNop()
		return out, nil
	}
	out.Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	return out, nil
}

// Close flushes buffered entries and releases the log file.
func (l *Logger) Close() error {
	if l == nil || l.Logger == nil {
		return nil
	}
	_ = l.Logger.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
