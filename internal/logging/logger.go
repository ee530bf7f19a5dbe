// Package logging is the structured logger used across chipmap. Components
// take a Logger through their constructors; only this package imports zap.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// String constructs a string field.
func String(key, val string) Field { return Field{Key: key, Value: val} }

// Int constructs an int field.
func Int(key string, val int) Field { return Field{Key: key, Value: val} }

// Strings constructs a string slice field.
func Strings(key string, val []string) Field { return Field{Key: key, Value: val} }

// Err records err under the "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Logger is the logging contract handed to every component.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger that adds fields to every entry.
	With(fields ...Field) Logger
	// Named returns a child logger with name appended to the logger name.
	Named(name string) Logger
}

// LogConfig controls NewLogger.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Anything else means info.
	Level string `mapstructure:"level" yaml:"level"`
	// Format is "console" or "json". Anything else means console.
	Format string `mapstructure:"format" yaml:"format"`
	// OutputPaths defaults to stderr so diagnostics never mix with command output.
	OutputPaths []string `mapstructure:"output_paths" yaml:"output_paths"`
}

type zapLogger struct {
	z *zap.Logger
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case []string:
			out = append(out, zap.Strings(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, toZapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(toZapFields(fields)...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// NewLogger builds a zap-backed Logger from cfg.
func NewLogger(cfg LogConfig) (Logger, error) {
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = []string{"stderr"}
	}

	encoding := "console"
	encCfg := zap.NewDevelopmentEncoderConfig()
	if strings.EqualFold(cfg.Format, "json") {
		encoding = "json"
		encCfg = zap.NewProductionEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	z, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return &zapLogger{z: z}, nil
}

// NewLoggerFromCore wraps an existing core. Tests use it with zaptest/observer.
func NewLoggerFromCore(core zapcore.Core) Logger {
	return &zapLogger{z: zap.New(core)}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (n nopLogger) With(...Field) Logger { return n }
func (n nopLogger) Named(string) Logger  { return n }

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger { return nopLogger{} }

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
