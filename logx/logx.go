// Package logx provides Chigraph's structured logging, following the
// wrapper shape of trpc-agent-go's log package: a small interface over
// go.uber.org/zap's SugaredLogger, a package-level Default, and a
// SetLevel helper. Compiler code logs through this interface rather than
// calling zap directly, so the backend can be swapped in tests.
package logx

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names accepted by SetLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Logger is the logging surface used throughout Chigraph's core packages.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// With returns a derived Logger carrying the given structured fields
	// on every subsequent call (module, function, node, etc.).
	With(kv ...any) Logger
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	CallerKey:      "caller",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

type sugarLogger struct {
	s *zap.SugaredLogger
}

func newSugarLogger() *sugarLogger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stderr), level)
	return &sugarLogger{s: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}
}

func (l *sugarLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l *sugarLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *sugarLogger) Warnf(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *sugarLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }

func (l *sugarLogger) With(kv ...any) Logger {
	return &sugarLogger{s: l.s.With(kv...)}
}

// Default is the package-level Logger used when no other is supplied.
// Replace it (e.g. in tests) with any Logger implementation.
var Default Logger = newSugarLogger()

// SetLevel adjusts Default's minimum emitted level.
func SetLevel(lvl string) {
	switch lvl {
	case LevelDebug:
		level.SetLevel(zapcore.DebugLevel)
	case LevelInfo:
		level.SetLevel(zapcore.InfoLevel)
	case LevelWarn:
		level.SetLevel(zapcore.WarnLevel)
	case LevelError:
		level.SetLevel(zapcore.ErrorLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// Nop is a Logger that discards everything, for quiet tests.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Infof(string, ...any)  {}
func (Nop) Warnf(string, ...any)  {}
func (Nop) Errorf(string, ...any) {}
func (n Nop) With(...any) Logger  { return n }
