// Package logger provides the structured, context-aware logger shared by all modules.
package logger

import (
	"context"
	"io"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the minimum severity a Logger emits.
type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LoggerInterface is what modules depend on. Args are alternating key/value pairs.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// The c variants skip additional caller frames, for helpers that log on behalf of their caller.
	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

// TraceIDFn extracts a trace id from a context. Empty means none.
type TraceIDFn func(ctx context.Context) string

// Logger is a zap-backed LoggerInterface.
type Logger struct {
	sugar     *zap.SugaredLogger
	traceIDFn TraceIDFn
	closers   []io.Closer
}

var _ LoggerInterface = (*Logger)(nil)

// Option configures optional sinks.
type Option func(*options)

type options struct {
	filePath   string
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
}

// WithRotatingFile tees every entry into a size-rotated file.
func WithRotatingFile(path string, maxSizeMB, maxBackups, maxAgeDays int) Option {
	return func(o *options) {
		o.filePath = path
		o.maxSizeMB = maxSizeMB
		o.maxBackups = maxBackups
		o.maxAgeDays = maxAgeDays
	}
}

// New builds a JSON logger writing to w. A nil traceIDFn reads the OTEL span from ctx.
func New(w io.Writer, level Level, service string, traceIDFn TraceIDFn, opts ...Option) *Logger {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level),
	}

	var closers []io.Closer
	if o.filePath != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   o.filePath,
			MaxSize:    o.maxSizeMB,
			MaxBackups: o.maxBackups,
			MaxAge:     o.maxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileWriter), level))
		closers = append(closers, fileWriter)
	}

	// Two frames: the exported method and log().
	z := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2))
	if service != "" {
		z = z.With(zap.String("service", service))
	}

	if traceIDFn == nil {
		traceIDFn = spanTraceID
	}

	return &Logger{
		sugar:     z.Sugar(),
		traceIDFn: traceIDFn,
		closers:   closers,
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{
		sugar:     zap.NewNop().Sugar(),
		traceIDFn: func(context.Context) string { return "" },
	}
}

func spanTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log(ctx, 0, LevelDebug, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, 0, LevelInfo, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, 0, LevelWarn, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, 0, LevelError, msg, args...)
}

func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, caller, LevelDebug, msg, args...)
}

func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, caller, LevelInfo, msg, args...)
}

func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, caller, LevelWarn, msg, args...)
}

func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, caller, LevelError, msg, args...)
}

func (l *Logger) log(ctx context.Context, caller int, level Level, msg string, args ...any) {
	if !l.sugar.Desugar().Core().Enabled(level) {
		return
	}

	if id := l.traceIDFn(ctx); id != "" {
		args = append(args, "trace_id", id)
	}

	s := l.sugar
	if caller > 0 {
		s = s.WithOptions(zap.AddCallerSkip(caller))
	}

	switch level {
	case LevelDebug:
		s.Debugw(msg, args...)
	case LevelWarn:
		s.Warnw(msg, args...)
	case LevelError:
		s.Errorw(msg, args...)
	default:
		s.Infow(msg, args...)
	}
}

// Sync flushes buffered entries and closes file sinks.
func (l *Logger) Sync() error {
	err := l.sugar.Sync()
	for _, c := range l.closers {
		_ = c.Close()
	}
	return err
}
