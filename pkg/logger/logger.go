package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Gopher0727/Concord/config"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// TraceIDKey is the context key for trace ID
const TraceIDKey contextKey = "trace_id"

// Logger wraps zap.Logger with config-driven construction and trace-id helpers.
type Logger struct {
	*zap.Logger
	file *os.File
}

// NewLogger creates a logger from the logging section of the config.
// Supported levels are debug/info/warn/error/fatal, formats are json/console,
// outputs are stdout/file.
func NewLogger(cfg *config.LoggingConfig) (*Logger, error) {
	level := parseLogLevel(cfg.Level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var writeSyncer zapcore.WriteSyncer
	var file *os.File
	if cfg.Output == "file" {
		var err error
		file, err = os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		writeSyncer = zapcore.AddSync(file)
	} else {
		writeSyncer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return &Logger{Logger: zapLogger, file: file}, nil
}

// NewDevelopmentLogger creates a console logger at debug level.
func NewDevelopmentLogger() (*Logger, error) {
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: zapLogger}, nil
}

// WithTraceID returns a new logger with the trace ID field added.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("trace_id", traceID))}
}

// WithContext extracts the trace ID from the context and returns a logger
// carrying it. If the context has no trace ID, the original logger is returned.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
		return l.WithTraceID(traceID)
	}
	return l
}

// WithFields returns a new logger with the provided fields added.
func (l *Logger) WithFields(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

func parseLogLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes buffered entries and releases the log file, if any.
func (l *Logger) Close() error {
	if err := l.Sync(); err != nil {
		return err
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
