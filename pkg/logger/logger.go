package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"strings"
)

// Interface is the interface all loggers have to implement
type Interface interface {
	Error(message string, err error)
	Warning(message string, err error)
	Info(message string)
	Debug(message string)
	Fatal(err error)
}

// Logger is the default logger, backed by zap
type Logger struct {
	zap *zap.Logger
}

// New builds a Logger writing JSON in production and console output otherwise
func New(production bool, level string) (*Logger, error) {
	var config zap.Config
	if production {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	config.Level = zap.NewAtomicLevelAt(parseLevel(level))

	z, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &Logger{zap: z}, nil
}

// NewNop builds a Logger that discards everything, used in tests
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
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

// Error is for throwing a log message with status Error
func (l *Logger) Error(message string, err error) {
	l.zap.Error(message, zap.Error(err))
}

// Warning is for throwing a log message with status Warning
func (l *Logger) Warning(message string, err error) {
	if err == nil {
		l.zap.Warn(message)
		return
	}
	l.zap.Warn(message, zap.Error(err))
}

// Info is for throwing a log message with status Info
func (l *Logger) Info(message string) {
	l.zap.Info(message)
}

// Debug is for throwing a log message with status Debug
func (l *Logger) Debug(message string) {
	l.zap.Debug(message)
}

// Fatal is for throwing a log message with status Fatal
func (l *Logger) Fatal(err error) {
	l.zap.Fatal("fatal error", zap.Error(err))
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Close flushes the logger, it stays usable afterwards
func (l *Logger) Close() error {
	return l.Sync()
}
