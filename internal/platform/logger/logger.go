package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap with the process-wide configuration.
type Logger struct {
	*zap.Logger
	config *Config
}

var (
	globalLogger *Logger
	once         sync.Once
)

// New initializes the global logger based on configuration. It is designed
// to be called once; subsequent calls return the existing instance.
func New() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()

		var zapConfig zap.Config
		if cfg.Level == "debug" {
			zapConfig = zap.NewDevelopmentConfig()
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapConfig = zap.NewProductionConfig()
			zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}

		if err := zapConfig.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Invalid LOG_LEVEL '%s', defaulting to 'info'. Error: %v\n", cfg.Level, err)
			zapConfig.Level.SetLevel(zapcore.InfoLevel)
		}

		if cfg.Format == "console" || cfg.Format == "text" {
			zapConfig.Encoding = "console"
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapConfig.Encoding = "json"
		}

		l, err := zapConfig.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing zap logger: %v. Falling back to production defaults.\n", err)
			l, _ = zap.NewProduction()
		}

		globalLogger = &Logger{Logger: l, config: cfg}
	})
	return globalLogger
}

// Named adds a new path segment to the logger's name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), config: l.config}
}

// With adds structured context to the logger.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), config: l.config}
}
