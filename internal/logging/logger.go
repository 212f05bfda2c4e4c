package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging defaults to info.
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "AVL_LOG_LEVEL"

// Initialize creates the global logger with the specified level.
// If level is empty, it checks the AVL_LOG_LEVEL environment variable,
// defaulting to info when neither is set.
//
// Output goes to stderr so that command output (avl status, avl wire)
// stays clean on stdout. When stderr is a terminal the console encoder
// is used; otherwise logs are emitted as JSON for journald/file capture.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "", "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - fall back to info rather than failing startup
		zapLevel = zapcore.InfoLevel
	}

	interactive := term.IsTerminal(int(os.Stderr.Fd()))

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	if interactive {
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the AVL_LOG_LEVEL
// environment variable.
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized, so library code
		// never panics when used before Initialize.
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogDeviceEvent logs a typed event observed on a device's notification stream.
func LogDeviceEvent(device string, event string) {
	Info("Device event",
		zap.String("device", device),
		zap.String("event", event),
	)
}

// LogProfileChange logs a profile transition requested for a card.
func LogProfileChange(card string, from string, to string) {
	Info("Profile change",
		zap.String("card", card),
		zap.String("from", from),
		zap.String("to", to),
	)
}

// LogLinkChange logs a single link mutation against the live graph.
func LogLinkChange(op string, source string, target string) {
	Info("Link change",
		zap.String("op", op),
		zap.String("source", source),
		zap.String("target", target),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
