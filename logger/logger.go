package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// Flag to track if JSON output is enabled
	JSONOutput bool
)

func init() {
	// No-op until Initialize runs so library callers never hit a nil logger
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. Verbosity is the -v flag count.
func Initialize(jsonOutput bool, verbosity int) error {
	l, err := New(zapcore.AddSync(os.Stderr), jsonOutput, verbosity)
	if err != nil {
		return err
	}
	JSONOutput = jsonOutput
	Logger = l
	return nil
}

// New builds a logger writing to w without touching the global instance.
// Console output goes through the minimal encoder, JSON output through
// zap's production encoder.
func New(w zapcore.WriteSyncer, jsonOutput bool, verbosity int) (*zap.SugaredLogger, error) {
	level := zap.NewAtomicLevelAt(VerbosityToLevel(verbosity))

	if jsonOutput {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), w, level)
		return zap.New(core).Sugar(), nil
	}

	if theme := os.Getenv("JABSC_LOG_THEME"); theme != "" {
		SetTheme(theme)
	}
	core := zapcore.NewCore(newMinimalEncoder(), w, level)
	return zap.New(core).Sugar(), nil
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Infow logs an info message with structured fields
func Infow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, keysAndValues...)
	}
}

// Warnw logs a warning message with structured fields
func Warnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, keysAndValues...)
	}
}

// Errorw logs an error message with structured fields
func Errorw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Errorw(msg, keysAndValues...)
	}
}

// Debugw logs a debug message with structured fields
func Debugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Debugw(msg, keysAndValues...)
	}
}
