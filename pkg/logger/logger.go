package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. Init must be called before use; tests
// and libraries that run without Init get a no-op logger.
var Log = zap.NewNop()

// Init configures the global logger with the given level ("debug",
// "info", "warn", "error"). Unknown or empty levels fall back to info.
func Init(level string) {
	var lv zapcore.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = zapcore.DebugLevel
	case "warn", "warning":
		lv = zapcore.WarnLevel
	case "error":
		lv = zapcore.ErrorLevel
	default:
		lv = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lv)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		// keep the no-op logger rather than crash the host process
		return
	}
	Log = l
}

// Sync flushes buffered log entries; call on shutdown.
func Sync() {
	_ = Log.Sync()
}
