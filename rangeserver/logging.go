package rangeserver

import (
	sbr "github.com/julik/serve-byte-range"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// SBR_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.LogLevel)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogLookupError(err error) {
	l.Logger.Error("unhandled lookup error", zap.Error(err))
}

func (l zapLogger) LogEmitError(err error) {
	l.Logger.Error("error while emitting body", zap.Error(err))
}

func newZapRangeLogger(l *zap.Logger) sbr.Logger {
	return zapLogger{l.Named("servebyterange").Named("rangeserver")}
}
