package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "voice-assistant"

// Log is the process logger. It discards everything until Init runs, so
// packages and tests can log without setup.
var Log = zap.NewNop()

// Init builds the process logger. Production writes JSON with ISO8601
// timestamps; other environments use the colored console encoder. An unknown
// level falls back to info. Every entry carries the service and environment.
func Init(level string, env string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "ts"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     env,
	}

	built, err := config.Build()
	if err != nil {
		return err
	}

	Log = built
	return nil
}

// Named returns a child of the process logger for one component, such as
// "http", "voice" or "providers"
func Named(component string) *zap.Logger {
	return Log.Named(component)
}

func Sync() {
	_ = Log.Sync()
}
