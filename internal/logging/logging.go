package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Production config (JSON, sampled) for
// env=prod, development config otherwise. Honors LOG_LEVEL
// (debug|info|warn|error); anything unparseable falls back to info.
func New(env string) *zap.Logger {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(Level())
	logger, err := cfg.Build()
	if err != nil {
		// cfg is one of zap's own presets; Build only fails on bad output paths
		return zap.NewNop()
	}
	return logger
}

// Level parses LOG_LEVEL into a zap level, defaulting to info.
func Level() zapcore.Level {
	lvl := zapcore.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := zapcore.ParseLevel(v); err == nil {
			lvl = parsed
		}
	}
	return lvl
}
