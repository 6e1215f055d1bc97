// Package logger builds the *zap.SugaredLogger instances used throughout
// this module, so that every package logs with the same field conventions
// (namespace, role, segment path) instead of each component rolling its own.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the logger is constructed.
type Config struct {
	// Development enables human-readable, color-free console output and
	// disables sampling, matching zap's NewDevelopment defaults.
	Development bool

	// Level sets the minimum enabled log level. Defaults to InfoLevel.
	Level zapcore.Level
}

// New builds a *zap.SugaredLogger according to Config. A nil Config yields
// a production-style logger at InfoLevel.
func New(config *Config) (*zap.SugaredLogger, error) {
	if config == nil {
		config = &Config{Level: zapcore.InfoLevel}
	}

	var cfg zap.Config
	if config.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(config.Level)

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return base.Sugar(), nil
}

// Noop returns a logger that discards everything, useful in tests that
// don't want to assert on log output but still need a non-nil logger.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Named returns a child logger tagged with the given component name plus
// the namespace/role pair this module logs against almost everywhere.
func Named(log *zap.SugaredLogger, component, namespace, role string) *zap.SugaredLogger {
	return log.Named(component).With("namespace", namespace, "role", role)
}
