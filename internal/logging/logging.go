// Package logging builds the zap logger shared by the CLI and the server
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration
type Config struct {
	Level       string
	Format      string // "json" or "console"
	OutputPath  string
	Development bool
}

// New creates a logger. Unknown levels fall back to info.
func New(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapConfig.Encoding = "json"
	}

	// stdout carries command output
	zapConfig.OutputPaths = []string{"stderr"}
	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	return zapConfig.Build()
}

// NewDefault creates a console logger at info level, falling back to a
// no-op logger if construction fails
func NewDefault() *zap.Logger {
	logger, err := New(Config{Level: "info", Format: "console"})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
