// Package logging builds the zap logger shared by every component.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // stdout, stderr, or file path; empty discards
}

// New builds a logger from cfg. An empty OutputPath yields a no-op logger,
// since the terminal front-end owns stdout and stderr.
func New(cfg Config) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	if cfg.OutputPath == "" {
		return zap.NewNop(), level, nil
	}

	var config zap.Config
	if cfg.Format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = level
	config.OutputPaths = []string{cfg.OutputPath}
	config.ErrorOutputPaths = []string{cfg.OutputPath}

	if isFilePath(cfg.OutputPath) {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
			return nil, level, err
		}
	}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, level, err
	}
	return logger, level, nil
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Panel tags log lines with a panel id.
func Panel(id string) zap.Field {
	return zap.String("panel", id)
}

// Path tags log lines with a filesystem path.
func Path(p string) zap.Field {
	return zap.String("path", p)
}

// Kind tags log lines with an error kind.
func Kind(k string) zap.Field {
	return zap.String("kind", k)
}

func isFilePath(p string) bool {
	return p != "stdout" && p != "stderr"
}
