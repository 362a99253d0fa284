// Package config loads settings and persists panel workspaces.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxPanels is the largest supported panel count.
const MaxPanels = 9

// Settings holds application configuration.
type Settings struct {
	Panels    PanelSettings
	Tags      TagSettings
	Workspace WorkspaceSettings
	Log       LogSettings
	Metrics   MetricsSettings
}

// PanelSettings sizes the panel grid and its debounce windows.
type PanelSettings struct {
	Count       int
	SearchDelay time.Duration `mapstructure:"search_delay"`
	WatchDelay  time.Duration `mapstructure:"watch_delay"`
}

// TagSettings locates the tag store.
type TagSettings struct {
	Path string
}

// WorkspaceSettings locates the workspace file.
type WorkspaceSettings struct {
	Path string
}

// LogSettings configures zap.
type LogSettings struct {
	Level  string
	Format string
	Output string
}

// MetricsSettings configures the optional Prometheus endpoint. An empty Addr
// disables it.
type MetricsSettings struct {
	Addr string
}

// DataDir returns the per-user directory holding rpanes state.
func DataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "rpanes")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "rpanes")
}

// Load reads configuration from file and env. Env var overrides use prefix
// RPANES_; RPANES_CONFIG points at an explicit config file.
func Load() (Settings, error) {
	return load(os.Getenv("RPANES_CONFIG"), DataDir())
}

func load(cfgPath, dataDir string) (Settings, error) {
	v := viper.New()

	v.SetDefault("panels.count", 6)
	v.SetDefault("panels.search_delay", 300*time.Millisecond)
	v.SetDefault("panels.watch_delay", time.Second)
	v.SetDefault("tags.path", filepath.Join(dataDir, "file_tags.json"))
	v.SetDefault("workspace.path", filepath.Join(dataDir, "workspace.json"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", filepath.Join(dataDir, "rpanes.log"))
	v.SetDefault("metrics.addr", "")

	v.SetConfigType("toml")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(dataDir)
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("RPANES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return Settings{}, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	s.normalize()
	return s, nil
}

func (s *Settings) normalize() {
	if s.Panels.Count < 1 {
		s.Panels.Count = 1
	}
	if s.Panels.Count > MaxPanels {
		s.Panels.Count = MaxPanels
	}
	if s.Panels.SearchDelay <= 0 {
		s.Panels.SearchDelay = 300 * time.Millisecond
	}
	if s.Panels.WatchDelay <= 0 {
		s.Panels.WatchDelay = time.Second
	}
}

// isNotFound matches both a missing search-path config and a missing
// explicit RPANES_CONFIG file.
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
