package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	s, err := load("", dir)
	require.NoError(t, err)
	require.Equal(t, 6, s.Panels.Count)
	require.Equal(t, 300*time.Millisecond, s.Panels.SearchDelay)
	require.Equal(t, time.Second, s.Panels.WatchDelay)
	require.Equal(t, filepath.Join(dir, "file_tags.json"), s.Tags.Path)
	require.Equal(t, filepath.Join(dir, "workspace.json"), s.Workspace.Path)
	require.Equal(t, "info", s.Log.Level)
	require.Empty(t, s.Metrics.Addr)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
[panels]
count = 3
search_delay = "150ms"

[log]
level = "debug"
`), 0o644))
	t.Setenv("RPANES_PANELS_WATCH_DELAY", "2s")
	t.Setenv("RPANES_METRICS_ADDR", "127.0.0.1:9200")

	s, err := load(cfg, dir)
	require.NoError(t, err)
	require.Equal(t, 3, s.Panels.Count)
	require.Equal(t, 150*time.Millisecond, s.Panels.SearchDelay)
	require.Equal(t, 2*time.Second, s.Panels.WatchDelay)
	require.Equal(t, "debug", s.Log.Level)
	require.Equal(t, "127.0.0.1:9200", s.Metrics.Addr)
}

func TestLoadClampsPanelCount(t *testing.T) {
	t.Setenv("RPANES_PANELS_COUNT", "42")
	s, err := load("", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, MaxPanels, s.Panels.Count)

	t.Setenv("RPANES_PANELS_COUNT", "0")
	s, err = load("", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 1, s.Panels.Count)
}

func TestLoadMissingExplicitFileUsesDefaults(t *testing.T) {
	s, err := load(filepath.Join(t.TempDir(), "absent.toml"), t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 6, s.Panels.Count)
}

func TestLoadMalformedFileFails(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[panels\ncount = "), 0o644))

	_, err := load(cfg, t.TempDir())
	require.Error(t, err)
}
