package riftplot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.DebounceWindow())
	assert.Equal(t, [3]float64{2, 2, 2}, cfg.Camera.Position)
	assert.Equal(t, ColorWhite, cfg.RenderStyle().ClearColor)
}

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "riftplot.yaml")
	cfg := DefaultConfig()
	cfg.Window.Title = "plots"
	cfg.Editor.Debounce = "250ms"
	cfg.Stereo.Enabled = false
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, 250*time.Millisecond, loaded.DebounceWindow())
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riftplot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  width: 800\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, DefaultFov, cfg.Camera.Fov)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riftplot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [oops"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("RIFTPLOT_DEBOUNCE", "300ms")
	t.Setenv("RIFTPLOT_STEREO", "false")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceWindow())
	assert.False(t, cfg.Stereo.Enabled)
}

func TestConfigEnvOverrideInvalid(t *testing.T) {
	t.Setenv("RIFTPLOT_STEREO", "sometimes")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Width = 0
	cfg.Editor.Debounce = "soon"
	cfg.Camera.Far = 0
	cfg.Render.ClearColor = "blue-ish"
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"window size", "editor.debounce", "camera near", "render.clear_color"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDebounceWindowFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Editor.Debounce = "-1s"
	assert.Equal(t, DefaultDebounce, cfg.DebounceWindow())
}
