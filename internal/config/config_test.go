package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TVIEWER_CONFIG", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "#1e1e2e", c.Viewer.Background)
	assert.Equal(t, "h", c.Viewer.HelpKey)
	assert.Equal(t, 30*time.Millisecond, c.Viewer.Tick)
	assert.Empty(t, c.Viewer.Show)
	assert.Equal(t, "space", c.Keys.NextLabel)
	assert.Equal(t, filepath.Join(home, ".config", "tviewer", "camera.toml"), c.Camera.Path)
	assert.Equal(t, filepath.Join(home, ".local", "share", "tviewer", "selections.db"), c.Store.Path)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 10, c.Log.MaxSize)
	assert.Empty(t, c.Replay.Script)
}

func TestLoadPriority(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "tviewer")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
clouds = ["room=/data/room.xyz"]

[viewer]
background = "#000000"
tick = "50ms"
hide = ["noise"]

[keys]
next_label = "l"
done = "d"

[log]
level = "debug"
`), 0o600))
	t.Setenv("TVIEWER_KEYS_DONE", "x")

	c, err := Load([]string{"--background", "#ff0000", "--show", "a,b", "--cloud", "tree=t.xyz"})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", c.Viewer.Background, "flags beat the file")
	assert.Equal(t, 50*time.Millisecond, c.Viewer.Tick)
	assert.Equal(t, []string{"a", "b"}, c.Viewer.Show)
	assert.Equal(t, []string{"noise"}, c.Viewer.Hide)
	assert.Equal(t, "l", c.Keys.NextLabel)
	assert.Equal(t, "x", c.Keys.Done, "env beats the file")
	assert.Equal(t, "debug", c.Log.Level)

	specs, err := c.CloudSpecs()
	require.NoError(t, err)
	assert.Equal(t, []CloudSpec{{Name: "tree", Path: "t.xyz"}}, specs)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store]\npath = \"/tmp/s.db\"\n"), 0o600))

	c, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/s.db", c.Store.Path)

	_, err = Load([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	require.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	isolate(t)

	_, err := Load([]string{"--background", "purple"})
	require.Error(t, err)

	_, err = Load([]string{"--cloud", "no-separator"})
	require.Error(t, err)

	_, err = Load([]string{"--no-such-flag"})
	require.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#f38ba8")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xf3, G: 0x8b, B: 0xa8, A: 0xff}, c)

	c, err = ParseColor("fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)

	_, err = ParseColor("#12")
	require.Error(t, err)
}
