package playback

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/tviewer/internal/scene"
	"github.com/jask/tviewer/internal/viewer"
)

const selectScript = `
[[step]]
pick = { object = "line", index = 0 }

[[step]]
pick = { object = "line", index = 2 }

[[step]]
key = "space"

[[step]]
pick = { object = "line", index = 3 }

[[step]]
key = "enter"
`

func linePoints(n int) []scene.Point {
	pts := make([]scene.Point, n)
	for i := range pts {
		pts[i] = scene.Point{X: float32(i), Y: 0, Z: 0, Color: color.RGBA{R: uint8(i * 10), A: 255}}
	}
	return pts
}

func newViewer(t *testing.T, script string) (*viewer.Viewer, *Renderer, *bytes.Buffer) {
	t.Helper()
	steps, err := ParseScript(script)
	require.NoError(t, err)

	s := scene.New()
	var out bytes.Buffer
	r := New(s, steps, WithConsole(&out))
	v, err := viewer.New(r)
	require.NoError(t, err)
	require.NoError(t, v.Add(scene.NewStaticCloud(s, "line", linePoints(5)), true, false))
	return v, r, &out
}

func TestParseScriptRejectsAmbiguousSteps(t *testing.T) {
	_, err := ParseScript("[[step]]\nkey = \"a\"\nclose = true\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")

	_, err = ParseScript("[[step]]\n")
	require.Error(t, err)

	_, err = ParseScript("[[step]\n")
	require.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte(selectScript), 0o600))

	steps, err := LoadScript(path)
	require.NoError(t, err)
	require.Len(t, steps, 5)
	assert.Equal(t, &Pick{Object: "line", Index: 2}, steps[1].Pick)
	assert.Equal(t, "space", steps[2].Key)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestReplayedSelectionUsesScenePoints(t *testing.T) {
	v, r, out := newViewer(t, selectScript)

	sel, err := v.WaitPointsSelected(false)
	require.NoError(t, err)
	assert.Equal(t, "line", sel.Object)
	assert.Equal(t, []viewer.PointXYZL{
		{X: 0, Label: 0},
		{X: 2, Label: 0},
		{X: 3, Label: 1},
	}, sel.Cloud)
	assert.Equal(t, []viewer.PointIndices{{Indices: []int{0, 2}}, {Indices: []int{3}}}, sel.Indices)
	assert.Contains(t, out.String(), "line[2] label 0")
	assert.Zero(t, r.Remaining())
	assert.False(t, r.Closed())
}

func TestReplayClosesWhenExhausted(t *testing.T) {
	v, r, _ := newViewer(t, "[[step]]\nidle = 3\n")

	_, err := v.WaitKey()
	require.ErrorIs(t, err, viewer.ErrWindowClosed)
	assert.True(t, r.Closed())
}

func TestInvalidPicksAreDropped(t *testing.T) {
	script := `
[[step]]
pick = { object = "line", index = 9 }

[[step]]
pick = { object = "ghost", index = 0 }

[[step]]
pick = { object = "line", index = 4 }
`
	v, _, _ := newViewer(t, script)

	got, err := v.WaitPointIndexSelected()
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestPickedColorComesFromCloud(t *testing.T) {
	v, _, _ := newViewer(t, "[[step]]\npick = { object = \"line\", index = 3 }\n")

	c, err := v.WaitPointColorSelected()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 30, A: 255}, c)
}

func TestCameraAndBackgroundGoToScene(t *testing.T) {
	s := scene.New()
	r := New(s, nil)
	path := filepath.Join(t.TempDir(), "cam.toml")

	s.SetCamera(scene.Camera{Yaw: 45, Pitch: 10, Zoom: 2})
	require.NoError(t, r.SaveCamera(path))
	s.SetCamera(scene.DefaultCamera())
	require.NoError(t, r.LoadCamera(path))
	assert.Equal(t, 45.0, s.Camera().Yaw)

	r.SetBackgroundColor(color.RGBA{R: 1, G: 2, B: 3, A: 255})
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, s.Background())
}

func TestSleepRunsOnReplayTime(t *testing.T) {
	steps, err := ParseScript(strings.Repeat("[[step]]\nkey = \"x\"\n", 6))
	require.NoError(t, err)
	r := New(scene.New(), steps)
	v, err := viewer.New(r, viewer.WithTick(25*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	v.Sleep(100 * time.Millisecond)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "unpaced replay does not wait")
	assert.Equal(t, 2, r.Remaining())
	assert.Equal(t, 100*time.Millisecond, r.Now().Sub(time.Time{}))
}
