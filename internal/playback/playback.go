// Package playback is a headless renderer that replays a scripted sequence
// of key presses and point picks. It drives automated runs of the viewer and
// its tests.
package playback

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/jask/tviewer/internal/scene"
	"github.com/jask/tviewer/internal/viewer"
)

// Pick selects point Index of Object. Coordinates are taken from the scene.
type Pick struct {
	Object string `toml:"object"`
	Index  int    `toml:"index"`
}

// Step is one scripted event. Exactly one of the fields is expected to be
// set; Idle is a number of ticks without events.
type Step struct {
	Key   string `toml:"key"`
	Pick  *Pick  `toml:"pick"`
	Idle  int    `toml:"idle"`
	Close bool   `toml:"close"`
}

type script struct {
	Steps []Step `toml:"step"`
}

// ParseScript decodes a TOML script made of [[step]] tables.
func ParseScript(data string) ([]Step, error) {
	var s script
	if _, err := toml.Decode(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		n := 0
		if st.Key != "" {
			n++
		}
		if st.Pick != nil {
			n++
		}
		if st.Idle > 0 {
			n++
		}
		if st.Close {
			n++
		}
		if n != 1 {
			return nil, fmt.Errorf("step %d: want exactly one of key, pick, idle, close", i+1)
		}
	}
	return s.Steps, nil
}

// LoadScript reads a script file.
func LoadScript(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	steps, err := ParseScript(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

// Renderer replays steps against a scene, one event per SpinOnce. When the
// script is exhausted the window closes.
type Renderer struct {
	scene   *scene.Scene
	steps   []Step
	idle    int
	onKey   func(viewer.KeyEvent)
	onPick  func(viewer.PickEvent)
	closed  bool
	pace    bool
	elapsed time.Duration
	console io.Writer
	log     *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithConsole sets where viewer output goes. The default discards it.
func WithConsole(w io.Writer) Option {
	return func(r *Renderer) { r.console = w }
}

// WithPacing makes SpinOnce sleep for its timeout, so a replay runs at the
// speed of an interactive session.
func WithPacing(enable bool) Option {
	return func(r *Renderer) { r.pace = enable }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// New returns a renderer replaying steps against s.
func New(s *scene.Scene, steps []Step, opts ...Option) *Renderer {
	r := &Renderer{
		scene:   s,
		steps:   append([]Step(nil), steps...),
		console: io.Discard,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetHandlers implements viewer.Renderer.
func (r *Renderer) SetHandlers(onKey func(viewer.KeyEvent), onPick func(viewer.PickEvent)) {
	r.onKey, r.onPick = onKey, onPick
}

// SpinOnce implements viewer.Renderer.
func (r *Renderer) SpinOnce(timeout time.Duration) {
	if r.closed {
		return
	}
	if r.pace {
		time.Sleep(timeout)
	} else {
		r.elapsed += timeout
	}
	if r.idle > 0 {
		r.idle--
		return
	}
	if len(r.steps) == 0 {
		r.closed = true
		return
	}
	st := r.steps[0]
	r.steps = r.steps[1:]
	switch {
	case st.Close:
		r.closed = true
	case st.Idle > 0:
		r.idle = st.Idle - 1
	case st.Key != "":
		if r.onKey != nil {
			r.onKey(viewer.KeyEvent{Key: st.Key})
		}
	case st.Pick != nil:
		r.pick(*st.Pick)
	}
}

// Now implements viewer.Clock. An unpaced replay runs on virtual time that
// advances by the full timeout of every SpinOnce, so Sleep consumes the same
// number of steps whether or not the replay is paced.
func (r *Renderer) Now() time.Time {
	if r.pace {
		return time.Now()
	}
	return time.Time{}.Add(r.elapsed)
}

func (r *Renderer) pick(p Pick) {
	if !r.scene.Visible(p.Object) {
		r.log.Warn("pick on hidden object dropped", zap.String("object", p.Object))
		return
	}
	pts := r.scene.Points(p.Object)
	if p.Index < 0 || p.Index >= len(pts) {
		r.log.Warn("pick out of range dropped", zap.String("object", p.Object), zap.Int("index", p.Index), zap.Int("points", len(pts)))
		return
	}
	pt := pts[p.Index]
	if r.onPick != nil {
		r.onPick(viewer.PickEvent{Object: p.Object, Index: p.Index, X: pt.X, Y: pt.Y, Z: pt.Z})
	}
}

// Remaining returns the number of steps not replayed yet.
func (r *Renderer) Remaining() int { return len(r.steps) }

// Closed implements viewer.Renderer.
func (r *Renderer) Closed() bool { return r.closed }

// Close closes the window.
func (r *Renderer) Close() { r.closed = true }

// SaveCamera implements viewer.Renderer.
func (r *Renderer) SaveCamera(path string) error { return r.scene.SaveCamera(path) }

// LoadCamera implements viewer.Renderer.
func (r *Renderer) LoadCamera(path string) error { return r.scene.LoadCamera(path) }

// SetBackgroundColor implements viewer.Renderer.
func (r *Renderer) SetBackgroundColor(c color.RGBA) { r.scene.SetBackground(c) }

// Console implements viewer.Renderer.
func (r *Renderer) Console() io.Writer { return r.console }

var _ viewer.Renderer = (*Renderer)(nil)
