// Package term is a terminal window for the viewer. Clouds are drawn with an
// orthographic projection into a character grid, points are picked with the
// mouse and the camera moves with the arrow and zoom keys.
package term

import (
	"image/color"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/tviewer/internal/scene"
	"github.com/jask/tviewer/internal/viewer"
)

const eventBuffer = 256

// Renderer implements viewer.Renderer on top of a bubbletea program. The
// program runs on its own goroutine; window events are queued and handed to
// the viewer one per SpinOnce.
type Renderer struct {
	scene    *scene.Scene
	program  *tea.Program
	progOpts []tea.ProgramOption
	events   chan event
	done     chan struct{}
	runErr   error
	started  bool
	closed   bool
	pending  []string
	onKey    func(viewer.KeyEvent)
	onPick   func(viewer.PickEvent)
	log      *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// WithProgramOptions passes extra options to the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(r *Renderer) { r.progOpts = append(r.progOpts, opts...) }
}

// New returns a window drawing s. Call Start to open it.
func New(s *scene.Scene, opts ...Option) *Renderer {
	r := &Renderer{
		scene:  s,
		events: make(chan event, eventBuffer),
		done:   make(chan struct{}),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	s.OnChange(r.pushFrame)
	return r
}

// Start opens the window. Console output written before Start is shown once
// the window is up.
func (r *Renderer) Start() {
	if r.started {
		return
	}
	m := newModel(r.scene.Snapshot(), r.events)
	for _, s := range r.pending {
		m = m.appendConsole(s)
	}
	r.pending = nil

	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, r.progOpts...)
	r.program = tea.NewProgram(m, opts...)
	r.started = true
	go func() {
		defer close(r.done)
		if _, err := r.program.Run(); err != nil {
			r.runErr = err
		}
	}()
	r.log.Info("window opened")
}

// Close shuts the window and waits for the terminal to be restored.
func (r *Renderer) Close() error {
	r.closed = true
	if !r.started {
		return nil
	}
	r.program.Quit()
	<-r.done
	return r.runErr
}

// Err returns the error the window stopped with, if any.
func (r *Renderer) Err() error {
	select {
	case <-r.done:
		return r.runErr
	default:
		return nil
	}
}

func (r *Renderer) pushFrame() {
	if !r.started {
		return
	}
	r.program.Send(frameMsg(r.scene.Snapshot()))
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
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-r.events:
		r.handle(ev)
	case <-r.done:
		r.closed = true
		if r.runErr != nil {
			r.log.Error("window stopped", zap.Error(r.runErr))
		}
	case <-timer.C:
	}
}

func (r *Renderer) handle(ev event) {
	switch ev.kind {
	case eventKey:
		if r.onKey != nil {
			r.onKey(viewer.KeyEvent{Key: ev.key})
		}
	case eventPick:
		if r.onPick != nil {
			r.onPick(ev.pick)
		}
	case eventCamera:
		r.scene.SetCamera(ev.camera(r.scene.Camera()))
	case eventClose:
		r.log.Info("window closed by user")
		r.closed = true
	}
}

// Closed implements viewer.Renderer.
func (r *Renderer) Closed() bool { return r.closed }

// SaveCamera implements viewer.Renderer.
func (r *Renderer) SaveCamera(path string) error { return r.scene.SaveCamera(path) }

// LoadCamera implements viewer.Renderer.
func (r *Renderer) LoadCamera(path string) error { return r.scene.LoadCamera(path) }

// SetBackgroundColor implements viewer.Renderer.
func (r *Renderer) SetBackgroundColor(c color.RGBA) { r.scene.SetBackground(c) }

// Console implements viewer.Renderer. Output goes to the console pane.
func (r *Renderer) Console() io.Writer { return consoleWriter{r} }

type consoleWriter struct{ r *Renderer }

func (w consoleWriter) Write(p []byte) (int, error) {
	if !w.r.started {
		w.r.pending = append(w.r.pending, string(p))
		return len(p), nil
	}
	w.r.program.Send(consoleMsg(p))
	return len(p), nil
}

var _ viewer.Renderer = (*Renderer)(nil)
