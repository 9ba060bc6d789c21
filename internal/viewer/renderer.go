package viewer

import (
	"image/color"
	"io"
	"time"
)

// Renderer is the window and event source a Viewer drives.
type Renderer interface {
	// SetHandlers installs the callbacks invoked for key presses and point
	// picks. Handlers are only ever invoked from within SpinOnce.
	SetHandlers(onKey func(KeyEvent), onPick func(PickEvent))

	// SpinOnce processes pending window events, waiting at most timeout
	// for one to arrive.
	SpinOnce(timeout time.Duration)

	// Closed reports whether the window has been closed.
	Closed() bool

	SaveCamera(path string) error
	LoadCamera(path string) error
	SetBackgroundColor(c color.RGBA)

	// Console is where help text and prompts are printed.
	Console() io.Writer
}

// Clock is implemented by renderers that keep their own notion of time, such
// as a scripted replay that does not wait out idle ticks. Sleep measures
// against it when present and against the wall clock otherwise.
type Clock interface {
	Now() time.Time
}
