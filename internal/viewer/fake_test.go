package viewer

import (
	"bytes"
	"image/color"
	"io"
	"time"
)

// step is one scripted renderer event. A zero step is an idle tick.
type step struct {
	key   string
	pick  *PickEvent
	close bool
	do    func()
}

func press(k string) step { return step{key: k} }

func pick(object string, index int) step {
	return step{pick: &PickEvent{Object: object, Index: index, X: float32(index), Y: float32(index) * 2, Z: 1}}
}

func closeWindow() step { return step{close: true} }

// fakeRenderer replays steps, one per SpinOnce. Once the script is exhausted
// the window reports closed so loops always terminate. Its clock advances by
// the full timeout of every spin.
type fakeRenderer struct {
	steps   []step
	onKey   func(KeyEvent)
	onPick  func(PickEvent)
	closed  bool
	spins   int
	elapsed time.Duration
	bg      color.RGBA
	saved   []string
	loaded  []string
	camErr  error
	console bytes.Buffer
}

func newFakeRenderer(steps ...step) *fakeRenderer {
	return &fakeRenderer{steps: steps}
}

func (r *fakeRenderer) push(steps ...step) { r.steps = append(r.steps, steps...) }

func (r *fakeRenderer) SetHandlers(onKey func(KeyEvent), onPick func(PickEvent)) {
	r.onKey, r.onPick = onKey, onPick
}

func (r *fakeRenderer) SpinOnce(timeout time.Duration) {
	r.spins++
	r.elapsed += timeout
	if len(r.steps) == 0 {
		r.closed = true
		return
	}
	s := r.steps[0]
	r.steps = r.steps[1:]
	switch {
	case s.close:
		r.closed = true
	case s.key != "":
		r.onKey(KeyEvent{Key: s.key})
	case s.pick != nil:
		r.onPick(*s.pick)
	case s.do != nil:
		s.do()
	}
}

func (r *fakeRenderer) Closed() bool { return r.closed }

func (r *fakeRenderer) Now() time.Time { return time.Time{}.Add(r.elapsed) }

func (r *fakeRenderer) SaveCamera(path string) error {
	r.saved = append(r.saved, path)
	return r.camErr
}

func (r *fakeRenderer) LoadCamera(path string) error {
	r.loaded = append(r.loaded, path)
	return r.camErr
}

func (r *fakeRenderer) SetBackgroundColor(c color.RGBA) { r.bg = c }

func (r *fakeRenderer) Console() io.Writer { return &r.console }

// fakeObject records calls and keeps its own visibility.
type fakeObject struct {
	name    string
	visible bool
	updates int
	hides   int
	log     *[]string
}

func newFakeObject(name string) *fakeObject { return &fakeObject{name: name} }

func (o *fakeObject) Name() string { return o.name }

func (o *fakeObject) Show() {
	o.visible = true
	o.record("show " + o.name)
}

func (o *fakeObject) Hide() {
	o.visible = false
	o.hides++
	o.record("hide " + o.name)
}

func (o *fakeObject) Update() {
	o.updates++
	o.record("update " + o.name)
}

func (o *fakeObject) Visible() bool { return o.visible }

func (o *fakeObject) record(s string) {
	if o.log != nil {
		*o.log = append(*o.log, s)
	}
}

// coloredObject adds point colors to fakeObject.
type coloredObject struct {
	*fakeObject
	colors map[int]color.RGBA
}

func (o *coloredObject) PointColor(i int) (color.RGBA, bool) {
	c, ok := o.colors[i]
	return c, ok
}

// recordingListener records the keys it sees.
type recordingListener struct {
	name string
	keys []string
	fn   func(KeyEvent)
}

func (l *recordingListener) Name() string { return l.name }

func (l *recordingListener) HandleKey(ev KeyEvent) bool {
	l.keys = append(l.keys, ev.Key)
	if l.fn != nil {
		l.fn(ev)
	}
	return true
}

func newTestViewer(r *fakeRenderer, opts ...Option) *Viewer {
	v, err := New(r, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// busyRenderer delivers a key on every spin without waiting, the way a
// terminal does while input keeps arriving. It has no clock of its own.
type busyRenderer struct {
	onKey func(KeyEvent)
	spins int
}

func (r *busyRenderer) SetHandlers(onKey func(KeyEvent), _ func(PickEvent)) { r.onKey = onKey }

func (r *busyRenderer) SpinOnce(time.Duration) {
	r.spins++
	r.onKey(KeyEvent{Key: "x"})
}

func (r *busyRenderer) Closed() bool                  { return false }
func (r *busyRenderer) SaveCamera(string) error       { return nil }
func (r *busyRenderer) LoadCamera(string) error       { return nil }
func (r *busyRenderer) SetBackgroundColor(color.RGBA) {}
func (r *busyRenderer) Console() io.Writer            { return io.Discard }
