// Package scene holds the renderer-side state of a tviewer window: named
// entries with their visibility and data, the camera and the background.
//
// A Scene is owned by the goroutine driving the viewer loop. Renderers read
// it through Snapshot, which returns a value safe to hand to another
// goroutine.
package scene

import "image/color"

// Point is a colored 3D point.
type Point struct {
	X, Y, Z float32
	Color   color.RGBA
}

type entryKind int

const (
	kindCloud entryKind = iota
	kindText
)

type entry struct {
	name    string
	kind    entryKind
	visible bool
	points  []Point
	text    string
}

// Scene is the set of entries a renderer draws.
type Scene struct {
	entries    []*entry
	index      map[string]*entry
	camera     Camera
	background color.RGBA
	version    uint64
	onChange   func()
}

// New returns an empty scene with the default camera.
func New() *Scene {
	return &Scene{
		index:      make(map[string]*entry),
		camera:     DefaultCamera(),
		background: color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff},
	}
}

// OnChange registers fn to run after every mutation.
func (s *Scene) OnChange(fn func()) { s.onChange = fn }

func (s *Scene) changed() {
	s.version++
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Scene) entry(name string, kind entryKind) *entry {
	if e, ok := s.index[name]; ok {
		return e
	}
	e := &entry{name: name, kind: kind}
	s.entries = append(s.entries, e)
	s.index[name] = e
	return e
}

func (s *Scene) setVisible(name string, visible bool) {
	e, ok := s.index[name]
	if !ok || e.visible == visible {
		return
	}
	e.visible = visible
	s.changed()
}

func (s *Scene) setPoints(name string, pts []Point) {
	e := s.entry(name, kindCloud)
	e.points = pts
	s.changed()
}

func (s *Scene) setText(name, text string) {
	e := s.entry(name, kindText)
	e.text = text
	s.changed()
}

// Visible reports whether the named entry exists and is shown.
func (s *Scene) Visible(name string) bool {
	e, ok := s.index[name]
	return ok && e.visible
}

// Points returns the points of the named cloud.
func (s *Scene) Points(name string) []Point {
	if e, ok := s.index[name]; ok {
		return e.points
	}
	return nil
}

// Camera returns the current camera.
func (s *Scene) Camera() Camera { return s.camera }

// SetCamera replaces the camera.
func (s *Scene) SetCamera(c Camera) {
	s.camera = c.normalized()
	s.changed()
}

// Background returns the background color.
func (s *Scene) Background() color.RGBA { return s.background }

// SetBackground sets the background color.
func (s *Scene) SetBackground(c color.RGBA) {
	s.background = c
	s.changed()
}

// Version increases with every mutation.
func (s *Scene) Version() uint64 { return s.version }

// EntrySnapshot is a read-only view of one entry.
type EntrySnapshot struct {
	Name    string
	Cloud   bool
	Visible bool
	Points  []Point
	Text    string
}

// Snapshot is a read-only view of a scene.
type Snapshot struct {
	Entries    []EntrySnapshot
	Camera     Camera
	Background color.RGBA
	Version    uint64
}

// Snapshot copies the scene state. Point slices are shared: clouds replace
// their slice on update and never modify it in place.
func (s *Scene) Snapshot() Snapshot {
	out := Snapshot{
		Entries:    make([]EntrySnapshot, 0, len(s.entries)),
		Camera:     s.camera,
		Background: s.background,
		Version:    s.version,
	}
	for _, e := range s.entries {
		out.Entries = append(out.Entries, EntrySnapshot{
			Name:    e.name,
			Cloud:   e.kind == kindCloud,
			Visible: e.visible,
			Points:  e.points,
			Text:    e.text,
		})
	}
	return out
}

// VisiblePoints calls fn for every point of every visible cloud.
func (sn Snapshot) VisiblePoints(fn func(object string, index int, p Point)) {
	for _, e := range sn.Entries {
		if !e.Cloud || !e.Visible {
			continue
		}
		for i, p := range e.Points {
			fn(e.Name, i, p)
		}
	}
}

// Names returns the entry names in creation order.
func (s *Scene) Names() []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.name)
	}
	return out
}
