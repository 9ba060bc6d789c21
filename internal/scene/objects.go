package scene

import (
	"fmt"
	"image/color"

	"github.com/jask/tviewer/internal/viewer"
)

// Cloud is a point cloud object bound to a scene. Its points come from a
// retrieve function that is called on every Update.
type Cloud struct {
	scene       *Scene
	name        string
	description string
	key         string
	retrieve    func() []Point
	loaded      bool
}

// CloudOption configures a Cloud.
type CloudOption func(*Cloud)

// WithDescription sets the text shown in help output.
func WithDescription(d string) CloudOption {
	return func(c *Cloud) { c.description = d }
}

// WithKey makes the cloud toggle its own visibility when k is pressed.
func WithKey(k string) CloudOption {
	return func(c *Cloud) { c.key = viewer.NormalizeKey(k) }
}

// NewCloud creates a hidden cloud named name in s.
func NewCloud(s *Scene, name string, retrieve func() []Point, opts ...CloudOption) *Cloud {
	c := &Cloud{scene: s, name: name, retrieve: retrieve}
	for _, opt := range opts {
		opt(c)
	}
	s.entry(name, kindCloud)
	return c
}

// NewStaticCloud creates a cloud whose points never change.
func NewStaticCloud(s *Scene, name string, pts []Point, opts ...CloudOption) *Cloud {
	return NewCloud(s, name, func() []Point { return pts }, opts...)
}

func (c *Cloud) Name() string { return c.name }

// Show makes the cloud visible, loading its points on first use.
func (c *Cloud) Show() {
	if !c.loaded {
		c.Update()
	}
	c.scene.setVisible(c.name, true)
}

func (c *Cloud) Hide() { c.scene.setVisible(c.name, false) }

// Update reloads the points from the retrieve function.
func (c *Cloud) Update() {
	var pts []Point
	if c.retrieve != nil {
		pts = c.retrieve()
	}
	c.loaded = true
	c.scene.setPoints(c.name, pts)
}

func (c *Cloud) Visible() bool { return c.scene.Visible(c.name) }

// HandleKey toggles the cloud when its key is pressed.
func (c *Cloud) HandleKey(ev viewer.KeyEvent) bool {
	if c.key == "" || ev.Key != c.key {
		return false
	}
	if c.Visible() {
		c.Hide()
	} else {
		c.Show()
	}
	return true
}

func (c *Cloud) Description() string {
	if c.description == "" {
		return c.name
	}
	return c.description
}

func (c *Cloud) Key() string { return c.key }

// PointColor returns the color of point i.
func (c *Cloud) PointColor(i int) (color.RGBA, bool) {
	pts := c.scene.Points(c.name)
	if i < 0 || i >= len(pts) {
		return color.RGBA{}, false
	}
	return pts[i].Color, true
}

func (c *Cloud) String() string {
	return fmt.Sprintf("cloud %s (%d points)", c.name, len(c.scene.Points(c.name)))
}

// Text is a text overlay drawn on top of the scene.
type Text struct {
	scene  *Scene
	name   string
	render func() string
}

// NewText creates a hidden text overlay whose content is produced by render
// on every Update.
func NewText(s *Scene, name string, render func() string) *Text {
	s.entry(name, kindText)
	return &Text{scene: s, name: name, render: render}
}

func (t *Text) Name() string { return t.name }

func (t *Text) Show() {
	t.Update()
	t.scene.setVisible(t.name, true)
}

func (t *Text) Hide() { t.scene.setVisible(t.name, false) }

func (t *Text) Update() {
	if t.render != nil {
		t.scene.setText(t.name, t.render())
	}
}

func (t *Text) Visible() bool { return t.scene.Visible(t.name) }

var (
	_ viewer.Object       = (*Cloud)(nil)
	_ viewer.Listener     = (*Cloud)(nil)
	_ viewer.PointColorer = (*Cloud)(nil)
	_ viewer.Describer    = (*Cloud)(nil)
	_ viewer.Object       = (*Text)(nil)
)
