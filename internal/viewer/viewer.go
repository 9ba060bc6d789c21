package viewer

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWindowClosed is returned by waits abandoned because the window closed.
	ErrWindowClosed = errors.New("viewer: window closed")
	// ErrWaitInProgress is returned when a wait is started while another one
	// is active on the same viewer.
	ErrWaitInProgress = errors.New("viewer: another wait is in progress")
	// ErrSelectionCanceled is returned when the user cancels a point selection.
	ErrSelectionCanceled = errors.New("viewer: selection canceled")
	// ErrDuplicateObject is returned by Add for an already registered name.
	ErrDuplicateObject = errors.New("viewer: object already registered")
	// ErrDuplicateListener is returned by AddListener for an already registered name.
	ErrDuplicateListener = errors.New("viewer: listener already registered")
	// ErrNilObject is returned by Add for a nil object.
	ErrNilObject = errors.New("viewer: nil object")
	// ErrNilListener is returned by AddListener for a nil listener.
	ErrNilListener = errors.New("viewer: nil listener")
)

const defaultTick = 30 * time.Millisecond

// waitKind is the interaction state of a Viewer. waitNone is normal dispatch;
// every other value is a blocking wait of that kind.
type waitKind int

const (
	waitNone waitKind = iota
	waitKey
	waitPoint
	waitPoints
	waitYesNo
)

func (k waitKind) String() string {
	switch k {
	case waitNone:
		return "idle"
	case waitKey:
		return "key"
	case waitPoint:
		return "point"
	case waitPoints:
		return "points"
	case waitYesNo:
		return "yes/no"
	default:
		return fmt.Sprintf("waitKind(%d)", int(k))
	}
}

// Viewer routes renderer events to objects, listeners and blocking waits.
type Viewer struct {
	renderer  Renderer
	objects   *objectRegistry
	listeners *listenerRegistry

	lastKey  slot[KeyEvent]
	lastPick slot[PickEvent]
	state    waitKind

	forceShow map[string]bool
	forceHide map[string]bool

	keys    KeyConfig
	tick    time.Duration
	console io.Writer
	log     *zap.Logger
}

// Option configures a Viewer at construction.
type Option func(*Viewer)

// WithForceShow makes the named objects visible when added, whatever the
// caller asks for.
func WithForceShow(names ...string) Option {
	return func(v *Viewer) {
		for _, n := range names {
			if n != "" {
				v.forceShow[n] = true
			}
		}
	}
}

// WithForceHide keeps the named objects hidden when added. It takes
// precedence over WithForceShow.
func WithForceHide(names ...string) Option {
	return func(v *Viewer) {
		for _, n := range names {
			if n != "" {
				v.forceHide[n] = true
			}
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.log = l
		}
	}
}

// WithConsole overrides the renderer console for help text and prompts.
func WithConsole(w io.Writer) Option {
	return func(v *Viewer) {
		if w != nil {
			v.console = w
		}
	}
}

// WithTick sets how long one loop iteration waits for renderer events.
func WithTick(d time.Duration) Option {
	return func(v *Viewer) {
		if d > 0 {
			v.tick = d
		}
	}
}

// WithKeys overrides the built-in keys. Empty fields keep their defaults.
func WithKeys(k KeyConfig) Option {
	return func(v *Viewer) {
		v.keys = k.normalized()
	}
}

// New creates a Viewer driving r.
func New(r Renderer, opts ...Option) (*Viewer, error) {
	if r == nil {
		return nil, errors.New("viewer: nil renderer")
	}
	v := &Viewer{
		renderer:  r,
		objects:   newObjectRegistry(),
		listeners: newListenerRegistry(),
		forceShow: make(map[string]bool),
		forceHide: make(map[string]bool),
		keys:      DefaultKeys(),
		tick:      defaultTick,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.console == nil {
		v.console = r.Console()
	}
	if v.console == nil {
		v.console = io.Discard
	}
	r.SetHandlers(v.keyboardEvent, v.pickEvent)
	return v, nil
}

// Add registers o. With update set the object is refreshed before it is
// registered; with show set it is made visible. Force-show and force-hide
// names configured at construction override show.
func (v *Viewer) Add(o Object, show, update bool) error {
	if o == nil {
		return ErrNilObject
	}
	name := o.Name()
	if _, exists := v.objects.get(name); exists {
		v.log.Warn("object already registered", zap.String("object", name))
		return fmt.Errorf("%w: %q", ErrDuplicateObject, name)
	}
	if update {
		o.Update()
	}
	v.objects.insert(o)
	switch {
	case v.forceHide[name]:
		o.Hide()
	case v.forceShow[name], show:
		o.Show()
	}
	v.log.Debug("object added", zap.String("object", name), zap.Bool("visible", o.Visible()))
	return nil
}

// Remove hides and unregisters the named object.
func (v *Viewer) Remove(name string) {
	o, ok := v.objects.delete(name)
	if !ok {
		v.notFound("object", name, v.objects.names())
		return
	}
	o.Hide()
	v.log.Debug("object removed", zap.String("object", name))
}

// Show makes the named object visible.
func (v *Viewer) Show(name string) {
	if o, ok := v.lookup(name); ok {
		o.Show()
	}
}

// Hide hides the named object.
func (v *Viewer) Hide(name string) {
	if o, ok := v.lookup(name); ok {
		o.Hide()
	}
}

// Update refreshes the named object's content.
func (v *Viewer) Update(name string) {
	if o, ok := v.lookup(name); ok {
		o.Update()
	}
}

// ShowAll shows every registered object in registration order.
func (v *Viewer) ShowAll() {
	for _, o := range v.objects.items {
		o.Show()
	}
}

// HideAll hides every registered object in registration order.
func (v *Viewer) HideAll() {
	for _, o := range v.objects.items {
		o.Hide()
	}
}

// UpdateAll refreshes every registered object in registration order.
func (v *Viewer) UpdateAll() {
	for _, o := range v.objects.items {
		o.Update()
	}
}

// Visible reports whether the named object is registered and visible.
func (v *Viewer) Visible(name string) bool {
	o, ok := v.objects.get(name)
	return ok && o.Visible()
}

// Objects returns the registered object names in registration order.
func (v *Viewer) Objects() []string { return v.objects.names() }

// AddListener registers l. When dependents are given, l only receives key
// events while at least one of the named objects is visible.
func (v *Viewer) AddListener(l Listener, dependents ...string) error {
	if l == nil {
		return ErrNilListener
	}
	if !v.listeners.insert(l, dependents) {
		v.log.Warn("listener already registered", zap.String("listener", l.Name()))
		return fmt.Errorf("%w: %q", ErrDuplicateListener, l.Name())
	}
	v.log.Debug("listener added", zap.String("listener", l.Name()), zap.Strings("dependents", dependents))
	return nil
}

// RemoveListener unregisters the named listener and its dependents.
func (v *Viewer) RemoveListener(name string) {
	if !v.listeners.delete(name) {
		v.notFound("listener", name, v.listeners.names())
		return
	}
	v.log.Debug("listener removed", zap.String("listener", name))
}

// Listeners returns the registered listener names in registration order.
func (v *Viewer) Listeners() []string { return v.listeners.names() }

// SaveCameraParameters writes the renderer camera to path.
func (v *Viewer) SaveCameraParameters(path string) error {
	if err := v.renderer.SaveCamera(path); err != nil {
		return fmt.Errorf("save camera parameters: %w", err)
	}
	return nil
}

// LoadCameraParameters restores the renderer camera from path.
func (v *Viewer) LoadCameraParameters(path string) error {
	if err := v.renderer.LoadCamera(path); err != nil {
		return fmt.Errorf("load camera parameters: %w", err)
	}
	return nil
}

// SetBackgroundColor sets the window background.
func (v *Viewer) SetBackgroundColor(c color.RGBA) {
	v.renderer.SetBackgroundColor(c)
}

// Waiting reports whether a blocking wait is active.
func (v *Viewer) Waiting() bool { return v.state != waitNone }

func (v *Viewer) lookup(name string) (Object, bool) {
	o, ok := v.objects.get(name)
	if !ok {
		v.notFound("object", name, v.objects.names())
	}
	return o, ok
}

func (v *Viewer) notFound(kind, name string, candidates []string) {
	fields := []zap.Field{zap.String(kind, name)}
	if s := closest(name, candidates); s != "" {
		fields = append(fields, zap.String("closest", s))
	}
	v.log.Debug(kind+" not registered", fields...)
}
