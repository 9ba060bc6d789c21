package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/tviewer/internal/scene"
	"github.com/jask/tviewer/internal/viewer"
)

const (
	consoleHeight = 6
	maxConsole    = 200
	pickRadius    = 2

	yawStep   = 10
	pitchStep = 10
	zoomStep  = 1.25
)

type eventKind int

const (
	eventKey eventKind = iota
	eventPick
	eventCamera
	eventClose
)

// event is what the window hands to the viewer loop.
type event struct {
	kind   eventKind
	key    string
	pick   viewer.PickEvent
	camera func(scene.Camera) scene.Camera
}

type frameMsg scene.Snapshot

type consoleMsg string

type keyMap struct {
	Quit      key.Binding
	YawLeft   key.Binding
	YawRight  key.Binding
	PitchUp   key.Binding
	PitchDown key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Reset     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "close")),
		YawLeft:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "rotate")),
		YawRight:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "rotate")),
		PitchUp:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "tilt")),
		PitchDown: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "tilt")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom")),
		Reset:     key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "reset view")),
	}
}

// cameraMove returns the camera change bound to msg, if any.
func (k keyMap) cameraMove(msg tea.KeyMsg) (func(scene.Camera) scene.Camera, bool) {
	switch {
	case key.Matches(msg, k.YawLeft):
		return func(c scene.Camera) scene.Camera { c.Yaw -= yawStep; return c }, true
	case key.Matches(msg, k.YawRight):
		return func(c scene.Camera) scene.Camera { c.Yaw += yawStep; return c }, true
	case key.Matches(msg, k.PitchUp):
		return func(c scene.Camera) scene.Camera { c.Pitch += pitchStep; return c }, true
	case key.Matches(msg, k.PitchDown):
		return func(c scene.Camera) scene.Camera { c.Pitch -= pitchStep; return c }, true
	case key.Matches(msg, k.ZoomIn):
		return func(c scene.Camera) scene.Camera { c.Zoom *= zoomStep; return c }, true
	case key.Matches(msg, k.ZoomOut):
		return func(c scene.Camera) scene.Camera { c.Zoom /= zoomStep; return c }, true
	case key.Matches(msg, k.Reset):
		return func(scene.Camera) scene.Camera { return scene.DefaultCamera() }, true
	}
	return nil, false
}

// model is the bubbletea side of the window. It only draws snapshots and
// forwards input; the scene itself stays on the viewer goroutine.
type model struct {
	snap    scene.Snapshot
	width   int
	height  int
	canvas  canvas
	console []string
	partial string
	picked  *viewer.PickEvent
	keys    keyMap
	events  chan<- event
	dropped int
}

func newModel(snap scene.Snapshot, events chan<- event) model {
	return model{
		snap:   snap,
		width:  80,
		height: 24,
		keys:   defaultKeyMap(),
		events: events,
	}.redraw()
}

func (m model) Init() tea.Cmd { return nil }

func (m model) canvasHeight() int {
	return max(m.height-consoleHeight-2, 1)
}

func (m model) redraw() model {
	m.canvas = rasterize(m.snap, m.width, m.canvasHeight())
	return m
}

func (m *model) emit(ev event) {
	select {
	case m.events <- ev:
	default:
		m.dropped++
	}
}

func (m model) appendConsole(s string) model {
	s = m.partial + s
	lines := strings.Split(s, "\n")
	m.partial = lines[len(lines)-1]
	m.console = append(m.console, lines[:len(lines)-1]...)
	if over := len(m.console) - maxConsole; over > 0 {
		m.console = m.console[over:]
	}
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m.redraw(), nil

	case frameMsg:
		m.snap = scene.Snapshot(msg)
		return m.redraw(), nil

	case consoleMsg:
		return m.appendConsole(string(msg)), nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.emit(event{kind: eventClose})
			return m, tea.Quit
		}
		if move, ok := m.keys.cameraMove(msg); ok {
			m.emit(event{kind: eventCamera, camera: move})
			return m, nil
		}
		m.emit(event{kind: eventKey, key: msg.String()})
		return m, nil

	case tea.MouseMsg:
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			cl, ok := m.canvas.pick(msg.X, msg.Y, pickRadius)
			if !ok {
				return m, nil
			}
			ev := viewer.PickEvent{
				Object: cl.object,
				Index:  cl.index,
				X:      cl.point.X,
				Y:      cl.point.Y,
				Z:      cl.point.Z,
			}
			m.picked = &ev
			m.emit(event{kind: eventPick, pick: ev})
		case msg.Button == tea.MouseButtonWheelUp:
			m.emit(event{kind: eventCamera, camera: func(c scene.Camera) scene.Camera { c.Zoom *= zoomStep; return c }})
		case msg.Button == tea.MouseButtonWheelDown:
			m.emit(event{kind: eventCamera, camera: func(c scene.Camera) scene.Camera { c.Zoom /= zoomStep; return c }})
		}
		return m, nil
	}
	return m, nil
}

// markCell finds where the last picked point is drawn.
func (m model) markCell() *[2]int {
	if m.picked == nil {
		return nil
	}
	for i, cl := range m.canvas.cells {
		if cl.set && cl.object == m.picked.Object && cl.index == m.picked.Index {
			return &[2]int{i % m.canvas.width, i / m.canvas.width}
		}
	}
	return nil
}

func (m model) statusLine() string {
	cam := m.snap.Camera
	parts := []string{
		statusKeyStyle.Render("tviewer"),
		fmt.Sprintf("yaw %.0f° pitch %.0f° zoom %.2f", cam.Yaw, cam.Pitch, cam.Zoom),
	}
	var visible int
	for _, e := range m.snap.Entries {
		if !e.Visible {
			continue
		}
		if e.Cloud {
			visible++
			continue
		}
		if e.Text != "" {
			parts = append(parts, overlayStyle.Render(e.Text))
		}
	}
	parts = append(parts, fmt.Sprintf("%d visible", visible))
	if m.dropped > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d events dropped", m.dropped)))
	}
	line := strings.Join(parts, " │ ")
	return statusStyle.Width(m.width).Render(ansi.Truncate(line, max(m.width-2, 0), "…"))
}

func (m model) consolePane() string {
	lines := m.console
	if m.partial != "" {
		lines = append(lines[:len(lines):len(lines)], m.partial)
	}
	if len(lines) > consoleHeight {
		lines = lines[len(lines)-consoleHeight:]
	}
	var b strings.Builder
	b.WriteString(consoleTitleStyle.Width(m.width).Render("console"))
	for i := 0; i < consoleHeight; i++ {
		b.WriteByte('\n')
		line := ""
		if i < len(lines) {
			line = ansi.Truncate(lines[i], m.width, "…")
		}
		b.WriteString(consoleStyle.Width(m.width).Render(line))
	}
	return b.String()
}

func (m model) View() string {
	return m.canvas.render(m.snap.Background, m.markCell()) + "\n" +
		m.statusLine() + "\n" +
		m.consolePane()
}
