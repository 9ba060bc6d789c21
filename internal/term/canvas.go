package term

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/jask/tviewer/internal/scene"
)

// cell is one character of the canvas and the point drawn in it.
type cell struct {
	set    bool
	depth  float64
	object string
	index  int
	point  scene.Point
}

// canvas is a depth-buffered character grid.
type canvas struct {
	width, height int
	cells         []cell
	near, far     float64
}

func rasterize(snap scene.Snapshot, width, height int) canvas {
	c := canvas{width: max(width, 0), height: max(height, 0)}
	c.cells = make([]cell, c.width*c.height)
	if len(c.cells) == 0 {
		return c
	}
	pr := newProjector(snap.Camera, c.width, c.height)
	first := true
	snap.VisiblePoints(func(object string, index int, p scene.Point) {
		col, row, depth, ok := pr.project(p)
		if !ok {
			return
		}
		if first {
			c.near, c.far = depth, depth
			first = false
		}
		c.near = max(c.near, depth)
		c.far = min(c.far, depth)
		cl := &c.cells[row*c.width+col]
		if cl.set && cl.depth >= depth {
			return
		}
		*cl = cell{set: true, depth: depth, object: object, index: index, point: p}
	})
	return c
}

func (c canvas) at(col, row int) (cell, bool) {
	if col < 0 || row < 0 || col >= c.width || row >= c.height {
		return cell{}, false
	}
	cl := c.cells[row*c.width+col]
	return cl, cl.set
}

// pick returns the drawn point nearest to (col, row) within radius cells.
// Rows count double since cells are twice as tall as they are wide.
func (c canvas) pick(col, row, radius int) (cell, bool) {
	var (
		best  cell
		bestD = -1
	)
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			cl, ok := c.at(col+dc, row+dr)
			if !ok {
				continue
			}
			d := dc*dc + 4*dr*dr
			if bestD < 0 || d < bestD || (d == bestD && cl.depth > best.depth) {
				best, bestD = cl, d
			}
		}
	}
	return best, bestD >= 0
}

// shade returns 1 for the nearest drawn depth and 0 for the farthest.
func (c canvas) shade(depth float64) float64 {
	if c.near == c.far {
		return 1
	}
	return (depth - c.far) / (c.near - c.far)
}

func glyph(shade float64) rune {
	switch {
	case shade > 0.66:
		return '●'
	case shade > 0.33:
		return '•'
	default:
		return '·'
	}
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// cellColor fades far points toward the background.
func cellColor(p color.RGBA, bg color.RGBA, shade float64) string {
	return toColorful(p).BlendRgb(toColorful(bg), (1-shade)*0.6).Clamped().Hex()
}

// render draws the canvas on bg. A marked cell is drawn as a cross.
func (c canvas) render(bg color.RGBA, mark *[2]int) string {
	bgColor := lipgloss.Color(toColorful(bg).Hex())
	var b strings.Builder
	for row := 0; row < c.height; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var (
			run     strings.Builder
			runFg   string
			flushFn = func() {
				if run.Len() == 0 {
					return
				}
				st := lipgloss.NewStyle().Background(bgColor)
				if runFg != "" {
					st = st.Foreground(lipgloss.Color(runFg))
				}
				b.WriteString(st.Render(run.String()))
				run.Reset()
			}
		)
		for col := 0; col < c.width; col++ {
			if mark != nil && mark[0] == col && mark[1] == row {
				flushFn()
				b.WriteString(markerStyle.Background(bgColor).Render("+"))
				continue
			}
			cl := c.cells[row*c.width+col]
			fg, r := "", ' '
			if cl.set {
				s := c.shade(cl.depth)
				fg, r = cellColor(cl.point.Color, bg, s), glyph(s)
			}
			if fg != runFg {
				flushFn()
				runFg = fg
			}
			run.WriteRune(r)
		}
		flushFn()
	}
	return b.String()
}
