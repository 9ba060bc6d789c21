package term

import (
	"math"

	"github.com/jask/tviewer/internal/scene"
)

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 0.5

// projector maps scene coordinates to character cells for a fixed camera
// and canvas size.
type projector struct {
	focal    [3]float64
	sinYaw   float64
	cosYaw   float64
	sinPitch float64
	cosPitch float64
	scale    float64
	cx, cy   float64
	width    int
	height   int
}

func newProjector(cam scene.Camera, width, height int) projector {
	yaw := cam.Yaw * math.Pi / 180
	pitch := cam.Pitch * math.Pi / 180
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return projector{
		focal:    cam.Focal,
		sinYaw:   math.Sin(yaw),
		cosYaw:   math.Cos(yaw),
		sinPitch: math.Sin(pitch),
		cosPitch: math.Cos(pitch),
		scale:    float64(min(width, 2*height)) / 4 * zoom,
		cx:       float64(width) / 2,
		cy:       float64(height) / 2,
		width:    width,
		height:   height,
	}
}

// project returns the cell a point lands in and its depth. Larger depths are
// closer to the viewer. ok is false when the point falls outside the canvas.
func (pr projector) project(p scene.Point) (col, row int, depth float64, ok bool) {
	x := float64(p.X) - pr.focal[0]
	y := float64(p.Y) - pr.focal[1]
	z := float64(p.Z) - pr.focal[2]

	x1 := x*pr.cosYaw + z*pr.sinYaw
	z1 := -x*pr.sinYaw + z*pr.cosYaw
	y2 := y*pr.cosPitch - z1*pr.sinPitch
	z2 := y*pr.sinPitch + z1*pr.cosPitch

	col = int(math.Floor(pr.cx + x1*pr.scale))
	row = int(math.Floor(pr.cy - y2*pr.scale*cellAspect))
	if col < 0 || row < 0 || col >= pr.width || row >= pr.height {
		return 0, 0, 0, false
	}
	return col, row, z2, true
}
