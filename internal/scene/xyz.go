package scene

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ReadXYZ parses an ASCII cloud with one "x y z" or "x y z r g b" point per
// line. Blank lines and lines starting with '#' are skipped. Points without
// a color get def.
func ReadXYZ(r io.Reader, def color.RGBA) ([]Point, error) {
	var pts []Point
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 && len(fields) != 6 {
			return nil, fmt.Errorf("line %d: want 3 or 6 fields, got %d", line, len(fields))
		}
		var xyz [3]float32
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(fields[i], 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			xyz[i] = float32(f)
		}
		c := def
		if len(fields) == 6 {
			var rgb [3]uint8
			for i := 0; i < 3; i++ {
				v, err := strconv.ParseUint(fields[3+i], 10, 8)
				if err != nil {
					return nil, fmt.Errorf("line %d: color: %w", line, err)
				}
				rgb[i] = uint8(v)
			}
			c = color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
		}
		pts = append(pts, Point{X: xyz[0], Y: xyz[1], Z: xyz[2], Color: c})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return pts, nil
}

// LoadXYZ reads an ASCII cloud file.
func LoadXYZ(path string, def color.RGBA) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pts, err := ReadXYZ(f, def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pts, nil
}

// Sphere returns n points evenly spread over a sphere surface.
func Sphere(n int, center [3]float32, radius float32, c color.RGBA) []Point {
	pts := make([]Point, 0, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - y*y)
		theta := golden * float64(i)
		pts = append(pts, Point{
			X:     center[0] + radius*float32(r*math.Cos(theta)),
			Y:     center[1] + radius*float32(y),
			Z:     center[2] + radius*float32(r*math.Sin(theta)),
			Color: c,
		})
	}
	return pts
}

// Grid returns a flat nx by nz grid of points at height y with the given
// spacing, centered on the origin.
func Grid(nx, nz int, y, spacing float32, c color.RGBA) []Point {
	pts := make([]Point, 0, nx*nz)
	ox := spacing * float32(nx-1) / 2
	oz := spacing * float32(nz-1) / 2
	for i := 0; i < nx; i++ {
		for j := 0; j < nz; j++ {
			pts = append(pts, Point{X: float32(i)*spacing - ox, Y: y, Z: float32(j)*spacing - oz, Color: c})
		}
	}
	return pts
}
