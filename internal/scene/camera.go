package scene

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Camera is an orthographic camera looking at Focal, rotated by Yaw degrees
// around the vertical axis and Pitch degrees around the horizontal one.
type Camera struct {
	Focal [3]float64 `toml:"focal"`
	Yaw   float64    `toml:"yaw"`
	Pitch float64    `toml:"pitch"`
	Zoom  float64    `toml:"zoom"`
}

// DefaultCamera looks at the origin from the front.
func DefaultCamera() Camera {
	return Camera{Zoom: 1}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (c Camera) valid() error {
	for i, f := range c.Focal {
		if !finite(f) {
			return fmt.Errorf("focal[%d] is %v", i, f)
		}
	}
	switch {
	case !finite(c.Yaw):
		return fmt.Errorf("yaw is %v", c.Yaw)
	case !finite(c.Pitch):
		return fmt.Errorf("pitch is %v", c.Pitch)
	case !finite(c.Zoom):
		return fmt.Errorf("zoom is %v", c.Zoom)
	}
	return nil
}

// normalized wraps yaw into [0, 360), clamps pitch and replaces non-finite
// or non-positive values with the defaults.
func (c Camera) normalized() Camera {
	for i, f := range c.Focal {
		if !finite(f) {
			c.Focal[i] = 0
		}
	}
	if !finite(c.Zoom) || c.Zoom <= 0 {
		c.Zoom = 1
	}
	if !finite(c.Yaw) {
		c.Yaw = 0
	}
	c.Yaw = math.Mod(c.Yaw, 360)
	if c.Yaw < 0 {
		c.Yaw += 360
	}
	if c.Yaw >= 360 {
		c.Yaw = 0
	}
	if !finite(c.Pitch) {
		c.Pitch = 0
	}
	c.Pitch = max(-90, min(90, c.Pitch))
	return c
}

type cameraFile struct {
	Camera Camera `toml:"camera"`
}

// SaveCamera writes the camera to path as TOML.
func (s *Scene) SaveCamera(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create camera dir: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cameraFile{Camera: s.camera}); err != nil {
		return fmt.Errorf("encode camera: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write camera: %w", err)
	}
	return nil
}

// LoadCamera replaces the camera with the one stored at path.
func (s *Scene) LoadCamera(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read camera: %w", err)
	}
	f := cameraFile{Camera: DefaultCamera()}
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse camera %s: %w", path, err)
	}
	if err := f.Camera.valid(); err != nil {
		return fmt.Errorf("camera %s: %w", path, err)
	}
	s.SetCamera(f.Camera)
	return nil
}
