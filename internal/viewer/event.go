package viewer

import "fmt"

// KeyEvent is a key press delivered by the renderer. Key uses the normalized
// names produced by NormalizeKey ("a", "A", "space", "enter", "ctrl+s").
type KeyEvent struct {
	Key string
}

// PickEvent is a point picked in the scene. Object is the name of the object
// the point belongs to, Index the point index inside that object.
type PickEvent struct {
	Object  string
	Index   int
	X, Y, Z float32
}

// PickedPoint is the result of WaitPointSelected.
type PickedPoint struct {
	Object  string
	Index   int
	X, Y, Z float32
}

func (p PickedPoint) String() string {
	return fmt.Sprintf("%s[%d] (%.3f, %.3f, %.3f)", p.Object, p.Index, p.X, p.Y, p.Z)
}

// PointXYZL is a selected point with the label of the group it was picked into.
type PointXYZL struct {
	X, Y, Z float32
	Label   uint32
}

// PointIndices holds the point indices of one label group.
type PointIndices struct {
	Indices []int
}

// Selection is the result of an accumulating point selection. All points
// belong to Object, the object of the first pick. Cloud holds every selected
// point in pick order, Indices one entry per label group.
type Selection struct {
	Object  string
	Cloud   []PointXYZL
	Indices []PointIndices
}

// Len returns the number of selected points.
func (s Selection) Len() int { return len(s.Cloud) }

// slot is a single-element mailbox for the most recent event of one kind.
// put overwrites an unconsumed value; take consumes it.
type slot[T any] struct {
	v    T
	full bool
}

func (s *slot[T]) put(v T) {
	s.v = v
	s.full = true
}

func (s *slot[T]) take() (T, bool) {
	var zero T
	if !s.full {
		return zero, false
	}
	v := s.v
	s.v = zero
	s.full = false
	return v, true
}

func (s *slot[T]) clear() {
	var zero T
	s.v = zero
	s.full = false
}

func (s *slot[T]) pending() bool { return s.full }
