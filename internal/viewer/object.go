package viewer

import (
	"image/color"

	"github.com/agnivade/levenshtein"
)

// Object is a named scene entity that can be shown, hidden and refreshed.
// Visibility is owned by the renderer the object is bound to.
type Object interface {
	Name() string
	Show()
	Hide()
	Update()
	Visible() bool
}

// PointColorer is implemented by objects that can report the color of one
// of their points.
type PointColorer interface {
	PointColor(index int) (color.RGBA, bool)
}

// Describer is implemented by objects that carry help information.
type Describer interface {
	Description() string
	Key() string
}

// objectRegistry keeps objects in registration order with a name index.
type objectRegistry struct {
	items []Object
	index map[string]Object
}

func newObjectRegistry() *objectRegistry {
	return &objectRegistry{index: make(map[string]Object)}
}

func (r *objectRegistry) get(name string) (Object, bool) {
	o, ok := r.index[name]
	return o, ok
}

func (r *objectRegistry) insert(o Object) bool {
	if _, exists := r.index[o.Name()]; exists {
		return false
	}
	r.items = append(r.items, o)
	r.index[o.Name()] = o
	return true
}

func (r *objectRegistry) delete(name string) (Object, bool) {
	o, ok := r.index[name]
	if !ok {
		return nil, false
	}
	delete(r.index, name)
	for i, item := range r.items {
		if item.Name() == name {
			r.items = append(r.items[:i], r.items[i+1:]...)
			break
		}
	}
	return o, true
}

// anyVisible reports whether at least one of names is registered and visible.
func (r *objectRegistry) anyVisible(names []string) bool {
	for _, n := range names {
		if o, ok := r.index[n]; ok && o.Visible() {
			return true
		}
	}
	return false
}

func (r *objectRegistry) names() []string {
	out := make([]string, 0, len(r.items))
	for _, o := range r.items {
		out = append(out, o.Name())
	}
	return out
}

// closest returns the registered name nearest to name by edit distance.
func closest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
