package viewer

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// Listener reacts to key presses. HandleKey reports whether the key was
// consumed; all gated-in listeners see every event regardless.
type Listener interface {
	Name() string
	HandleKey(ev KeyEvent) bool
}

// HelpProvider is implemented by listeners that can describe their bindings.
type HelpProvider interface {
	Help() []key.Binding
}

// listenerRegistry keeps listeners in registration order together with the
// names of the objects each one depends on.
type listenerRegistry struct {
	items      []Listener
	dependents map[string][]string
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{dependents: make(map[string][]string)}
}

func (r *listenerRegistry) insert(l Listener, deps []string) bool {
	if _, exists := r.dependents[l.Name()]; exists {
		return false
	}
	set := make([]string, 0, len(deps))
	for _, d := range deps {
		if d == "" {
			continue
		}
		if !slices.Contains(set, d) {
			set = append(set, d)
		}
	}
	r.items = append(r.items, l)
	r.dependents[l.Name()] = set
	return true
}

func (r *listenerRegistry) delete(name string) bool {
	if _, ok := r.dependents[name]; !ok {
		return false
	}
	delete(r.dependents, name)
	for i, l := range r.items {
		if l.Name() == name {
			r.items = append(r.items[:i], r.items[i+1:]...)
			break
		}
	}
	return true
}

// active reports whether l is gated in: it has no dependents, or at least
// one of them is visible.
func (r *listenerRegistry) active(l Listener, visible func([]string) bool) bool {
	deps := r.dependents[l.Name()]
	return len(deps) == 0 || visible(deps)
}

// dispatch invokes every gated-in listener in registration order and returns
// how many of them consumed the event.
func (r *listenerRegistry) dispatch(ev KeyEvent, visible func([]string) bool) int {
	// A handler may add or remove listeners; iterate over a snapshot.
	items := append([]Listener(nil), r.items...)
	handled := 0
	for _, l := range items {
		if _, still := r.dependents[l.Name()]; !still {
			continue
		}
		if !r.active(l, visible) {
			continue
		}
		if l.HandleKey(ev) {
			handled++
		}
	}
	return handled
}

func (r *listenerRegistry) names() []string {
	out := make([]string, 0, len(r.items))
	for _, l := range r.items {
		out = append(out, l.Name())
	}
	return out
}
