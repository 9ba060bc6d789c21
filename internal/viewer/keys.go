package viewer

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyConfig names the keys the viewer itself reacts to.
type KeyConfig struct {
	Help      string
	Yes       string
	No        string
	Done      string
	NextLabel string
	Cancel    string
}

// DefaultKeys returns the built-in key assignment.
func DefaultKeys() KeyConfig {
	return KeyConfig{
		Help:      "h",
		Yes:       "y",
		No:        "n",
		Done:      "enter",
		NextLabel: "space",
		Cancel:    "esc",
	}
}

func (k KeyConfig) normalized() KeyConfig {
	def := DefaultKeys()
	pick := func(v, fallback string) string {
		if n := NormalizeKey(v); n != "" {
			return n
		}
		return fallback
	}
	return KeyConfig{
		Help:      pick(k.Help, def.Help),
		Yes:       pick(k.Yes, def.Yes),
		No:        pick(k.No, def.No),
		Done:      pick(k.Done, def.Done),
		NextLabel: pick(k.NextLabel, def.NextLabel),
		Cancel:    pick(k.Cancel, def.Cancel),
	}
}

// NormalizeKey maps the spellings renderers and config files use for a key to
// one canonical name.
func NormalizeKey(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		// Single runes keep their case so "c" and "C" can be bound apart.
		return trimmed
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "ctl+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	s = strings.ReplaceAll(s, "escape", "esc")
	s = strings.ReplaceAll(s, "spacebar", "space")
	return s
}

func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		n := NormalizeKey(k)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// KeyListener is a Listener that runs a handler when one of its binding keys
// is pressed.
type KeyListener struct {
	name    string
	binding key.Binding
	keys    []string
	handler func(KeyEvent)
}

// NewKeyListener returns a listener named name that calls fn for key presses
// matching b.
func NewKeyListener(name string, b key.Binding, fn func(KeyEvent)) *KeyListener {
	return &KeyListener{
		name:    name,
		binding: b,
		keys:    normalizeKeys(b.Keys()),
		handler: fn,
	}
}

// Name implements Listener.
func (l *KeyListener) Name() string { return l.name }

// HandleKey implements Listener.
func (l *KeyListener) HandleKey(ev KeyEvent) bool {
	if !l.binding.Enabled() || !slices.Contains(l.keys, ev.Key) {
		return false
	}
	if l.handler != nil {
		l.handler(ev)
	}
	return true
}

// Help implements HelpProvider.
func (l *KeyListener) Help() []key.Binding { return []key.Binding{l.binding} }
