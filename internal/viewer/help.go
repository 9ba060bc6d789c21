package viewer

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

var (
	helpTitleStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	helpHighlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5c2e7"))
	helpMutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)

// printHelp lists objects with their toggle keys and visibility, then the
// listeners with their bindings.
func (v *Viewer) printHelp() {
	var b strings.Builder
	b.WriteString(helpTitleStyle.Render("Visualization objects") + "\n")
	if len(v.objects.items) == 0 {
		b.WriteString(helpMutedStyle.Render("  (none)") + "\n")
	}
	for _, o := range v.objects.items {
		state := helpMutedStyle.Render("hidden ")
		if o.Visible() {
			state = "visible"
		}
		line := o.Name()
		if d, ok := o.(Describer); ok && d.Description() != "" {
			line = d.Description()
			if k := d.Key(); k != "" {
				line = highlightKey(line, k) + helpMutedStyle.Render(" ["+k+"]")
			}
		}
		b.WriteString("  " + state + "  " + line + "\n")
	}

	b.WriteString(helpTitleStyle.Render("Keyboard listeners") + "\n")
	if len(v.listeners.items) == 0 {
		b.WriteString(helpMutedStyle.Render("  (none)") + "\n")
	}
	for _, l := range v.listeners.items {
		hp, ok := l.(HelpProvider)
		if !ok {
			b.WriteString("  " + l.Name() + "\n")
			continue
		}
		for _, kb := range hp.Help() {
			h := kb.Help()
			if h.Key == "" && h.Desc == "" {
				continue
			}
			desc := h.Desc
			if desc == "" {
				desc = l.Name()
			}
			b.WriteString("  " + helpHighlightStyle.Render(h.Key) + "  " + highlightKey(desc, h.Key) + "\n")
		}
	}
	b.WriteString(helpMutedStyle.Render("  "+v.keys.Help+"  print this help") + "\n")
	v.printf("%s", b.String())
}

// highlightKey renders str with the first occurrence of a single-rune key
// highlighted. Longer key names leave str untouched.
func highlightKey(str, k string) string {
	r := []rune(k)
	if len(r) != 1 {
		return str
	}
	done := false
	return printWithHighlight(str, func(c rune) bool {
		if done || unicode.ToLower(c) != unicode.ToLower(r[0]) {
			return false
		}
		done = true
		return true
	})
}

// printWithHighlight renders str with every rune for which highlight
// returns true in the highlight style.
func printWithHighlight(str string, highlight func(rune) bool) string {
	var b strings.Builder
	for _, c := range str {
		if highlight(c) {
			b.WriteString(helpHighlightStyle.Render(string(c)))
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}
