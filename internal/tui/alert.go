package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// alertAction is one acknowledgement key the alert accepts. key uses
// bubbletea's key string form ("c", "enter", ...).
type alertAction struct {
	key   string
	label string
}

// alertModel is a blocking modal: while one is live it owns all key input,
// and it only goes away when one of its declared action keys is pressed.
// Every other event re-renders the identical frame.
type alertModel struct {
	title   string
	lines   []string
	actions []alertAction
}

func newAlert() *alertModel { return &alertModel{} }

func (a *alertModel) withTitle(t string) *alertModel {
	a.title = t
	return a
}

func (a *alertModel) text(line string) *alertModel {
	a.lines = append(a.lines, line)
	return a
}

func (a *alertModel) action(key, label string) *alertModel {
	a.actions = append(a.actions, alertAction{key: key, label: label})
	return a
}

// match reports whether msg is one of the declared action keys, and which.
func (a *alertModel) match(msg tea.KeyMsg) (string, bool) {
	k := msg.String()
	for _, act := range a.actions {
		if act.key == k {
			return act.key, true
		}
	}
	return "", false
}

// actionRow joins the declared actions into one line: single-character
// keys upper-cased, enter rendered as a literal <enter> token.
func (a *alertModel) actionRow() string {
	var b strings.Builder
	for i, act := range a.actions {
		if i != 0 {
			b.WriteString(", ")
		}
		switch {
		case act.key == "enter":
			b.WriteString("<enter>")
		case len(act.key) == 1:
			b.WriteString(strings.ToUpper(act.key))
		default:
			b.WriteString(act.key)
		}
		b.WriteString(": ")
		b.WriteString(act.label)
	}
	return b.String()
}

// minWidth is the content width of the minimum bounding box: every body
// line contributes, and so does the joined action row.
func (a *alertModel) minWidth() int {
	w := xansi.StringWidth(a.title)
	for _, ln := range a.lines {
		if lw := xansi.StringWidth(ln); lw > w {
			w = lw
		}
	}
	if len(a.actions) > 0 {
		if lw := xansi.StringWidth(a.actionRow()); lw > w {
			w = lw
		}
	}
	return w
}

func (a *alertModel) view(termWidth int) string {
	bodyW := a.minWidth()
	if max := modalBodyWidth(termWidth); bodyW > max {
		bodyW = max
	}

	rows := make([]string, 0, len(a.lines)+2)
	rows = append(rows, a.lines...)
	if len(a.actions) > 0 {
		// Separator line between body and actions, as one extra row each.
		rows = append(rows, "", styleMuted().Render(a.actionRow()))
	}

	var b strings.Builder
	if strings.TrimSpace(a.title) != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(a.title))
		b.WriteString("\n\n")
	}
	b.WriteString(strings.Join(rows, "\n"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorModalBorder).
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Padding(0, 1).
		Render(normalizePane(b.String(), bodyW, 0))
}
