package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and
// height lines tall, which keeps composed panes stable under
// lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")

	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i := range lines {
		ln := lines[i]
		w := xansi.StringWidth(ln)
		if w > width {
			if width <= 0 {
				ln = ""
			} else if width == 1 {
				ln = xansi.Cut(ln, 0, 1)
			} else {
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln = ln + strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}

	return strings.Join(lines, "\n")
}

// modalBodyWidth is the usable content width inside a modal box for a
// terminal of the given width.
func modalBodyWidth(termWidth int) int {
	w := termWidth - 8 // border + padding on both sides, plus breathing room
	if w > 76 {
		w = 76
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderModalBox draws a bordered, titled box sized to its content but no
// wider than the terminal allows.
func renderModalBox(termWidth int, title string, content string) string {
	bodyW := modalBodyWidth(termWidth)

	var b strings.Builder
	if strings.TrimSpace(title) != "" {
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSurfaceFg).
			Background(colorControlBg).
			Width(bodyW).
			Padding(0, 1).
			Render(title)
		b.WriteString(header)
		b.WriteString("\n\n")
	}
	b.WriteString(content)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorModalBorder).
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Padding(0, 1).
		Render(normalizePane(b.String(), bodyW, 0))
}

// placeCentered centers s on a width x height canvas.
func placeCentered(width, height int, s string) string {
	if width <= 0 || height <= 0 {
		return s
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s)
}
