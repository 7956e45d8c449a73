package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestAlertMatch_OnlyDeclaredKeys(t *testing.T) {
	t.Parallel()

	a := newAlert().
		withTitle("Reserved sys page").
		text("`sys:` is a reserved prefix").
		action("c", "continue").
		action("enter", "ok")

	if _, ok := a.match(keyRune('x')); ok {
		t.Fatalf("matched a key outside the declared action set")
	}
	if _, ok := a.match(tea.KeyMsg{Type: tea.KeyEsc}); ok {
		t.Fatalf("esc is not a declared action and must not match")
	}

	key, ok := a.match(keyRune('c'))
	if !ok || key != "c" {
		t.Fatalf("expected c to match, got %q ok=%v", key, ok)
	}
	key, ok = a.match(tea.KeyMsg{Type: tea.KeyEnter})
	if !ok || key != "enter" {
		t.Fatalf("expected enter to match, got %q ok=%v", key, ok)
	}
}

func TestAlertActionRow_Formatting(t *testing.T) {
	t.Parallel()

	a := newAlert().
		action("c", "continue").
		action("enter", "ok")

	got := a.actionRow()
	want := "C: continue, <enter>: ok"
	if got != want {
		t.Fatalf("action row = %q, want %q", got, want)
	}
}

func TestAlertMinWidth_CoversBodyAndActions(t *testing.T) {
	t.Parallel()

	a := newAlert().
		text("short").
		text("a considerably longer body line").
		action("c", "continue")

	if w := a.minWidth(); w != len("a considerably longer body line") {
		t.Fatalf("minWidth = %d, want the longest line's width", w)
	}

	// A long action row can dominate the body.
	b := newAlert().
		text("hi").
		action("c", "continue with this very long label")
	if w := b.minWidth(); w != len("C: continue with this very long label") {
		t.Fatalf("minWidth = %d, want the action row's width", w)
	}
}

func TestAlertView_ContainsTitleBodyAndSeparatorRow(t *testing.T) {
	t.Parallel()

	a := newAlert().
		withTitle("Could not edit zettel").
		text("No terminal editor configured").
		text("Please set one up in sys:config").
		action("enter", "ok")

	out := a.view(100)
	for _, want := range []string{
		"Could not edit zettel",
		"No terminal editor configured",
		"Please set one up in sys:config",
		"<enter>: ok",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("alert view missing %q:\n%s", want, out)
		}
	}
}
