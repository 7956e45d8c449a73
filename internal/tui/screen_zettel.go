package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"zettel-cli/internal/model"
)

type zettelTransitionKind int

const (
	zettelStay zettelTransitionKind = iota
	zettelExit
	zettelNavigate
	zettelLogout
	zettelOpenConfig
	zettelEdit
)

// zettelTransition is the note screen's request to the engine. path is set
// only for zettelNavigate.
type zettelTransition struct {
	kind zettelTransitionKind
	path string
}

type zettelMode int

const (
	zettelModeView zettelMode = iota
	zettelModeGoto
	zettelModeSearch
)

type zettelListItem struct {
	header model.ZettelHeader
}

func (i zettelListItem) Title() string       { return i.header.Path }
func (i zettelListItem) Description() string { return fmt.Sprintf("zettel %d", i.header.ID) }
func (i zettelListItem) FilterValue() string { return i.header.Path }

// zettelScreen shows either the active note (rendered markdown) or, when no
// note is active, the user's zettel index. It owns the one in-memory note.
type zettelScreen struct {
	user   *model.User
	zettel *model.Zettel // nil means the index is shown

	mode   zettelMode
	input  textinput.Model
	items  list.Model
	scroll int
}

func newZettelScreen(user *model.User, zettel *model.Zettel) *zettelScreen {
	s := &zettelScreen{user: user, zettel: zettel}
	s.input = textinput.New()
	s.input.CharLimit = 256
	s.input.Width = 48
	s.items = newZettelList(nil)
	return s
}

func newZettelList(items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	// The screen renders its own header and footer, so keep list chrome
	// minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	// Storage-backed search replaces the list's own filtering.
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetKeys("q")
	return l
}

func (s *zettelScreen) setHeaders(headers []model.ZettelHeader) {
	items := make([]list.Item, 0, len(headers))
	for _, h := range headers {
		items = append(items, zettelListItem{header: h})
	}
	s.items.SetItems(items)
	s.items.ResetSelected()
}

func (s *zettelScreen) selectedPath() (string, bool) {
	it, ok := s.items.SelectedItem().(zettelListItem)
	if !ok {
		return "", false
	}
	return it.header.Path, true
}

// refreshSearch re-runs the storage-backed search with the current query.
func (s *zettelScreen) refreshSearch(e *engine) error {
	headers, err := e.storage.GetZettels(context.Background(), s.user.ID,
		model.SearchOpts{Query: s.input.Value()})
	if err != nil {
		return fmt.Errorf("search zettels: %w", err)
	}
	s.setHeaders(headers)
	return nil
}

func (s *zettelScreen) update(e *engine, msg tea.KeyMsg) (zettelTransition, error) {
	switch s.mode {
	case zettelModeGoto:
		return s.updateGoto(msg)
	case zettelModeSearch:
		return s.updateSearch(e, msg)
	}
	return s.updateView(e, msg)
}

func (s *zettelScreen) updateGoto(msg tea.KeyMsg) (zettelTransition, error) {
	switch msg.String() {
	case "esc", "ctrl+g":
		s.mode = zettelModeView
		s.input.Blur()
		return zettelTransition{}, nil
	case "enter":
		path := strings.TrimSpace(s.input.Value())
		s.mode = zettelModeView
		s.input.Blur()
		if path == "" {
			return zettelTransition{}, nil
		}
		return zettelTransition{kind: zettelNavigate, path: path}, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	_ = cmd
	return zettelTransition{}, nil
}

func (s *zettelScreen) updateSearch(e *engine, msg tea.KeyMsg) (zettelTransition, error) {
	switch msg.String() {
	case "esc", "ctrl+g":
		s.mode = zettelModeView
		s.input.Blur()
		if s.zettel == nil {
			// Restore the full index the search replaced.
			s.input.SetValue("")
			if err := s.refreshSearch(e); err != nil {
				return zettelTransition{}, err
			}
		}
		return zettelTransition{}, nil
	case "enter":
		path, ok := s.selectedPath()
		if !ok {
			return zettelTransition{}, nil
		}
		s.mode = zettelModeView
		s.input.Blur()
		return zettelTransition{kind: zettelNavigate, path: path}, nil
	case "up", "down", "ctrl+p", "ctrl+n", "pgup", "pgdown":
		var cmd tea.Cmd
		s.items, cmd = s.items.Update(msg)
		_ = cmd
		return zettelTransition{}, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	_ = cmd
	return zettelTransition{}, s.refreshSearch(e)
}

func (s *zettelScreen) updateView(e *engine, msg tea.KeyMsg) (zettelTransition, error) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return zettelTransition{kind: zettelExit}, nil
	case "l":
		return zettelTransition{kind: zettelLogout}, nil
	case "c":
		return zettelTransition{kind: zettelOpenConfig}, nil
	case "e":
		if s.zettel != nil {
			return zettelTransition{kind: zettelEdit}, nil
		}
		return zettelTransition{}, nil
	case "g":
		s.mode = zettelModeGoto
		s.input.SetValue("")
		s.input.Placeholder = "Path (sys:config opens settings)"
		s.input.Focus()
		return zettelTransition{}, nil
	case "/":
		s.mode = zettelModeSearch
		s.input.SetValue("")
		s.input.Placeholder = "Search"
		s.input.Focus()
		return zettelTransition{}, s.refreshSearch(e)
	case "enter":
		if s.zettel == nil {
			if path, ok := s.selectedPath(); ok {
				return zettelTransition{kind: zettelNavigate, path: path}, nil
			}
		}
		return zettelTransition{}, nil
	case "up", "k", "ctrl+p":
		if s.zettel != nil {
			if s.scroll > 0 {
				s.scroll--
			}
			return zettelTransition{}, nil
		}
	case "down", "j", "ctrl+n":
		if s.zettel != nil {
			s.scroll++
			return zettelTransition{}, nil
		}
	}

	if s.zettel == nil {
		var cmd tea.Cmd
		s.items, cmd = s.items.Update(msg)
		_ = cmd
	}
	return zettelTransition{}, nil
}

func (s *zettelScreen) headerLine(width int) string {
	title := "index"
	if s.zettel != nil {
		title = s.zettel.Path
		if s.zettel.ID == 0 {
			title += " (unsaved)"
		}
	}
	left := " " + title
	right := s.user.Name + " "
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Background(colorControlBg).
		Foreground(colorSurfaceFg).
		Bold(true).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (s *zettelScreen) footerLine(width int) string {
	var hints string
	switch s.mode {
	case zettelModeGoto:
		hints = "enter: go   esc: cancel"
	case zettelModeSearch:
		hints = "type to search   enter: open   esc: cancel"
	default:
		if s.zettel != nil {
			hints = "e: edit   g: go to   /: search   l: logout   c: config   q: quit"
		} else {
			hints = "enter: open   g: go to   /: search   l: logout   c: config   q: quit"
		}
	}
	return styleMuted().Render(normalizePane(" "+hints, width-1, 1))
}

func (s *zettelScreen) view(e *engine) string {
	width, height := e.width, e.height
	bodyH := height - 2 // header + footer
	inputRow := ""
	if s.mode == zettelModeGoto || s.mode == zettelModeSearch {
		inputRow = renderInputLine(width, s.input.View())
		bodyH--
	}
	if bodyH < 1 {
		bodyH = 1
	}

	var body string
	if s.mode == zettelModeSearch || s.zettel == nil {
		s.items.SetSize(width, bodyH)
		body = s.items.View()
	} else {
		rendered := renderMarkdown(s.zettel.Body, width-2)
		if rendered == "" {
			rendered = styleMuted().Render("(empty zettel, press e to edit)")
		}
		lines := strings.Split(rendered, "\n")
		if s.scroll > len(lines)-bodyH {
			s.scroll = len(lines) - bodyH
		}
		if s.scroll < 0 {
			s.scroll = 0
		}
		body = strings.Join(lines[s.scroll:], "\n")
	}

	rows := []string{
		s.headerLine(width),
		normalizePane(body, width, bodyH),
	}
	if inputRow != "" {
		rows = append(rows, inputRow)
	}
	rows = append(rows, s.footerLine(width))
	return strings.Join(rows, "\n")
}
