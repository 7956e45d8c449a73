package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"zettel-cli/internal/model"
)

type configTransitionKind int

const (
	configStay configTransitionKind = iota
	configPop
)

type configTransition struct {
	kind configTransitionKind
}

var userModes = []model.UserMode{
	model.SingleUserAutoLogin,
	model.SingleUserManualLogin,
	model.MultiUser,
}

func userModeLabel(m model.UserMode) string {
	switch m {
	case model.SingleUserAutoLogin:
		return "single user (auto login)"
	case model.SingleUserManualLogin:
		return "single user (manual login)"
	case model.MultiUser:
		return "multi user"
	}
	return string(m)
}

// configScreen edits the system configuration. parent is the screen to
// restore on pop: a single-owner back-pointer, moved out exactly once.
type configScreen struct {
	parent screen

	modeIdx int
	editor  textinput.Model
	focus   int // 0 user mode, 1 editor
	status  string
}

func newConfigScreen(parent screen, cfg model.SystemConfig) *configScreen {
	s := &configScreen{parent: parent}
	for i, m := range userModes {
		if m == cfg.UserMode {
			s.modeIdx = i
		}
	}
	s.editor = textinput.New()
	s.editor.Placeholder = "Terminal editor (e.g. vim)"
	s.editor.CharLimit = 256
	s.editor.Width = 40
	s.editor.SetValue(cfg.TerminalEditor)
	return s
}

// takeParent moves the return target out of the screen. Second and later
// calls return nil.
func (s *configScreen) takeParent() screen {
	p := s.parent
	s.parent = nil
	return p
}

func (s *configScreen) update(e *engine, msg tea.KeyMsg) (configTransition, error) {
	switch msg.String() {
	case "esc", "ctrl+g":
		return configTransition{kind: configPop}, nil
	case "tab", "shift+tab":
		s.focus = 1 - s.focus
		if s.focus == 1 {
			s.editor.Focus()
		} else {
			s.editor.Blur()
		}
		return configTransition{}, nil
	case "left", "right", "up", "down":
		if s.focus == 0 {
			delta := 1
			if k := msg.String(); k == "left" || k == "up" {
				delta = len(userModes) - 1
			}
			s.modeIdx = (s.modeIdx + delta) % len(userModes)
			s.status = ""
			return configTransition{}, nil
		}
	case "enter":
		cfg := model.SystemConfig{
			UserMode:       userModes[s.modeIdx],
			TerminalEditor: strings.TrimSpace(s.editor.Value()),
		}
		if err := e.storage.SetSystemConfig(context.Background(), cfg); err != nil {
			return configTransition{}, fmt.Errorf("save config: %w", err)
		}
		// Patch the engine's immutable snapshot so the rest of the session
		// sees the new values without reconnecting.
		e.cfg = cfg
		s.status = "Saved"
		return configTransition{}, nil
	}

	if s.focus == 1 {
		var cmd tea.Cmd
		s.editor, cmd = s.editor.Update(msg)
		_ = cmd
		s.status = ""
	}
	return configTransition{}, nil
}

func (s *configScreen) view(e *engine) string {
	bodyW := modalBodyWidth(e.width)

	modeLine := userModeLabel(userModes[s.modeIdx])
	if s.focus == 0 {
		modeLine = lipgloss.NewStyle().
			Background(colorSelectedBg).
			Foreground(colorSelectedFg).
			Render(" < " + modeLine + " > ")
	} else {
		modeLine = "   " + modeLine
	}

	var b strings.Builder
	b.WriteString("User mode")
	b.WriteString("\n")
	b.WriteString(modeLine)
	b.WriteString("\n\n")
	b.WriteString("Terminal editor")
	b.WriteString("\n")
	b.WriteString(renderInputLine(bodyW, s.editor.View()))
	if s.status != "" {
		b.WriteString("\n\n")
		b.WriteString(styleMuted().Render(s.status))
	}
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("tab: focus   enter: save   esc: back"))

	box := renderModalBox(e.width, "Zettel: configuration", b.String())
	return placeCentered(e.width, e.height, box)
}
