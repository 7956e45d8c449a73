package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"zettel-cli/internal/model"
)

type registerTransitionKind int

const (
	registerStay registerTransitionKind = iota
	registerExit
	registerGoLogin
	registerRegistered
)

type registerTransition struct {
	kind registerTransitionKind
	user *model.User
}

type registerScreen struct {
	username textinput.Model
	password textinput.Model
	focus    int
	errText  string
}

func newRegisterScreen() *registerScreen {
	s := &registerScreen{}
	s.username = textinput.New()
	s.username.Placeholder = "Username"
	s.username.CharLimit = 64
	s.username.Width = 32
	s.username.Focus()

	s.password = textinput.New()
	s.password.Placeholder = "Password"
	s.password.CharLimit = 128
	s.password.Width = 32
	s.password.EchoMode = textinput.EchoPassword
	return s
}

func (s *registerScreen) setFocus(i int) {
	s.focus = i
	if i == 0 {
		s.username.Focus()
		s.password.Blur()
	} else {
		s.username.Blur()
		s.password.Focus()
	}
}

func (s *registerScreen) update(e *engine, msg tea.KeyMsg) (registerTransition, error) {
	switch msg.String() {
	case "ctrl+c":
		return registerTransition{kind: registerExit}, nil
	case "esc":
		return registerTransition{kind: registerGoLogin}, nil
	case "tab", "shift+tab", "up", "down":
		s.setFocus(1 - s.focus)
		return registerTransition{}, nil
	case "enter":
		if s.focus == 0 {
			s.setFocus(1)
			return registerTransition{}, nil
		}
		name := strings.TrimSpace(s.username.Value())
		if name == "" {
			s.errText = "Username must not be empty"
			return registerTransition{}, nil
		}
		user, err := e.storage.Register(context.Background(), name, s.password.Value())
		if err != nil {
			return registerTransition{}, fmt.Errorf("register %q: %w", name, err)
		}
		if user == nil {
			s.errText = "Username is already taken"
			return registerTransition{}, nil
		}
		return registerTransition{kind: registerRegistered, user: user}, nil
	}

	var cmd tea.Cmd
	if s.focus == 0 {
		s.username, cmd = s.username.Update(msg)
	} else {
		s.password, cmd = s.password.Update(msg)
	}
	_ = cmd
	return registerTransition{}, nil
}

func (s *registerScreen) view(e *engine) string {
	bodyW := modalBodyWidth(e.width)

	var b strings.Builder
	b.WriteString(renderInputLine(bodyW, s.username.View()))
	b.WriteString("\n")
	b.WriteString(renderInputLine(bodyW, s.password.View()))
	if s.errText != "" {
		b.WriteString("\n\n")
		b.WriteString(styleError().Render(s.errText))
	}
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("enter: create account   esc: back to login   ctrl+c: quit"))

	box := renderModalBox(e.width, "Zettel: register", b.String())
	return placeCentered(e.width, e.height, box)
}
