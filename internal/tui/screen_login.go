package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"zettel-cli/internal/model"
)

type loginTransitionKind int

const (
	loginStay loginTransitionKind = iota
	loginExit
	loginGoRegister
	loginLoggedIn
)

// loginTransition is the login screen's request to the engine. user is set
// only for loginLoggedIn.
type loginTransition struct {
	kind loginTransitionKind
	user *model.User
}

type loginScreen struct {
	username textinput.Model
	password textinput.Model
	focus    int // 0 username, 1 password
	errText  string
}

func newLoginScreen(errText string) *loginScreen {
	s := &loginScreen{errText: errText}
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

func (s *loginScreen) setFocus(i int) {
	s.focus = i
	if i == 0 {
		s.username.Focus()
		s.password.Blur()
	} else {
		s.username.Blur()
		s.password.Focus()
	}
}

func (s *loginScreen) update(e *engine, msg tea.KeyMsg) (loginTransition, error) {
	switch msg.String() {
	case "esc", "ctrl+c":
		return loginTransition{kind: loginExit}, nil
	case "ctrl+r":
		return loginTransition{kind: loginGoRegister}, nil
	case "tab", "shift+tab", "up", "down":
		s.setFocus(1 - s.focus)
		return loginTransition{}, nil
	case "enter":
		if s.focus == 0 {
			s.setFocus(1)
			return loginTransition{}, nil
		}
		name := strings.TrimSpace(s.username.Value())
		user, err := e.storage.Login(context.Background(), name, s.password.Value())
		if err != nil {
			return loginTransition{}, fmt.Errorf("login %q: %w", name, err)
		}
		if user == nil {
			s.errText = "Invalid username or password"
			s.password.SetValue("")
			return loginTransition{}, nil
		}
		return loginTransition{kind: loginLoggedIn, user: user}, nil
	}

	var cmd tea.Cmd
	if s.focus == 0 {
		s.username, cmd = s.username.Update(msg)
	} else {
		s.password, cmd = s.password.Update(msg)
	}
	_ = cmd // cursor blink only; the engine drives its own frame cadence
	return loginTransition{}, nil
}

func (s *loginScreen) view(e *engine) string {
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
	b.WriteString(styleMuted().Render("enter: log in   ctrl+r: register   esc: quit"))

	box := renderModalBox(e.width, "Zettel: log in", b.String())
	return placeCentered(e.width, e.height, box)
}
