package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"zettel-cli/internal/model"
	"zettel-cli/internal/store"
)

// screen is the currently live UI state. Exactly one screen is live at a
// time; the engine replaces it when it resolves a transition.
type screen interface {
	view(e *engine) string
}

// engine is the root state machine. Screens return typed transition
// requests; only the engine turns them into the next screen, consulting
// storage as needed.
//
// Storage calls run to completion inline in Update with
// context.Background(); at most one call is ever in flight.
type engine struct {
	storage store.Storage
	cfg     model.SystemConfig

	width  int
	height int

	current screen
	// alert, when non-nil, owns all key input until one of its declared
	// action keys is pressed.
	alert *alertModel

	// editing tracks the in-flight external editor session, if any.
	editing *editSession

	// err is the fatal error that ended the session, reported by Run after
	// the program exits.
	err error
}

// newEngine selects the initial screen from the configured user mode.
// Auto-login failures are not fatal: they surface as a pre-populated error
// on the login screen.
func newEngine(st store.Storage, cfg model.SystemConfig) (*engine, error) {
	e := &engine{storage: st, cfg: cfg, width: 80, height: 24}
	switch cfg.UserMode {
	case model.SingleUserAutoLogin:
		user, err := st.LoginSingleUser(context.Background())
		if err != nil {
			e.current = newLoginScreen(fmt.Sprintf("Automatic login failed: %v", err))
			return e, nil
		}
		zs, err := e.openZettelScreen(user)
		if err != nil {
			return nil, err
		}
		e.current = zs
	default:
		e.current = newLoginScreen("")
	}
	return e, nil
}

// openZettelScreen builds the note screen shown right after login: the
// user's last visited zettel when one is recorded (stale references fall
// back to the index), otherwise the index of all zettels.
func (e *engine) openZettelScreen(user *model.User) (*zettelScreen, error) {
	ctx := context.Background()
	if user.LastVisitedZettel != nil {
		z, err := e.storage.GetZettel(ctx, user.ID, *user.LastVisitedZettel)
		if err == nil {
			return newZettelScreen(user, z), nil
		}
		if !errors.Is(err, store.ErrZettelNotFound) {
			return nil, fmt.Errorf("load last visited zettel: %w", err)
		}
	}
	s := newZettelScreen(user, nil)
	headers, err := e.storage.GetZettels(ctx, user.ID, model.SearchOpts{})
	if err != nil {
		return nil, fmt.Errorf("list zettels: %w", err)
	}
	s.setHeaders(headers)
	return s, nil
}

func (e *engine) Init() tea.Cmd { return textinput.Blink }

func (e *engine) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		return e, nil

	case externalEditorDoneMsg:
		return e.finishEdit(msg)

	case tea.KeyMsg:
		if e.alert != nil {
			// The alert owns the terminal: only a declared action key
			// dismisses it, everything else re-renders the same frame.
			if _, ok := e.alert.match(msg); ok {
				e.alert = nil
			}
			return e, nil
		}
		return e.step(msg)
	}
	return e, nil
}

// fatal records err and terminates the session. Storage and local I/O
// failures are never swallowed; only absence-shaped results are
// recoverable.
func (e *engine) fatal(err error) (tea.Model, tea.Cmd) {
	e.err = err
	return e, tea.Quit
}

// step runs one render/input cycle: the active screen interprets the key
// and the engine resolves whatever transition it requested.
func (e *engine) step(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch s := e.current.(type) {
	case *loginScreen:
		t, err := s.update(e, msg)
		if err != nil {
			return e.fatal(err)
		}
		return e.resolveLogin(t)
	case *registerScreen:
		t, err := s.update(e, msg)
		if err != nil {
			return e.fatal(err)
		}
		return e.resolveRegister(t)
	case *configScreen:
		t, err := s.update(e, msg)
		if err != nil {
			return e.fatal(err)
		}
		return e.resolveConfig(s, t)
	case *zettelScreen:
		t, err := s.update(e, msg)
		if err != nil {
			return e.fatal(err)
		}
		return e.resolveZettel(s, t)
	}
	return e, nil
}

func (e *engine) resolveLogin(t loginTransition) (tea.Model, tea.Cmd) {
	switch t.kind {
	case loginExit:
		return e, tea.Quit
	case loginGoRegister:
		e.current = newRegisterScreen()
	case loginLoggedIn:
		zs, err := e.openZettelScreen(t.user)
		if err != nil {
			return e.fatal(err)
		}
		e.current = zs
	}
	return e, nil
}

func (e *engine) resolveRegister(t registerTransition) (tea.Model, tea.Cmd) {
	switch t.kind {
	case registerExit:
		return e, tea.Quit
	case registerGoLogin:
		e.current = newLoginScreen("")
	case registerRegistered:
		zs, err := e.openZettelScreen(t.user)
		if err != nil {
			return e.fatal(err)
		}
		e.current = zs
	}
	return e, nil
}

func (e *engine) resolveConfig(s *configScreen, t configTransition) (tea.Model, tea.Cmd) {
	if t.kind == configPop {
		// The parent is consumed exactly once; a second pop stays put.
		if parent := s.takeParent(); parent != nil {
			e.current = parent
		}
	}
	return e, nil
}

func (e *engine) resolveZettel(s *zettelScreen, t zettelTransition) (tea.Model, tea.Cmd) {
	switch t.kind {
	case zettelExit:
		return e, tea.Quit

	case zettelNavigate:
		return e.navigate(s, t.path)

	case zettelLogout:
		e.current = newLoginScreen("")

	case zettelOpenConfig:
		e.current = newConfigScreen(s, e.cfg)

	case zettelEdit:
		return e.startEdit(s)
	}
	return e, nil
}

// navigate resolves a NavigateTo path: sys: pages first, then the user's
// zettels by url, falling back to a fresh unsaved zettel for unknown paths.
func (e *engine) navigate(s *zettelScreen, path string) (tea.Model, tea.Cmd) {
	if sysPage, ok := strings.CutPrefix(path, "sys:"); ok {
		if sysPage == "config" {
			e.current = newConfigScreen(s, e.cfg)
			return e, nil
		}
		e.alert = newAlert().
			withTitle("Reserved sys page").
			text(fmt.Sprintf("`sys:` is a reserved prefix, could not navigate to `sys:%s`", sysPage)).
			action("c", "continue")
		return e, nil
	}

	ctx := context.Background()
	z, err := e.storage.GetZettelByURL(ctx, s.user.ID, path)
	if err != nil {
		return e.fatal(fmt.Errorf("navigate to %q: %w", path, err))
	}
	if z != nil {
		if err := e.storage.SetUserLastVisitedZettel(ctx, s.user.ID, &z.ID); err != nil {
			return e.fatal(fmt.Errorf("record last visited zettel: %w", err))
		}
	} else {
		// Unknown path: open a fresh, not-yet-persisted zettel. Nothing is
		// written until the user edits it.
		z = &model.Zettel{Path: path}
	}
	e.current = newZettelScreen(s.user, z)
	return e, nil
}

func (e *engine) startEdit(s *zettelScreen) (tea.Model, tea.Cmd) {
	if s.zettel == nil {
		return e, nil
	}
	if e.cfg.TerminalEditor == "" {
		e.alert = newAlert().
			withTitle("Could not edit zettel").
			text("No terminal editor configured").
			text("Please set one up in sys:config").
			action("enter", "ok")
		return e, nil
	}
	session, cmd, err := startExternalEditor(e.cfg.TerminalEditor, s.zettel.Body)
	if err != nil {
		return e.fatal(err)
	}
	e.editing = session
	return e, cmd
}

// finishEdit applies the external editor result: re-read the temp file,
// adopt its contents as the new body, and persist. The editor's exit
// status is not inspected; only I/O failures are fatal.
func (e *engine) finishEdit(msg externalEditorDoneMsg) (tea.Model, tea.Cmd) {
	session := e.editing
	e.editing = nil
	if session == nil {
		return e, nil
	}
	if msg.err != nil {
		return e.fatal(fmt.Errorf("run editor %q: %w", e.cfg.TerminalEditor, msg.err))
	}
	body, err := session.finish()
	if err != nil {
		return e.fatal(err)
	}

	s, ok := e.current.(*zettelScreen)
	if !ok || s.zettel == nil {
		return e, nil
	}
	s.zettel.Body = body
	s.scroll = 0
	if err := e.storage.UpdateZettel(context.Background(), s.user.ID, s.zettel); err != nil {
		return e.fatal(fmt.Errorf("save zettel %q: %w", s.zettel.Path, err))
	}
	return e, nil
}

func (e *engine) View() string {
	if e.alert != nil {
		// The dialog fully owns the terminal for its duration.
		return placeCentered(e.width, e.height, e.alert.view(e.width))
	}
	if e.current == nil {
		return ""
	}
	return e.current.view(e)
}
