package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"zettel-cli/internal/model"
	"zettel-cli/internal/store"
)

// Run drives the view engine until the user exits or a fatal error ends
// the session.
func Run(st store.Storage, cfg model.SystemConfig) error {
	applyColorProfilePreference()
	applyThemePreference()

	e, err := newEngine(st, cfg)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(e, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return e.err
}
