package tui

import (
	"fmt"
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

type externalEditorDoneMsg struct {
	err error
}

// editSession tracks one in-flight external edit: the temp file handed to
// the editor and the zettel the result belongs to.
type editSession struct {
	path   string
	before string
}

// startExternalEditor seeds a fresh temp file with body and returns the
// command that runs the configured editor against it as a blocking child
// process. The editor gets the file path as its sole argument; its exit
// status is not inspected (only I/O failures around the process count).
func startExternalEditor(editor, body string) (*editSession, tea.Cmd, error) {
	f, err := os.CreateTemp("", "zettel-*.md")
	if err != nil {
		return nil, nil, fmt.Errorf("create editor temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, nil, fmt.Errorf("seed editor temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, nil, fmt.Errorf("seed editor temp file: %w", err)
	}

	cmd := exec.Command(editor, path)
	return &editSession{path: path, before: body}, tea.ExecProcess(cmd, func(err error) tea.Msg {
		return externalEditorDoneMsg{err: err}
	}), nil
}

// finish re-reads the whole temp file as the new body and removes it.
func (s *editSession) finish() (string, error) {
	defer func() { _ = os.Remove(s.path) }()
	b, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read back editor temp file: %w", err)
	}
	return string(b), nil
}
