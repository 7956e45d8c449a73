package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zettel-cli/internal/model"
)

func TestStartExternalEditor_SeedsTempFile(t *testing.T) {
	t.Parallel()

	session, cmd, err := startExternalEditor("vi", "seed body\n")
	if err != nil {
		t.Fatalf("startExternalEditor: %v", err)
	}
	defer os.Remove(session.path)

	if cmd == nil {
		t.Fatalf("expected an exec command")
	}
	if !strings.HasSuffix(session.path, ".md") {
		t.Fatalf("expected a markdown temp suffix, got %q", session.path)
	}
	b, err := os.ReadFile(session.path)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if string(b) != "seed body\n" {
		t.Fatalf("temp file = %q, want seeded body", b)
	}
}

func TestEditSessionFinish_ReadsBackAndRemoves(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "edited.md")
	if err := os.WriteFile(path, []byte("after\n"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	s := &editSession{path: path, before: "before"}
	body, err := s.finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if body != "after\n" {
		t.Fatalf("body = %q, want %q", body, "after\n")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be removed, stat err=%v", err)
	}
}

func TestFinishEdit_PersistsReReadBody(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{
		users:   []model.User{{ID: 1, Name: "root", LastVisitedZettel: ptrInt64(7)}},
		zettels: []*model.Zettel{{ID: 7, Path: "inbox", Body: "before"}},
	}
	e := newTestEngine(t, f, model.SystemConfig{
		UserMode:       model.SingleUserAutoLogin,
		TerminalEditor: "vi",
	})
	s := e.current.(*zettelScreen)

	dir := t.TempDir()
	path := filepath.Join(dir, "edited.md")
	if err := os.WriteFile(path, []byte("after edit\n"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	e.editing = &editSession{path: path, before: "before"}

	e.Update(externalEditorDoneMsg{err: nil})

	if s.zettel.Body != "after edit\n" {
		t.Fatalf("body = %q, want the re-read editor content", s.zettel.Body)
	}
	if len(f.updateCalls) != 1 {
		t.Fatalf("expected exactly one UpdateZettel call, got %d", len(f.updateCalls))
	}
	if got := f.updateCalls[0].Body; got != "after edit\n" {
		t.Fatalf("UpdateZettel body = %q, want the re-read editor content", got)
	}
}
