package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"zettel-cli/internal/model"
	"zettel-cli/internal/store"
)

type fakeStorage struct {
	users   []model.User
	zettels []*model.Zettel

	lastVisitedCalls []*int64
	updateCalls      []model.Zettel

	failWith error
}

func (f *fakeStorage) LoginSingleUser(ctx context.Context) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if len(f.users) != 1 {
		return nil, store.ErrSingleUserNotFound
	}
	u := f.users[0]
	return &u, nil
}

func (f *fakeStorage) Login(ctx context.Context, username, password string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Name == username && u.PasswordHash == password {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) Register(ctx context.Context, username, password string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Name == username {
			return nil, nil
		}
	}
	u := model.User{ID: int64(len(f.users) + 1), Name: username, PasswordHash: password}
	f.users = append(f.users, u)
	return &u, nil
}

func (f *fakeStorage) GetZettels(ctx context.Context, userID int64, search model.SearchOpts) ([]model.ZettelHeader, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []model.ZettelHeader
	for _, z := range f.zettels {
		out = append(out, model.ZettelHeader{ID: z.ID, Path: z.Path})
	}
	return out, nil
}

func (f *fakeStorage) GetZettel(ctx context.Context, userID, id int64) (*model.Zettel, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, z := range f.zettels {
		if z.ID == id {
			out := *z
			return &out, nil
		}
	}
	return nil, store.ErrZettelNotFound
}

func (f *fakeStorage) GetZettelByURL(ctx context.Context, userID int64, url string) (*model.Zettel, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, z := range f.zettels {
		if z.Path == url {
			out := *z
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) UpdateZettel(ctx context.Context, userID int64, z *model.Zettel) error {
	if f.failWith != nil {
		return f.failWith
	}
	if z.ID == 0 {
		z.ID = int64(len(f.zettels) + 100)
	}
	f.updateCalls = append(f.updateCalls, *z)
	return nil
}

func (f *fakeStorage) SetUserLastVisitedZettel(ctx context.Context, userID int64, zettelID *int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.lastVisitedCalls = append(f.lastVisitedCalls, zettelID)
	return nil
}

func (f *fakeStorage) SystemConfig(ctx context.Context) (model.SystemConfig, error) {
	return model.SystemConfig{UserMode: model.MultiUser}, nil
}

func (f *fakeStorage) SetSystemConfig(ctx context.Context, cfg model.SystemConfig) error {
	if f.failWith != nil {
		return f.failWith
	}
	return nil
}

func (f *fakeStorage) Close() error { return nil }

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testUser() model.User {
	return model.User{ID: 1, Name: "root"}
}

func newTestEngine(t *testing.T, f *fakeStorage, cfg model.SystemConfig) *engine {
	t.Helper()
	e, err := newEngine(f, cfg)
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	return e
}

func TestInitialScreen_AutoLoginSingleUser(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{users: []model.User{testUser()}}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.SingleUserAutoLogin})

	s, ok := e.current.(*zettelScreen)
	if !ok {
		t.Fatalf("expected zettel screen, got %T", e.current)
	}
	if s.user.Name != "root" {
		t.Fatalf("expected root user, got %q", s.user.Name)
	}
}

func TestInitialScreen_AutoLoginFailsWithoutExactlyOneUser(t *testing.T) {
	t.Parallel()

	for _, users := range [][]model.User{
		nil,
		{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}},
	} {
		f := &fakeStorage{users: users}
		e := newTestEngine(t, f, model.SystemConfig{UserMode: model.SingleUserAutoLogin})

		s, ok := e.current.(*loginScreen)
		if !ok {
			t.Fatalf("expected login screen for %d users, got %T", len(users), e.current)
		}
		if s.errText == "" {
			t.Fatalf("expected a populated error on the login screen")
		}
	}
}

func TestInitialScreen_ManualModesAlwaysStartAtLogin(t *testing.T) {
	t.Parallel()

	for _, mode := range []model.UserMode{model.SingleUserManualLogin, model.MultiUser} {
		// Even with exactly one user, manual modes must not auto-login.
		f := &fakeStorage{users: []model.User{testUser()}}
		e := newTestEngine(t, f, model.SystemConfig{UserMode: mode})

		s, ok := e.current.(*loginScreen)
		if !ok {
			t.Fatalf("mode %s: expected login screen, got %T", mode, e.current)
		}
		if s.errText != "" {
			t.Fatalf("mode %s: expected no error, got %q", mode, s.errText)
		}
	}
}

func TestNavigate_ExistingPathRecordsLastVisited(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{
		users:   []model.User{testUser()},
		zettels: []*model.Zettel{{ID: 7, Path: "inbox", Body: "hello"}},
	}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.SingleUserAutoLogin})
	s := e.current.(*zettelScreen)

	e.resolveZettel(s, zettelTransition{kind: zettelNavigate, path: "inbox"})

	next, ok := e.current.(*zettelScreen)
	if !ok {
		t.Fatalf("expected zettel screen, got %T", e.current)
	}
	if next.zettel == nil || next.zettel.ID != 7 || next.zettel.Body != "hello" {
		t.Fatalf("expected zettel 7 active, got %+v", next.zettel)
	}
	if len(f.lastVisitedCalls) != 1 || f.lastVisitedCalls[0] == nil || *f.lastVisitedCalls[0] != 7 {
		t.Fatalf("expected exactly one last-visited call with id 7, got %v", f.lastVisitedCalls)
	}
}

func TestNavigate_UnknownPathOpensUnsavedZettel(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{users: []model.User{testUser()}}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.SingleUserAutoLogin})
	s := e.current.(*zettelScreen)

	e.resolveZettel(s, zettelTransition{kind: zettelNavigate, path: "new/idea"})

	next := e.current.(*zettelScreen)
	if next.zettel == nil || next.zettel.ID != 0 || next.zettel.Path != "new/idea" || next.zettel.Body != "" {
		t.Fatalf("expected fresh unsaved zettel for new/idea, got %+v", next.zettel)
	}
	if len(f.lastVisitedCalls) != 0 || len(f.updateCalls) != 0 {
		t.Fatalf("expected no storage mutation for an unknown path")
	}
}

func TestNavigate_SysConfigRoundTripsThroughConfigScreen(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{users: []model.User{testUser()}}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.SingleUserAutoLogin})
	prior := e.current.(*zettelScreen)

	e.resolveZettel(prior, zettelTransition{kind: zettelNavigate, path: "sys:config"})

	cs, ok := e.current.(*configScreen)
	if !ok {
		t.Fatalf("expected config screen, got %T", e.current)
	}

	e.resolveConfig(cs, configTransition{kind: configPop})
	if e.current != screen(prior) {
		t.Fatalf("expected pop to restore the exact prior screen")
	}
	if cs.parent != nil {
		t.Fatalf("expected the return target to be consumed on pop")
	}
}

func TestNavigate_UnknownSysPageAlertsAndKeepsScreen(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{users: []model.User{testUser()}}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.SingleUserAutoLogin})
	prior := e.current

	e.resolveZettel(prior.(*zettelScreen), zettelTransition{kind: zettelNavigate, path: "sys:nope"})

	if e.alert == nil {
		t.Fatalf("expected a blocking alert for a reserved sys page")
	}
	if e.current != prior {
		t.Fatalf("expected the current screen to stay unchanged")
	}

	// Unmatched keys must not dismiss the alert.
	e.Update(keyRune('x'))
	if e.alert == nil {
		t.Fatalf("alert dismissed by a key outside its action set")
	}

	e.Update(keyRune('c'))
	if e.alert != nil {
		t.Fatalf("expected the continue action to dismiss the alert")
	}
	if e.current != prior {
		t.Fatalf("expected the screen to be unchanged after dismissal")
	}
}

func TestEdit_WithoutConfiguredEditorNeverMutates(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{
		users:   []model.User{{ID: 1, Name: "root", LastVisitedZettel: ptrInt64(7)}},
		zettels: []*model.Zettel{{ID: 7, Path: "inbox", Body: "before"}},
	}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.SingleUserAutoLogin})
	s := e.current.(*zettelScreen)

	e.resolveZettel(s, zettelTransition{kind: zettelEdit})

	if e.alert == nil {
		t.Fatalf("expected the editor-unavailable alert")
	}
	if s.zettel.Body != "before" {
		t.Fatalf("expected body unchanged, got %q", s.zettel.Body)
	}
	if len(f.updateCalls) != 0 {
		t.Fatalf("expected no UpdateZettel call, got %d", len(f.updateCalls))
	}
	if e.current != screen(s) {
		t.Fatalf("expected no transition")
	}
}

func TestLogout_ReplacesWithFreshLoginScreen(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{users: []model.User{testUser()}}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.SingleUserAutoLogin})
	s := e.current.(*zettelScreen)

	e.resolveZettel(s, zettelTransition{kind: zettelLogout})

	ls, ok := e.current.(*loginScreen)
	if !ok {
		t.Fatalf("expected login screen after logout, got %T", e.current)
	}
	if ls.errText != "" {
		t.Fatalf("expected no carried error after logout, got %q", ls.errText)
	}
}

func TestStorageFailureDuringNavigationIsFatal(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{users: []model.User{testUser()}}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.SingleUserAutoLogin})
	s := e.current.(*zettelScreen)

	boom := errors.New("backend down")
	f.failWith = boom
	_, cmd := e.resolveZettel(s, zettelTransition{kind: zettelNavigate, path: "inbox"})

	if e.err == nil || !errors.Is(e.err, boom) {
		t.Fatalf("expected the storage failure to be recorded as fatal, got %v", e.err)
	}
	if cmd == nil {
		t.Fatalf("expected a quit command on fatal error")
	}
}

func TestLoginScreen_SubmitFlow(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{users: []model.User{{ID: 1, Name: "alice", PasswordHash: "pw"}}}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.MultiUser})
	ls := e.current.(*loginScreen)

	for _, r := range "alice" {
		e.Update(keyRune(r))
	}
	e.Update(tea.KeyMsg{Type: tea.KeyEnter}) // focus password
	for _, r := range "wrong" {
		e.Update(keyRune(r))
	}
	e.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if _, ok := e.current.(*loginScreen); !ok {
		t.Fatalf("expected to stay on login after bad credentials")
	}
	if ls.errText == "" {
		t.Fatalf("expected a rejected-credentials message")
	}

	for _, r := range "pw" {
		e.Update(keyRune(r))
	}
	e.Update(tea.KeyMsg{Type: tea.KeyEnter})

	zs, ok := e.current.(*zettelScreen)
	if !ok {
		t.Fatalf("expected zettel screen after login, got %T", e.current)
	}
	if zs.user.Name != "alice" {
		t.Fatalf("expected alice logged in, got %q", zs.user.Name)
	}
}

func TestRegisterScreen_TakenUsernameStays(t *testing.T) {
	t.Parallel()

	f := &fakeStorage{users: []model.User{{ID: 1, Name: "alice", PasswordHash: "pw"}}}
	e := newTestEngine(t, f, model.SystemConfig{UserMode: model.MultiUser})

	e.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	rs, ok := e.current.(*registerScreen)
	if !ok {
		t.Fatalf("expected register screen, got %T", e.current)
	}

	for _, r := range "alice" {
		e.Update(keyRune(r))
	}
	e.Update(tea.KeyMsg{Type: tea.KeyEnter})
	e.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if _, ok := e.current.(*registerScreen); !ok {
		t.Fatalf("expected to stay on register for a taken username")
	}
	if rs.errText == "" {
		t.Fatalf("expected a username-taken message")
	}
}

func ptrInt64(v int64) *int64 { return &v }
