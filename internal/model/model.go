package model

type UserMode string

const (
	// SingleUserAutoLogin skips the login screen entirely and logs in the
	// conventional single account at startup.
	SingleUserAutoLogin   UserMode = "single_user_auto_login"
	SingleUserManualLogin UserMode = "single_user_manual_login"
	MultiUser             UserMode = "multi_user"
)

func ParseUserMode(s string) (UserMode, bool) {
	switch UserMode(s) {
	case SingleUserAutoLogin, SingleUserManualLogin, MultiUser:
		return UserMode(s), true
	}
	return "", false
}

// SystemConfig is loaded once when storage connects and treated as an
// immutable snapshot afterwards. The Config screen persists changes and
// patches the running copy.
type SystemConfig struct {
	UserMode UserMode `json:"userMode"`
	// TerminalEditor is the external editor invoked for zettel bodies.
	// Empty means none is configured.
	TerminalEditor string `json:"terminalEditor,omitempty"`
}

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`

	// LastVisitedZettel is restored as the active zettel on login.
	LastVisitedZettel *int64 `json:"lastVisitedZettel,omitempty"`
}

// Zettel is a single note. ID is zero until the zettel has been persisted;
// Path is unique per user.
type Zettel struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
	Body string `json:"body"`
}

type ZettelHeader struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

type SearchOpts struct {
	// Query is matched as a substring against zettel paths and bodies.
	// Empty lists everything.
	Query string `json:"query,omitempty"`
}
