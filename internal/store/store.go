package store

import (
	"context"
	"errors"

	"zettel-cli/internal/model"
)

// Sentinel errors for conditions callers branch on. Everything else is a
// backend failure and is wrapped with the failing operation.
var (
	// ErrSingleUserNotFound is returned by LoginSingleUser when the
	// conventional single account cannot be logged in (zero users,
	// multiple users, or a root account with a changed password).
	ErrSingleUserNotFound = errors.New("single user not found")

	// ErrZettelNotFound is returned by GetZettel for an unknown id.
	// Lookups by id come from persisted references, so absence here is an
	// error rather than a nil result.
	ErrZettelNotFound = errors.New("zettel not found")
)

// Storage is the capability set the view engine consumes. Absence that is
// part of normal operation (unknown username, wrong password, unknown
// zettel url, taken username) is modeled as a nil result with a nil error,
// never as an error value.
//
// The engine issues at most one call at a time and blocks on it;
// implementations only need to serialize their own internals.
type Storage interface {
	// LoginSingleUser succeeds only when the database holds exactly one
	// user, reachable through the root/empty-password convention.
	LoginSingleUser(ctx context.Context) (*model.User, error)

	// Login returns nil for an unknown username or a wrong password.
	Login(ctx context.Context, username, password string) (*model.User, error)

	// Register returns nil when the username is already taken.
	Register(ctx context.Context, username, password string) (*model.User, error)

	GetZettels(ctx context.Context, userID int64, search model.SearchOpts) ([]model.ZettelHeader, error)
	GetZettel(ctx context.Context, userID, id int64) (*model.Zettel, error)

	// GetZettelByURL returns nil when no zettel has the given path.
	GetZettelByURL(ctx context.Context, userID int64, url string) (*model.Zettel, error)

	// UpdateZettel upserts: a zettel with ID 0 is inserted and assigned an
	// id in place, an existing id is updated.
	UpdateZettel(ctx context.Context, userID int64, z *model.Zettel) error

	// SetUserLastVisitedZettel records (or clears, with nil) the zettel
	// restored as active on the user's next login.
	SetUserLastVisitedZettel(ctx context.Context, userID int64, zettelID *int64) error

	SystemConfig(ctx context.Context) (model.SystemConfig, error)
	SetSystemConfig(ctx context.Context, cfg model.SystemConfig) error

	Close() error
}
