package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"zettel-cli/internal/model"
)

// singleUserName is the account LoginSingleUser targets. Single-user
// databases are seeded with it on first run.
const singleUserName = "root"

// SQLite is the Storage implementation backing the CLI and TUI. A single
// *sql.DB serializes access to the database file.
type SQLite struct {
	db *sql.DB
}

var _ Storage = (*SQLite)(nil)

// DefaultPath returns the database location used when --db is not given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".zettel", "zettel.sqlite"), nil
}

// Open opens (creating if missing) the database at path, applies the
// schema, seeds default config, and returns the backend together with the
// system configuration snapshot.
func Open(ctx context.Context, path string) (*SQLite, model.SystemConfig, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, model.SystemConfig{}, fmt.Errorf("create database dir: %w", err)
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, model.SystemConfig{}, fmt.Errorf("open database: %w", err)
	}
	// One connection: the engine issues one call at a time, and a single
	// handle sidesteps table-lock races between pooled connections.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, model.SystemConfig{}, fmt.Errorf("apply pragma: %w", err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, model.SystemConfig{}, err
	}
	cfg, err := s.SystemConfig(ctx)
	if err != nil {
		_ = db.Close()
		return nil, model.SystemConfig{}, err
	}
	if err := s.seedSingleUser(ctx, cfg); err != nil {
		_ = db.Close()
		return nil, model.SystemConfig{}, err
	}
	return s, cfg, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			last_visited_zettel INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS zettels (
			zettel_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			path TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			UNIQUE(user_id, path)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_zettels_user ON zettels(user_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	// Seed config defaults without clobbering existing values.
	defaults := map[string]any{
		"user_mode":       string(model.SingleUserAutoLogin),
		"terminal_editor": nil,
	}
	for key, val := range defaults {
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("encode config default %q: %w", key, err)
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO config (key, value) VALUES (?, ?)`, key, string(b)); err != nil {
			return fmt.Errorf("seed config %q: %w", key, err)
		}
	}
	return nil
}

// seedSingleUser creates the root account on first run of a single-user
// database so auto-login has something to log in to.
func (s *SQLite) seedSingleUser(ctx context.Context, cfg model.SystemConfig) error {
	if cfg.UserMode == model.MultiUser {
		return nil
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err := s.Register(ctx, singleUserName, "")
	return err
}

func (s *SQLite) LoginSingleUser(ctx context.Context) (*model.User, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if n != 1 {
		return nil, ErrSingleUserNotFound
	}
	u, err := s.Login(ctx, singleUserName, "")
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrSingleUserNotFound
	}
	return u, nil
}

func (s *SQLite) Login(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.UserByName(ctx, username)
	if err != nil || u == nil {
		return nil, err
	}
	// bcrypt compare is constant-time on the hash input.
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return u, nil
}

func (s *SQLite) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("register: empty username")
	}
	if existing, err := s.UserByName(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password) VALUES (?, ?)`, username, string(hash))
	if err != nil {
		// A concurrent insert can still trip the UNIQUE constraint after
		// the pre-check; treat it as "taken", not as a backend failure.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, nil
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user id: %w", err)
	}
	return &model.User{ID: id, Name: username, PasswordHash: string(hash)}, nil
}

// Users lists all accounts, ordered by name. Used by the CLI, not part of
// the Storage contract the engine consumes.
func (s *SQLite) Users(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, username, last_visited_zettel FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		var last sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Name, &last); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if last.Valid {
			v := last.Int64
			u.LastVisitedZettel = &v
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// UserByName returns nil when no account has the given username.
func (s *SQLite) UserByName(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, password, last_visited_zettel FROM users WHERE username = ?`,
		username)
	var u model.User
	var last sql.NullInt64
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if last.Valid {
		v := last.Int64
		u.LastVisitedZettel = &v
	}
	return &u, nil
}

func (s *SQLite) GetZettels(ctx context.Context, userID int64, search model.SearchOpts) ([]model.ZettelHeader, error) {
	query := `SELECT zettel_id, path FROM zettels WHERE user_id = ?`
	args := []any{userID}
	if q := strings.TrimSpace(search.Query); q != "" {
		query += ` AND (path LIKE ? OR body LIKE ?)`
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list zettels: %w", err)
	}
	defer rows.Close()

	var out []model.ZettelHeader
	for rows.Next() {
		var h model.ZettelHeader
		if err := rows.Scan(&h.ID, &h.Path); err != nil {
			return nil, fmt.Errorf("scan zettel header: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list zettels: %w", err)
	}
	return out, nil
}

func (s *SQLite) GetZettel(ctx context.Context, userID, id int64) (*model.Zettel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT zettel_id, path, body FROM zettels WHERE user_id = ? AND zettel_id = ?`,
		userID, id)
	var z model.Zettel
	if err := row.Scan(&z.ID, &z.Path, &z.Body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("zettel %d: %w", id, ErrZettelNotFound)
		}
		return nil, fmt.Errorf("fetch zettel: %w", err)
	}
	return &z, nil
}

func (s *SQLite) GetZettelByURL(ctx context.Context, userID int64, url string) (*model.Zettel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT zettel_id, path, body FROM zettels WHERE user_id = ? AND path = ?`,
		userID, url)
	var z model.Zettel
	if err := row.Scan(&z.ID, &z.Path, &z.Body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch zettel by url: %w", err)
	}
	return &z, nil
}

func (s *SQLite) UpdateZettel(ctx context.Context, userID int64, z *model.Zettel) error {
	if z == nil {
		return errors.New("update zettel: nil zettel")
	}
	if strings.TrimSpace(z.Path) == "" {
		return errors.New("update zettel: empty path")
	}
	if z.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO zettels (user_id, path, body) VALUES (?, ?, ?)
			 ON CONFLICT(user_id, path) DO UPDATE SET body = excluded.body`,
			userID, z.Path, z.Body)
		if err != nil {
			return fmt.Errorf("insert zettel: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert zettel id: %w", err)
		}
		z.ID = id
		return nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE zettels SET path = ?, body = ? WHERE user_id = ? AND zettel_id = ?`,
		z.Path, z.Body, userID, z.ID)
	if err != nil {
		return fmt.Errorf("update zettel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update zettel: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("zettel %d: %w", z.ID, ErrZettelNotFound)
	}
	return nil
}

func (s *SQLite) SetUserLastVisitedZettel(ctx context.Context, userID int64, zettelID *int64) error {
	var v sql.NullInt64
	if zettelID != nil {
		v = sql.NullInt64{Int64: *zettelID, Valid: true}
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_visited_zettel = ? WHERE user_id = ?`, v, userID); err != nil {
		return fmt.Errorf("set last visited zettel: %w", err)
	}
	return nil
}

// SystemConfig assembles the snapshot from the key-value config table.
// Values are stored as JSON so absent/optional settings round-trip as null.
func (s *SQLite) SystemConfig(ctx context.Context) (model.SystemConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM config`)
	if err != nil {
		return model.SystemConfig{}, fmt.Errorf("load config: %w", err)
	}
	defer rows.Close()

	cfg := model.SystemConfig{UserMode: model.SingleUserAutoLogin}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return model.SystemConfig{}, fmt.Errorf("scan config: %w", err)
		}
		switch key {
		case "user_mode":
			var v string
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				return model.SystemConfig{}, fmt.Errorf("decode config user_mode: %w", err)
			}
			mode, ok := model.ParseUserMode(v)
			if !ok {
				return model.SystemConfig{}, fmt.Errorf("decode config user_mode: unknown mode %q", v)
			}
			cfg.UserMode = mode
		case "terminal_editor":
			var v *string
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				return model.SystemConfig{}, fmt.Errorf("decode config terminal_editor: %w", err)
			}
			if v != nil {
				cfg.TerminalEditor = *v
			}
		}
	}
	if err := rows.Err(); err != nil {
		return model.SystemConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (s *SQLite) SetSystemConfig(ctx context.Context, cfg model.SystemConfig) error {
	if _, ok := model.ParseUserMode(string(cfg.UserMode)); !ok {
		return fmt.Errorf("set config: unknown user mode %q", cfg.UserMode)
	}
	var editor any
	if strings.TrimSpace(cfg.TerminalEditor) != "" {
		editor = cfg.TerminalEditor
	}
	entries := map[string]any{
		"user_mode":       string(cfg.UserMode),
		"terminal_editor": editor,
	}
	for key, val := range entries {
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("encode config %q: %w", key, err)
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO config (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, string(b)); err != nil {
			return fmt.Errorf("save config %q: %w", key, err)
		}
	}
	return nil
}
