// Package store persists platform sessions locally. The only durable
// state in the system is the scraped platform's login session, which
// has to survive process restarts so users are not asked to log in to
// ESPN every time.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/morganjb52/ffb/model"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	// Get returns the saved session for the platform, or
	// ErrSessionNotFound if none exists.
	Get(ctx context.Context, platform string) (*model.PlatformConnection, error)
	Save(ctx context.Context, conn *model.PlatformConnection) error
	Delete(ctx context.Context, platform string) error
	Close() error
}

type sqliteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	platform   TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	cookie     TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	last_sync  INTEGER NOT NULL DEFAULT 0
);`

// New opens, creating if needed, the session database at path. Use
// ":memory:" in tests.
func New(ctx context.Context, path string) (SessionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening session db: %w", err)
	}

	// sqlite serializes writers anyway, and a ":memory:" database only
	// exists on the connection that created it.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating sessions table: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(ctx context.Context, platform string) (*model.PlatformConnection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT username, cookie, expires_at, last_sync FROM sessions WHERE platform = ?`, platform)

	var username, cookie string
	var expiresAt, lastSync int64
	if err := row.Scan(&username, &cookie, &expiresAt, &lastSync); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("error reading session for %s: %w", platform, err)
	}

	conn := &model.PlatformConnection{
		Platform:  platform,
		Connected: true,
		Username:  username,
		Cookie:    cookie,
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}
	if lastSync > 0 {
		conn.LastSync = time.Unix(lastSync, 0).UTC()
	}
	return conn, nil
}

func (s *sqliteStore) Save(ctx context.Context, conn *model.PlatformConnection) error {
	var lastSync int64
	if !conn.LastSync.IsZero() {
		lastSync = conn.LastSync.Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (platform, username, cookie, expires_at, last_sync)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (platform) DO UPDATE SET
			username = excluded.username,
			cookie = excluded.cookie,
			expires_at = excluded.expires_at,
			last_sync = excluded.last_sync`,
		conn.Platform, conn.Username, conn.Cookie, conn.ExpiresAt.Unix(), lastSync)
	if err != nil {
		return fmt.Errorf("error saving session for %s: %w", conn.Platform, err)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, platform string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE platform = ?`, platform); err != nil {
		return fmt.Errorf("error deleting session for %s: %w", platform, err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
