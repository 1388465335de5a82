package espn

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/store"
)

// sessionTTL is how long a captured login cookie is trusted before the
// user has to log in again.
const sessionTTL = 7 * 24 * time.Hour

// Session is the one piece of cross-call mutable state the ESPN adapter
// holds: the login cookie and its expiry. It is persisted through the
// SessionStore so a restart does not force a fresh login.
//
// Concurrent Authenticate calls are not serialized here; the last
// writer wins. Callers must not overlap authenticate calls.
type Session struct {
	clock    clock.Clock
	sessions store.SessionStore
	conn     *model.PlatformConnection
}

// LoadSession restores any persisted ESPN session. A missing session is
// not an error, the Session just starts unauthenticated.
func LoadSession(ctx context.Context, clk clock.Clock, sessions store.SessionStore) (*Session, error) {
	s := &Session{clock: clk, sessions: sessions}

	conn, err := sessions.Get(ctx, model.PlatformESPN)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return s, nil
		}
		return nil, err
	}

	s.conn = conn
	return s, nil
}

// Set records a fresh login and persists it. The expiry clock starts
// now.
func (s *Session) Set(ctx context.Context, username, cookie string) error {
	conn := &model.PlatformConnection{
		Platform:  model.PlatformESPN,
		Connected: true,
		Username:  username,
		Cookie:    cookie,
		ExpiresAt: s.clock.Now().Add(sessionTTL),
	}
	s.conn = conn

	if err := s.sessions.Save(ctx, conn); err != nil {
		return err
	}
	return nil
}

// IsAuthenticated reports whether a live session exists. Crossing the
// expiry threshold flips this to false and clears the persisted record
// as a side effect, once.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	if s.conn == nil {
		return false
	}
	if s.conn.Expired(s.clock.Now()) {
		log.Printf("espn session for %s expired, clearing", s.conn.Username)
		s.conn = nil
		if err := s.sessions.Delete(ctx, model.PlatformESPN); err != nil {
			log.Printf("error clearing expired espn session: %v", err)
		}
		return false
	}
	return true
}

// Cookie returns the session cookie, or "" when unauthenticated.
func (s *Session) Cookie(ctx context.Context) string {
	if !s.IsAuthenticated(ctx) {
		return ""
	}
	return s.conn.Cookie
}

func (s *Session) Username() string {
	if s.conn == nil {
		return ""
	}
	return s.conn.Username
}

// Clear drops the session, in memory and in the store.
func (s *Session) Clear(ctx context.Context) error {
	s.conn = nil
	return s.sessions.Delete(ctx, model.PlatformESPN)
}
