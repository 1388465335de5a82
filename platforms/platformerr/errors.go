// Package platformerr defines the error taxonomy shared by all the
// platform adapters. The dispatcher is the only place these are
// flattened into user-facing strings; inside the adapters they are
// matched with errors.Is and errors.As.
package platformerr

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned by operations that require a live
// session when there is none. No network I/O happens before this check.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthError covers bad credentials, expired sessions, and the scraped
// platform handing back a login page where data was expected.
type AuthError struct {
	Platform string
	Reason   string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s authentication failed: %s: %v", e.Platform, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s authentication failed: %s", e.Platform, e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError covers network failures, timeouts, non-2xx statuses and
// proxy failures. It carries enough identifiers to say which team's
// fetch failed.
type FetchError struct {
	Platform string
	LeagueID string
	TeamID   string
	Timeout  bool
	Err      error
}

func (e *FetchError) Error() string {
	kind := "fetch"
	if e.Timeout {
		kind = "fetch timeout"
	}
	return fmt.Sprintf("%s %s failed (league=%s team=%s): %v", e.Platform, kind, e.LeagueID, e.TeamID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError means no extraction strategy yielded usable data. It never
// reaches the dispatcher - the scrape adapter absorbs it into the
// placeholder fallback - but strategies return it so their failures can
// be logged individually.
type ParseError struct {
	Strategy string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse strategy %s failed: %v", e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError means the fetch succeeded but the requested league or
// team was not in the response.
type NotFoundError struct {
	Platform string
	Kind     string // "league" or "team"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s %s not found", e.Platform, e.Kind, e.ID)
}

// UnsupportedPlatformError is produced by the dispatcher for platform
// tags it cannot route.
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("%s is not a supported platform", e.Platform)
}
