package model

import (
	"time"
)

// PlatformConnection is the per-platform authentication state. At most
// one exists per platform per user session. For ESPN it carries the
// scraping session cookie; Sleeper needs none and Yahoo holds a bearer
// token owned by the oauth2 layer.
type PlatformConnection struct {
	Platform  string
	Connected bool
	Username  string
	Cookie    string
	ExpiresAt time.Time
	LastSync  time.Time
}

func (c *PlatformConnection) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ConnectionResult is what a connect attempt returns to the caller.
// Adapter errors never escape as errors - they are flattened into the
// Error string here.
type ConnectionResult struct {
	Success bool
	Team    *FantasyTeam
	Lineup  *Lineup
	Error   string
}

// SyncResult records the outcome of one synchronization attempt,
// successful or not, in a uniform shape.
type SyncResult struct {
	ID        string
	Success   bool
	TeamID    string
	Platform  string
	Message   string
	Timestamp time.Time
}
