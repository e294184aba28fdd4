// Package session persists solver workspaces so a user can close the app
// and resume a chain later with positions and view state intact.
//
// Implementations:
//   - FileStore: JSON files in a config directory for CLI usage
//   - RedisStore: Redis-backed storage for the HTTP server
//
// A session captures everything needed to rebuild a workspace: the solve
// inputs (target, rate, recipe selections), the view toggles, and the node
// positions the user dragged into place. Positions are restored through the
// layout settling path rather than re-running the hierarchical placement.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// DefaultTTL is the default session retention.
const DefaultTTL = 30 * 24 * time.Hour

// Session stores a saved solver workspace.
type Session struct {
	ID         string                `json:"id"`
	Name       string                `json:"name,omitempty"`
	TargetID   string                `json:"target_id"`
	TargetRate float64               `json:"target_rate"`
	Selections map[string]int        `json:"selections,omitempty"`
	Positions  map[string][2]float64 `json:"positions,omitempty"`

	ShowRaw      bool `json:"show_raw"`
	ShowDisposal bool `json:"show_disposal"`
	Physics      bool `json:"physics"`

	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
	Zoom float64 `json:"zoom"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Touch refreshes UpdatedAt and extends the expiration by ttl.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now()
	s.UpdatedAt = now
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)

	// Cleanup removes expired sessions (may be no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// New creates a session for a solved workspace.
func New(targetID string, targetRate float64, ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		TargetID:   targetID,
		TargetRate: targetRate,
		Zoom:       1.0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}
