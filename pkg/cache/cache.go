// Package cache provides content-addressed caching for the solve → layout →
// render pipeline.
//
// Implementations:
//   - FileCache: directory-backed cache for CLI usage
//   - NullCache: no-op cache for tests or --no-cache
//
// Keys are produced by a Keyer so that all pipeline stages agree on the key
// scheme, and a ScopedKeyer can namespace keys per user or session.
package cache

import (
	"context"
	"time"
)

// TTLs per pipeline stage. Plans and layouts are cheap to recompute but the
// catalog hash in their keys already invalidates them on data changes, so
// the TTLs mostly bound disk growth.
const (
	TTLPlan     = 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all pipeline stages.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// PlanKeyOpts are the solve inputs that shape a plan cache key.
type PlanKeyOpts struct {
	TargetID   string
	TargetRate float64
	Selections map[string]int
	Strict     bool
}

// LayoutKeyOpts are the layout inputs that shape a layout cache key.
type LayoutKeyOpts struct {
	ShowRaw      bool
	ShowDisposal bool
	Physics      bool
	Frames       int
}

// ArtifactKeyOpts are the render inputs that shape an artifact cache key.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
}

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// PlanKey keys a solved plan by catalog hash and solve options.
	PlanKey(catalogHash string, opts PlanKeyOpts) string

	// LayoutKey keys a computed layout by plan hash and layout options.
	LayoutKey(planHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by layout hash and render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme: prefix:sha256(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// PlanKey generates a key for plan caching.
func (k *DefaultKeyer) PlanKey(catalogHash string, opts PlanKeyOpts) string {
	return hashKey("plan", catalogHash, opts.TargetID, opts.TargetRate, sortedSelections(opts.Selections), opts.Strict)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(planHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", planHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
