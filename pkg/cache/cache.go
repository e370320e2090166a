// Package cache stores compiled timeline layouts and rendered artifacts.
//
// # Overview
//
// Layout compilation is deterministic, so a compiled layout is fully
// identified by its inputs: the record set, the view state and the layout
// config. The pipeline hashes those inputs into a key (see [Keyer]) and
// stores the serialized result in a [Cache].
//
// # Backends
//
//   - [NullCache]: never stores anything; caching disabled
//   - [FileCache]: JSON entries on disk, for the CLI
//   - [RedisCache]: shared cache for the API server
//
// # Keys
//
// Keys are "<kind>:<sha256>" strings. [ScopedKeyer] prefixes them so that
// per-user entries can be isolated and invalidated together.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLLayout applies to compiled layouts. Layouts are keyed by content, so
	// the TTL only bounds disk and memory use.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered DOT and SVG output.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLRecords applies to record snapshots fetched from a store.
	TTLRecords = 5 * time.Minute
)

// Cache is a byte-oriented key-value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (hit == false) and not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts holds the view inputs that affect a compiled layout.
type LayoutKeyOpts struct {
	Expanded      []string `json:"expanded,omitempty"`
	FocusedID     string   `json:"focused,omitempty"`
	SelectedID    string   `json:"selected,omitempty"`
	HighlightedID string   `json:"highlighted,omitempty"`
	BlurScope     string   `json:"blur,omitempty"`
	ConfigHash    string   `json:"config"`
}

// ArtifactKeyOpts holds the render inputs that affect an artifact.
type ArtifactKeyOpts struct {
	Format          string `json:"format"`
	Detailed        bool   `json:"detailed,omitempty"`
	HideAffordances bool   `json:"hideAffordances,omitempty"`
}

// Keyer derives cache keys from inputs.
type Keyer interface {
	// LayoutKey identifies a compiled layout of the given record set.
	LayoutKey(recordsHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of the given layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// RecordsKey identifies a user's record snapshot.
	RecordsKey(userID string) string
}

// DefaultKeyer hashes inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(recordsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", recordsHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// RecordsKey returns "records:<userID>". User ids are not hashed so that a
// user's snapshot can be invalidated by key.
func (DefaultKeyer) RecordsKey(userID string) string {
	return "records:" + userID
}
