// Package cache provides result caching for carved images and energy maps.
//
// Three backends share the [Cache] interface:
//
//   - [FileCache] stores entries as JSON files under a directory (CLI default)
//   - [RedisCache] stores entries in Redis (server deployments)
//   - [NullCache] stores nothing
//
// Keys are produced by a [Keyer] so that callers never hand-assemble them.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLCarve  = 7 * 24 * time.Hour
	TTLEnergy = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CarveKeyOpts are the option fields that affect a carve result.
type CarveKeyOpts struct {
	Width     int    `json:"w"`
	Height    int    `json:"h"`
	Direction string `json:"dir"`
	Seed      uint64 `json:"seed"`
	Format    string `json:"fmt"`
	Overlay   bool   `json:"overlay,omitempty"`
	// OverlayWidth and OverlayDim only apply with Overlay.
	OverlayWidth float64 `json:"overlay_width,omitempty"`
	OverlayDim   float64 `json:"overlay_dim,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// CarveKey keys a carve result by source hash and options.
	CarveKey(sourceHash string, opts CarveKeyOpts) string
	// EnergyKey keys an energy map export.
	EnergyKey(sourceHash, format string) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) CarveKey(sourceHash string, opts CarveKeyOpts) string {
	return hashKey("carve", sourceHash, opts)
}

func (DefaultKeyer) EnergyKey(sourceHash, format string) string {
	return hashKey("energy", sourceHash, format)
}
