package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis without seeing each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CarveKey generates a prefixed key for carve results.
func (k *ScopedKeyer) CarveKey(sourceHash string, opts CarveKeyOpts) string {
	return k.prefix + k.inner.CarveKey(sourceHash, opts)
}

// EnergyKey generates a prefixed key for energy maps.
func (k *ScopedKeyer) EnergyKey(sourceHash, format string) string {
	return k.prefix + k.inner.EnergyKey(sourceHash, format)
}
