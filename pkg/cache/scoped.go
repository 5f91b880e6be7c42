package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several projects can
// share one Redis instance without colliding.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "vehicle:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ExportKey returns the prefixed export key.
func (k *ScopedKeyer) ExportKey(modelHash string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(modelHash, opts)
}
