package cache

// ScopedKeyer prefixes every key of an inner keyer, so that several
// environments can share one Redis instance:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TreeKey implements [Keyer].
func (k *ScopedKeyer) TreeKey(server string) string {
	return k.prefix + k.inner.TreeKey(server)
}

// PathKey implements [Keyer].
func (k *ScopedKeyer) PathKey(server, treeHash string, value float64) string {
	return k.prefix + k.inner.PathKey(server, treeHash, value)
}
