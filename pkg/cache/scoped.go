package cache

// ScopedKeyer namespaces another Keyer so separate sessions or users never
// share cache entries.
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer wraps a Keyer so every key is prefixed with the scope.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	return &ScopedKeyer{inner: inner, scope: scope}
}

func (k *ScopedKeyer) PlanKey(catalogHash string, opts PlanKeyOpts) string {
	return k.scope + ":" + k.inner.PlanKey(catalogHash, opts)
}

func (k *ScopedKeyer) LayoutKey(planHash string, opts LayoutKeyOpts) string {
	return k.scope + ":" + k.inner.LayoutKey(planHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.scope + ":" + k.inner.ArtifactKey(layoutHash, opts)
}

var _ Keyer = (*ScopedKeyer)(nil)
