package handle

import (
	"runtime"
	"sync"
	"weak"
)

// Registry deduplicates host-visible wrappers per native reference, so that
// repeated lookups of the same collection member return the same wrapper.
//
// Entries are weak: the registry never keeps a wrapper reachable, and an
// entry disappears once its wrapper is collected. A stored wrapper may be
// dead (its parent was disposed, or the native pointer was reused); callers
// must check liveness on what Lookup returns and Remember a replacement.
type Registry struct {
	m sync.Map
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Lookup returns the wrapper remembered for key, or nil if none is stored,
// it has been collected, or it was stored with a different type.
func Lookup[W any](r *Registry, key any) *W {
	if r == nil {
		return nil
	}
	v, ok := r.m.Load(key)
	if !ok {
		return nil
	}
	wp, ok := v.(weak.Pointer[W])
	if !ok {
		return nil
	}
	return wp.Value()
}

// Remember stores w under key, replacing any previous entry.
func Remember[W any](r *Registry, key any, w *W) {
	if r == nil || w == nil {
		return
	}
	wp := weak.Make(w)
	r.m.Store(key, wp)
	runtime.AddCleanup(w, func(k any) {
		r.m.CompareAndDelete(k, wp)
	}, key)
}

// Forget drops the entry for key.
func (r *Registry) Forget(key any) {
	if r != nil {
		r.m.Delete(key)
	}
}

// Len returns the number of stored entries, including ones whose wrapper
// has been collected but not yet cleaned up.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	r.m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
