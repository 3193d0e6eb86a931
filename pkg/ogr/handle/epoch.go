package handle

import (
	"runtime"
	"sync"
	"sync/atomic"
	"weak"
)

// Epoch is the structural generation of one native value. Every handle that
// wraps the value shares the same Epoch, so invalidating through any of them
// kills the views borrowed through all of them.
type Epoch struct {
	n atomic.Uint64
}

// Load returns the current generation.
func (e *Epoch) Load() uint64 { return e.n.Load() }

func (e *Epoch) bump() { e.n.Add(1) }

// Epochs hands out one Epoch per native reference. Entries are weak and
// vanish once no handle holds the Epoch any more.
//
// A native address that is freed and reused may be given the Epoch of its
// previous occupant while dead handles still hold it. Bumping it then only
// affects views that are already dead.
type Epochs struct {
	m sync.Map
}

// NewEpochs returns an empty table.
func NewEpochs() *Epochs {
	return &Epochs{}
}

// For returns the Epoch shared by all handles of key. A nil table returns a
// private Epoch.
func (s *Epochs) For(key any) *Epoch {
	if s == nil {
		return new(Epoch)
	}
	for {
		v, ok := s.m.Load(key)
		if ok {
			if e := v.(weak.Pointer[Epoch]).Value(); e != nil {
				return e
			}
		}
		e := new(Epoch)
		wp := weak.Make(e)
		if ok {
			if !s.m.CompareAndSwap(key, v, wp) {
				continue
			}
		} else if _, loaded := s.m.LoadOrStore(key, wp); loaded {
			continue
		}
		runtime.AddCleanup(e, func(k any) {
			s.m.CompareAndDelete(k, wp)
		}, key)
		return e
	}
}

// Len returns the number of stored entries, including ones whose Epoch has
// been collected but not yet cleaned up.
func (s *Epochs) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	s.m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
