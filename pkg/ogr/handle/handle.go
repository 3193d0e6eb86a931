package handle

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/geobridge/ogr-go/pkg/ogr/logging"
)

// Releaser destroys native values of type T. It is only ever called for
// values held by an owning handle, and at most once per value.
type Releaser[T comparable] interface {
	Release(ref T) error
}

// ReleaseFunc adapts a plain function to the Releaser interface.
type ReleaseFunc[T comparable] func(ref T) error

// Release calls f(ref).
func (f ReleaseFunc[T]) Release(ref T) error { return f(ref) }

// Parent is implemented by handles that views can be borrowed from.
type Parent interface {
	IsAlive() bool
	Generation() uint64
}

// Options carries the collaborators of a handle. Releaser is required for
// owning handles; everything else has a usable default.
type Options[T comparable] struct {
	// Kind names the wrapped subtype in errors, logs and metrics.
	Kind     string
	Releaser Releaser[T]
	Observer Observer
	Logger   logging.Logger
	// SizeOf reports the approximate native footprint of a value. It is
	// called once, at construction.
	SizeOf func(T) int64
	// Epoch is shared with other handles of the same native value. A nil
	// Epoch makes the handle's generation private.
	Epoch *Epoch
}

// Handle is a host-side reference to a natively allocated value.
//
// The zero Handle is not usable; construct one with Allocate, Adopt or
// Borrow.
type Handle[T comparable] struct {
	ref   T
	owned bool
	alive atomic.Bool
	gen   *Epoch

	// parent is set on views only. Holding it keeps the owner reachable
	// for as long as the view is.
	parent    Parent
	parentGen uint64

	kind     string
	size     int64
	releaser Releaser[T]
	observer Observer
	logger   logging.Logger
}

func newHandle[T comparable](ref T, owned bool, parent Parent, opts Options[T]) *Handle[T] {
	h := &Handle[T]{
		ref:      ref,
		owned:    owned,
		parent:   parent,
		kind:     opts.Kind,
		releaser: opts.Releaser,
		observer: opts.Observer,
		logger:   opts.Logger,
		gen:      opts.Epoch,
	}
	if h.gen == nil {
		h.gen = new(Epoch)
	}
	if h.kind == "" {
		h.kind = "handle"
	}
	if h.observer == nil {
		h.observer = NopObserver{}
	}
	if h.logger == nil {
		h.logger = logging.Nop()
	}
	if opts.SizeOf != nil {
		h.size = opts.SizeOf(ref)
	}
	if parent != nil {
		h.parentGen = parent.Generation()
	}
	h.alive.Store(true)

	h.observer.Created(h.kind, h.Ownership(), h.size)

	// Safety net; Dispose clears it.
	runtime.SetFinalizer(h, (*Handle[T]).Finalize)
	return h
}

// Get returns the native reference. Callers must have checked IsAlive; Get
// itself performs no check. Prefer Use.
func (h *Handle[T]) Get() T {
	return h.ref
}

// IsAlive reports whether the native value may still be dereferenced through
// this handle. A view is dead once its parent is dead or has been
// invalidated since the view was created.
func (h *Handle[T]) IsAlive() bool {
	if h == nil || !h.alive.Load() {
		return false
	}
	if h.parent == nil {
		return true
	}
	return h.parent.IsAlive() && h.parent.Generation() == h.parentGen
}

// Owned reports whether this handle releases its native value.
func (h *Handle[T]) Owned() bool {
	return h != nil && h.owned
}

// Ownership is Owned or Borrowed.
func (h *Handle[T]) Ownership() Ownership {
	if h.Owned() {
		return Owned
	}
	return Borrowed
}

// Kind returns the subtype name the handle was constructed with.
func (h *Handle[T]) Kind() string {
	if h == nil {
		return "handle"
	}
	return h.kind
}

// Size returns the native footprint recorded at construction.
func (h *Handle[T]) Size() int64 {
	if h == nil {
		return 0
	}
	return h.size
}

// Generation returns the structural generation of the native value. Views
// borrowed from this handle are only valid while it is unchanged.
func (h *Handle[T]) Generation() uint64 {
	return h.gen.Load()
}

// Invalidate kills every view previously borrowed from this handle, and from
// any other handle sharing its Epoch. Call it after any native operation that
// may have destroyed members of the value.
func (h *Handle[T]) Invalidate() {
	if h != nil {
		h.gen.bump()
	}
}

// Use calls fn with the native reference if the handle is alive, and fails
// with ErrDeadHandle without calling fn otherwise.
func (h *Handle[T]) Use(fn func(ref T) error) error {
	if !h.IsAlive() {
		return errors.Wrapf(ErrDeadHandle, "%s", h.Kind())
	}
	err := fn(h.ref)
	runtime.KeepAlive(h)
	return err
}

// Value is Use for callbacks that produce a result.
func Value[T comparable, R any](h *Handle[T], fn func(ref T) (R, error)) (R, error) {
	var out R
	err := h.Use(func(ref T) error {
		var err error
		out, err = fn(ref)
		return err
	})
	return out, err
}

// Finalize runs the finalization state machine. It is what the runtime calls
// when the handle becomes unreachable, and is idempotent.
func (h *Handle[T]) Finalize() {
	h.finalize(TriggerGC)
}

// Dispose finalizes the handle immediately and removes the runtime
// finalizer. Calling it more than once is harmless.
func (h *Handle[T]) Dispose() {
	if h == nil {
		return
	}
	h.finalize(TriggerDispose)
	runtime.SetFinalizer(h, nil)
}

func (h *Handle[T]) finalize(trigger Trigger) {
	if h == nil || !h.alive.CompareAndSwap(true, false) {
		return
	}
	if h.owned {
		if err := h.release(); err != nil {
			h.observer.ReleaseFailed(h.kind, err)
			h.logger.Error(context.Background(), "native release failed",
				"kind", h.kind,
				"trigger", string(trigger),
				"error", err,
			)
		}
	}
	h.observer.Finalized(h.kind, h.Ownership(), trigger, h.size)
}

func (h *Handle[T]) release() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("release panicked: %v", r)
		}
	}()
	return h.releaser.Release(h.ref)
}
