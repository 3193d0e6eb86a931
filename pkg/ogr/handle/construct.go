package handle

import "github.com/cockroachdb/errors"

// Allocate creates a fresh native value with alloc and wraps it in an owning
// handle. If alloc fails or returns the zero value no handle is created and
// the error is marked ErrAllocation.
func Allocate[T comparable](alloc func() (T, error), opts Options[T]) (*Handle[T], error) {
	if opts.Releaser == nil {
		return nil, errors.AssertionFailedf("allocate %s: owning handle without releaser", opts.Kind)
	}

	ref, err := alloc()
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "allocate %s", opts.Kind), ErrAllocation)
	}
	var zero T
	if ref == zero {
		return nil, errors.Wrapf(ErrAllocation, "allocate %s: native library returned nil", opts.Kind)
	}

	return newHandle(ref, true, nil, opts), nil
}

// Adopt wraps a native value whose ownership has been transferred to the
// caller, for example a clone or the result of a parsing factory. The
// returned handle releases ref when finalized.
func Adopt[T comparable](ref T, opts Options[T]) (*Handle[T], error) {
	if opts.Releaser == nil {
		return nil, errors.AssertionFailedf("adopt %s: owning handle without releaser", opts.Kind)
	}
	var zero T
	if ref == zero {
		return nil, errors.Wrapf(ErrNilNative, "adopt %s", opts.Kind)
	}
	return newHandle(ref, true, nil, opts), nil
}

// Borrow wraps a native value owned by someone else. When parent is non-nil
// the view is bounded by the parent's lifetime and generation; a nil parent
// means the caller guarantees the value outlives the view.
//
// Borrowed handles never call the releaser.
func Borrow[T comparable](ref T, parent Parent, opts Options[T]) (*Handle[T], error) {
	var zero T
	if ref == zero {
		return nil, errors.Wrapf(ErrNilNative, "borrow %s", opts.Kind)
	}
	if parent != nil && !parent.IsAlive() {
		return nil, errors.Wrapf(ErrDeadHandle, "borrow %s from dead parent", opts.Kind)
	}
	opts.Releaser = nil
	return newHandle(ref, false, parent, opts), nil
}
