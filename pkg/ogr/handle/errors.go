package handle

import "github.com/cockroachdb/errors"

var (
	// ErrDeadHandle is returned by every guarded operation on a handle whose
	// native value has been released or is no longer reachable through its
	// parent.
	ErrDeadHandle = errors.New("dead handle")

	// ErrAllocation marks failures of the native library to allocate a fresh
	// value.
	ErrAllocation = errors.New("native allocation failed")

	// ErrNilNative is returned when a constructor is given the zero native
	// reference.
	ErrNilNative = errors.New("nil native reference")
)
