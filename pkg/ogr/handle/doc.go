// Package handle implements the lifetime bookkeeping shared by every wrapper
// around a natively allocated geometry.
//
// A Handle holds three pieces of state: the native reference, whether this
// handle owns it, and whether it is still alive. Ownership is decided once,
// by the constructor that produced the handle, and never changes:
//
//   - Allocate creates a fresh native value and owns it.
//   - Adopt takes over a native value whose ownership was transferred to the
//     caller, such as a clone or a factory result.
//   - Borrow exposes a native value owned elsewhere, usually a member of a
//     parent collection. A borrowed handle never releases anything.
//
// # Finalization
//
// Every handle is registered with runtime.SetFinalizer. When the garbage
// collector finds it unreachable, or when Dispose is called, the handle runs
// its state machine:
//
//	alive, owned     -> release the native value, mark dead
//	alive, borrowed  -> mark dead
//	dead             -> nothing
//
// The alive flag flips before the release call, so a failed release is never
// retried. Release errors are logged and reported to the Observer; they are
// never returned from a finalizer.
//
// # Views
//
// A borrowed handle created with a parent keeps that parent reachable, so
// the garbage collector cannot finalize the owner while a view is in use.
// The view also records the parent's generation. Explicit disposal of the
// parent, or a structural change that calls Invalidate on it, makes the view
// report dead without touching native memory.
//
// # Concurrency Safety
//
// The alive transition is atomic and happens exactly once. Use does not hold
// a lock while the callback runs: calling Dispose on a handle (or on the
// parent of a view) while another goroutine is inside Use is unsafe. The
// caller is responsible for ensuring all operations complete before
// disposing.
package handle
