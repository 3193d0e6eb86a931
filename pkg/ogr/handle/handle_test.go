package handle_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/geobridge/ogr-go/pkg/ogr/handle"
	"github.com/geobridge/ogr-go/pkg/ogr/logging"
)

// fakeLib stands in for the native library: it hands out integer
// "pointers" and counts how often each one is destroyed.
type fakeLib struct {
	mu        sync.Mutex
	next      uintptr
	destroyed map[uintptr]int
	failWith  error
}

func newFakeLib() *fakeLib {
	return &fakeLib{destroyed: make(map[uintptr]int)}
}

func (f *fakeLib) allocate() (uintptr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next, nil
}

func (f *fakeLib) Release(ref uintptr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed[ref]++
	return f.failWith
}

func (f *fakeLib) destroyCount(ref uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroyed[ref]
}

func (f *fakeLib) totalDestroys() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.destroyed {
		n += c
	}
	return n
}

func (f *fakeLib) opts(kind string) handle.Options[uintptr] {
	return handle.Options[uintptr]{Kind: kind, Releaser: f}
}

func TestAllocateOwnedThenFinalize(t *testing.T) {
	lib := newFakeLib()

	h, err := handle.Allocate(lib.allocate, lib.opts("Point"))
	require.NoError(t, err)
	assert.True(t, h.IsAlive())
	assert.True(t, h.Owned())
	assert.Equal(t, handle.Owned, h.Ownership())

	h.Finalize()

	assert.False(t, h.IsAlive())
	assert.Equal(t, 1, lib.destroyCount(h.Get()))
}

func TestBorrowedMemberLeavesParentValueIntact(t *testing.T) {
	lib := newFakeLib()

	parent, err := handle.Allocate(lib.allocate, lib.opts("MultiPoint"))
	require.NoError(t, err)

	const memberRef = uintptr(1000)
	member, err := handle.Borrow(memberRef, parent, lib.opts("Point"))
	require.NoError(t, err)
	assert.False(t, member.Owned())

	member.Finalize()
	assert.False(t, member.IsAlive())
	assert.True(t, parent.IsAlive())
	assert.Zero(t, lib.totalDestroys())

	parent.Finalize()
	assert.Equal(t, 1, lib.totalDestroys())
	assert.Equal(t, 1, lib.destroyCount(parent.Get()))
	assert.Zero(t, lib.destroyCount(memberRef))
}

func TestUseOnDeadHandleNeverCallsThrough(t *testing.T) {
	lib := newFakeLib()
	h, err := handle.Allocate(lib.allocate, lib.opts("LineString"))
	require.NoError(t, err)
	h.Dispose()

	called := false
	err = h.Use(func(uintptr) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, handle.ErrDeadHandle)
	assert.Contains(t, err.Error(), "LineString")
	assert.False(t, called)

	_, err = handle.Value(h, func(uintptr) (string, error) {
		called = true
		return "POINT (0 0)", nil
	})
	require.ErrorIs(t, err, handle.ErrDeadHandle)
	assert.False(t, called)
}

func TestFinalizeTwiceDestroysOnce(t *testing.T) {
	lib := newFakeLib()
	h, err := handle.Allocate(lib.allocate, lib.opts("Polygon"))
	require.NoError(t, err)

	h.Finalize()
	h.Finalize()
	h.Dispose()

	assert.Equal(t, 1, lib.destroyCount(h.Get()))
	assert.False(t, h.IsAlive())
}

func TestConcurrentFinalizeDestroysOnce(t *testing.T) {
	lib := newFakeLib()
	h, err := handle.Allocate(lib.allocate, lib.opts("Polygon"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				h.Finalize()
			} else {
				h.Dispose()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, lib.destroyCount(h.Get()))
}

func TestManyViewsOfOneValue(t *testing.T) {
	lib := newFakeLib()
	parent, err := handle.Allocate(lib.allocate, lib.opts("GeometryCollection"))
	require.NoError(t, err)

	const shared = uintptr(42)
	views := make([]*handle.Handle[uintptr], 5)
	for i := range views {
		views[i], err = handle.Borrow(shared, parent, lib.opts("Point"))
		require.NoError(t, err)
	}

	views[0].Finalize()
	for _, v := range views[1:] {
		assert.True(t, v.IsAlive(), "finalizing one view must not affect its siblings")
	}

	for _, v := range views {
		v.Dispose()
	}
	parent.Dispose()
	assert.Equal(t, 1, lib.totalDestroys())
	assert.Zero(t, lib.destroyCount(shared))
}

func TestViewDiesWithParent(t *testing.T) {
	lib := newFakeLib()
	parent, err := handle.Allocate(lib.allocate, lib.opts("Polygon"))
	require.NoError(t, err)
	ring, err := handle.Borrow(uintptr(7), parent, lib.opts("LinearRing"))
	require.NoError(t, err)
	require.True(t, ring.IsAlive())

	parent.Dispose()

	assert.False(t, ring.IsAlive())
	err = ring.Use(func(uintptr) error { return nil })
	require.ErrorIs(t, err, handle.ErrDeadHandle)

	// Finalizing the orphaned view is still a no-op on native memory.
	ring.Finalize()
	assert.Equal(t, 1, lib.totalDestroys())
}

func TestNestedViewsFollowTheChain(t *testing.T) {
	lib := newFakeLib()
	root, err := handle.Allocate(lib.allocate, lib.opts("MultiPolygon"))
	require.NoError(t, err)
	poly, err := handle.Borrow(uintptr(10), root, lib.opts("Polygon"))
	require.NoError(t, err)
	ring, err := handle.Borrow(uintptr(11), poly, lib.opts("LinearRing"))
	require.NoError(t, err)

	root.Dispose()

	assert.False(t, poly.IsAlive())
	assert.False(t, ring.IsAlive())
}

func TestInvalidateKillsEarlierViewsOnly(t *testing.T) {
	lib := newFakeLib()
	parent, err := handle.Allocate(lib.allocate, lib.opts("MultiPoint"))
	require.NoError(t, err)

	before, err := handle.Borrow(uintptr(5), parent, lib.opts("Point"))
	require.NoError(t, err)

	parent.Invalidate()

	after, err := handle.Borrow(uintptr(6), parent, lib.opts("Point"))
	require.NoError(t, err)

	assert.False(t, before.IsAlive())
	assert.True(t, after.IsAlive())
	assert.True(t, parent.IsAlive())
}

func TestBorrowFromDeadParentFails(t *testing.T) {
	lib := newFakeLib()
	parent, err := handle.Allocate(lib.allocate, lib.opts("MultiPoint"))
	require.NoError(t, err)
	parent.Dispose()

	_, err = handle.Borrow(uintptr(5), parent, lib.opts("Point"))
	require.ErrorIs(t, err, handle.ErrDeadHandle)
}

func TestConstructionRejectsNil(t *testing.T) {
	lib := newFakeLib()

	_, err := handle.Adopt(uintptr(0), lib.opts("Point"))
	require.ErrorIs(t, err, handle.ErrNilNative)

	_, err = handle.Borrow(uintptr(0), nil, lib.opts("Point"))
	require.ErrorIs(t, err, handle.ErrNilNative)

	_, err = handle.Adopt(uintptr(1), handle.Options[uintptr]{Kind: "Point"})
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))
}

func TestAllocationFailureLeavesNoHandle(t *testing.T) {
	lib := newFakeLib()
	boom := errors.New("out of memory")

	h, err := handle.Allocate(func() (uintptr, error) { return 0, boom }, lib.opts("Point"))
	require.ErrorIs(t, err, handle.ErrAllocation)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, h)

	h, err = handle.Allocate(func() (uintptr, error) { return 0, nil }, lib.opts("Point"))
	require.ErrorIs(t, err, handle.ErrAllocation)
	assert.Nil(t, h)
	assert.Zero(t, lib.totalDestroys())
}

func TestAdoptedValueIsReleased(t *testing.T) {
	lib := newFakeLib()
	h, err := handle.Adopt(uintptr(77), lib.opts("LineString"))
	require.NoError(t, err)
	assert.True(t, h.Owned())

	h.Dispose()
	assert.Equal(t, 1, lib.destroyCount(77))
}

func TestBorrowWithoutParentNeverReleases(t *testing.T) {
	lib := newFakeLib()
	h, err := handle.Borrow(uintptr(9), nil, lib.opts("Point"))
	require.NoError(t, err)
	assert.True(t, h.IsAlive())

	h.Dispose()
	assert.False(t, h.IsAlive())
	assert.Zero(t, lib.totalDestroys())
}

func TestReleaseFailureIsSwallowedAndLogged(t *testing.T) {
	lib := newFakeLib()
	lib.failWith = errors.New("OGR_G_DestroyGeometry failed")

	core, logs := observer.New(zapcore.DebugLevel)
	obs := &recordingObserver{}
	opts := lib.opts("Point")
	opts.Logger = logging.New(zap.New(core))
	opts.Observer = obs

	h, err := handle.Allocate(lib.allocate, opts)
	require.NoError(t, err)

	require.NotPanics(t, h.Finalize)
	assert.False(t, h.IsAlive())

	h.Finalize()
	assert.Equal(t, 1, lib.destroyCount(h.Get()), "a failed release must not be retried")

	entries := logs.FilterMessage("native release failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Point", entries[0].ContextMap()["kind"])
	assert.Equal(t, int32(1), obs.failed.Load())
}

func TestReleasePanicIsRecovered(t *testing.T) {
	opts := handle.Options[uintptr]{
		Kind: "Point",
		Releaser: handle.ReleaseFunc[uintptr](func(uintptr) error {
			panic("corrupt heap")
		}),
	}
	h, err := handle.Adopt(uintptr(3), opts)
	require.NoError(t, err)

	require.NotPanics(t, h.Dispose)
	assert.False(t, h.IsAlive())
}

func TestObserverSeesLifecycle(t *testing.T) {
	lib := newFakeLib()
	obs := &recordingObserver{}
	opts := lib.opts("Point")
	opts.Observer = obs
	opts.SizeOf = func(uintptr) int64 { return 21 }

	owned, err := handle.Allocate(lib.allocate, opts)
	require.NoError(t, err)
	view, err := handle.Borrow(uintptr(500), owned, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(21), owned.Size())

	view.Dispose()
	owned.Finalize()

	assert.Equal(t, int32(2), obs.created.Load())
	assert.Equal(t, int32(2), obs.finalized.Load())
	assert.Equal(t, int32(1), obs.disposed.Load())
	assert.Zero(t, obs.failed.Load())
}

func TestGarbageCollectorReleasesOwnedValue(t *testing.T) {
	released := make(chan uintptr, 1)
	opts := handle.Options[uintptr]{
		Kind: "Point",
		Releaser: handle.ReleaseFunc[uintptr](func(ref uintptr) error {
			released <- ref
			return nil
		}),
	}

	func() {
		h, err := handle.Adopt(uintptr(99), opts)
		require.NoError(t, err)
		require.True(t, h.IsAlive())
	}()

	deadline := time.After(5 * time.Second)
	for {
		runtime.GC()
		select {
		case ref := <-released:
			assert.Equal(t, uintptr(99), ref)
			return
		case <-deadline:
			t.Fatal("finalizer did not release the unreachable handle")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDisposeRemovesFinalizer(t *testing.T) {
	var releases atomic.Int32
	opts := handle.Options[uintptr]{
		Kind: "Point",
		Releaser: handle.ReleaseFunc[uintptr](func(uintptr) error {
			releases.Add(1)
			return nil
		}),
	}

	func() {
		h, err := handle.Adopt(uintptr(1), opts)
		require.NoError(t, err)
		h.Dispose()
	}()

	for i := 0; i < 5; i++ {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, int32(1), releases.Load())
}

type recordingObserver struct {
	created   atomic.Int32
	finalized atomic.Int32
	disposed  atomic.Int32
	failed    atomic.Int32
}

func (o *recordingObserver) Created(string, handle.Ownership, int64) { o.created.Add(1) }

func (o *recordingObserver) Finalized(_ string, _ handle.Ownership, trigger handle.Trigger, _ int64) {
	o.finalized.Add(1)
	if trigger == handle.TriggerDispose {
		o.disposed.Add(1)
	}
}

func (o *recordingObserver) ReleaseFailed(string, error) { o.failed.Add(1) }
