package geometry

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/geobridge/ogr-go/pkg/ogr"
	"github.com/geobridge/ogr-go/pkg/ogr/handle"
	"github.com/geobridge/ogr-go/pkg/ogr/internal/backend"
)

// base is embedded by every wrapper. All native access goes through do or
// value, which check the library and the handle before calling the driver.
type base struct {
	lib *ogr.Library
	h   *handle.Handle[backend.Geometry]
	typ Type
	// parent is the container handle of a view, nil otherwise.
	parent *handle.Handle[backend.Geometry]
}

// releaser destroys owned geometries. Once the library is closed its heap is
// gone, so there is nothing left to free.
type releaser struct {
	d backend.Driver
}

func (r releaser) Release(g backend.Geometry) error {
	err := r.d.Destroy(g)
	if errors.Is(err, backend.ErrClosed) {
		return nil
	}
	return err
}

func (b *base) geometryBase() *base { return b }

func (b *base) do(fn func(d backend.Driver, g backend.Geometry) error) error {
	if err := b.lib.Check(); err != nil {
		return err
	}
	d := b.lib.Driver()
	return ogr.RemapError(b.h.Use(func(g backend.Geometry) error {
		return fn(d, g)
	}))
}

func value[R any](b *base, fn func(d backend.Driver, g backend.Geometry) (R, error)) (R, error) {
	if err := b.lib.Check(); err != nil {
		var zero R
		return zero, err
	}
	d := b.lib.Driver()
	r, err := handle.Value(b.h, func(g backend.Geometry) (R, error) {
		return fn(d, g)
	})
	return r, ogr.RemapError(err)
}

// Type returns the geometry type. It never touches native memory.
func (b *base) Type() Type { return b.typ }

// IsAlive reports whether the geometry can still be used.
func (b *base) IsAlive() bool {
	return b.lib.Check() == nil && b.h.IsAlive()
}

// Owned reports whether the wrapper destroys its native geometry.
func (b *base) Owned() bool { return b.h.Owned() }

// Size is the approximate native footprint recorded when an owning wrapper
// was created. Views report zero.
func (b *base) Size() int64 { return b.h.Size() }

func (b *base) WKT() (string, error) {
	return value(b, func(d backend.Driver, g backend.Geometry) (string, error) {
		return d.ExportWKT(g)
	})
}

func (b *base) WKB() ([]byte, error) {
	return value(b, func(d backend.Driver, g backend.Geometry) ([]byte, error) {
		return d.ExportWKB(g)
	})
}

func (b *base) GeoJSON() (string, error) {
	return value(b, func(d backend.Driver, g backend.Geometry) (string, error) {
		return d.ExportJSON(g)
	})
}

// String returns the WKT of the geometry, or a placeholder such as
// "Point(dead)" when it cannot be read.
func (b *base) String() string {
	if !b.IsAlive() {
		return fmt.Sprintf("%s(dead)", b.typ)
	}
	s, err := b.WKT()
	if err != nil {
		return fmt.Sprintf("%s(error)", b.typ)
	}
	return s
}

func (b *base) IsEmpty() (bool, error) {
	return value(b, func(d backend.Driver, g backend.Geometry) (bool, error) {
		return d.IsEmpty(g)
	})
}

// Empty clears the geometry. Member views issued earlier become dead.
func (b *base) Empty() error {
	return b.do(func(d backend.Driver, g backend.Geometry) error {
		b.h.Invalidate()
		return d.Empty(g)
	})
}

func (b *base) CoordinateDimension() (int, error) {
	return value(b, func(d backend.Driver, g backend.Geometry) (int, error) {
		return d.CoordinateDimension(g)
	})
}

// Clone returns an owned deep copy. Cloning a view is allowed.
func (b *base) Clone() (Geometry, error) {
	ref, err := value(b, func(d backend.Driver, g backend.Geometry) (backend.Geometry, error) {
		return d.Clone(g)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "clone %s", b.typ)
	}
	return wrap(b.lib, transferred, b.typ, ref, nil)
}

// Dispose releases the geometry now. Owned geometries are destroyed; views
// are only marked dead. Calling Dispose more than once is a no-op.
func (b *base) Dispose() {
	wasAlive := b.h.IsAlive()
	b.h.Dispose()
	if wasAlive {
		b.lib.Logger().Debug(context.Background(), "geometry disposed",
			"kind", b.typ.String(), "ownership", b.h.Ownership().String())
	}
}
