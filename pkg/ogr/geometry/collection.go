package geometry

import (
	"github.com/cockroachdb/errors"

	"github.com/geobridge/ogr-go/pkg/ogr"
	"github.com/geobridge/ogr-go/pkg/ogr/internal/backend"
)

// Members accesses the member geometries of a container.
type Members[M Geometry] struct {
	b *base
}

// Count returns the number of members.
func (m Members[M]) Count() (int, error) {
	return value(m.b, func(d backend.Driver, g backend.Geometry) (int, error) {
		return d.GeometryCount(g)
	})
}

// Get returns a view of member i. The view is dead once the container is
// disposed, emptied or has a member removed.
func (m Members[M]) Get(i int) (M, error) {
	var zero M
	ref, err := value(m.b, func(d backend.Driver, g backend.Geometry) (backend.Geometry, error) {
		return d.GeometryRef(g, i)
	})
	if err != nil {
		return zero, err
	}
	g, shared, err := wrapShared(m.b.lib, borrowed, TypeUnknown, ref, m.b)
	if err != nil {
		return zero, err
	}
	member, ok := g.(M)
	if !ok {
		if !shared {
			g.Dispose()
		}
		return zero, errors.Wrapf(ogr.ErrTypeMismatch, "member %d is a %s", i, g.Type())
	}
	return member, nil
}

// All returns views of every member.
func (m Members[M]) All() ([]M, error) {
	n, err := m.Count()
	if err != nil {
		return nil, err
	}
	out := make([]M, 0, n)
	for i := range n {
		g, err := m.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Add appends a copy of member. The container does not take over member,
// which keeps its own ownership and must still be disposed by its owner.
func (m Members[M]) Add(member M) error {
	if any(member) == nil {
		return errors.Wrap(ogr.ErrNilNative, "add nil member")
	}
	mb := member.geometryBase()
	if err := mb.lib.Check(); err != nil {
		return err
	}
	if mb.lib != m.b.lib {
		return errors.Wrapf(ogr.ErrForeignGeometry, "add %s from library %s", mb.typ, mb.lib.ID())
	}
	return m.b.do(func(d backend.Driver, g backend.Geometry) error {
		return mb.h.Use(func(ref backend.Geometry) error {
			return d.AddGeometry(g, ref)
		})
	})
}

// Remove destroys member i. Every view issued by the container, or by any
// other view of the same native container, becomes dead.
func (m Members[M]) Remove(i int) error {
	return m.b.do(func(d backend.Driver, g backend.Geometry) error {
		if err := d.RemoveGeometry(g, i); err != nil {
			return err
		}
		m.b.h.Invalidate()
		return nil
	})
}

// RemoveAll destroys every member. Every view issued by the container becomes
// dead.
func (m Members[M]) RemoveAll() error {
	return m.b.do(func(d backend.Driver, g backend.Geometry) error {
		m.b.h.Invalidate()
		return d.Empty(g)
	})
}

// MultiPoint is a collection of points.
type MultiPoint struct {
	base
	Members[*Point]
}

// MultiLineString is a collection of line strings.
type MultiLineString struct {
	base
	Members[*LineString]
}

// MultiPolygon is a collection of polygons.
type MultiPolygon struct {
	base
	Members[*Polygon]
}

// GeometryCollection holds members of any type except LinearRing.
type GeometryCollection struct {
	base
	Members[Geometry]
}

// Children returns views of the members of any container, including the
// rings of a polygon. Non-containers have no children.
func Children(g Geometry) ([]Geometry, error) {
	if g == nil {
		return nil, errors.Wrap(ogr.ErrNilNative, "nil geometry")
	}
	b := g.geometryBase()
	if !b.typ.IsContainer() {
		return nil, nil
	}
	return Members[Geometry]{b: b}.All()
}
