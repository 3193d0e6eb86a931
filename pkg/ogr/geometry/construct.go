package geometry

import (
	"github.com/cockroachdb/errors"

	"github.com/geobridge/ogr-go/pkg/ogr"
	"github.com/geobridge/ogr-go/pkg/ogr/handle"
	"github.com/geobridge/ogr-go/pkg/ogr/internal/backend"
)

// source says where a native geometry came from, which decides ownership.
type source int

const (
	// fresh geometries are allocated by wrap itself.
	fresh source = iota
	// transferred geometries were handed over by a factory or Clone.
	transferred
	// borrowed geometries are members owned by a container.
	borrowed
)

// wrap is the only place wrappers are created. For fresh geometries ref is
// ignored and a new native geometry of type typ is allocated; otherwise typ
// is read from the driver. parent must be set for borrowed geometries.
func wrap(lib *ogr.Library, src source, typ Type, ref backend.Geometry, parent *base) (Geometry, error) {
	g, _, err := wrapShared(lib, src, typ, ref, parent)
	return g, err
}

// wrapShared is wrap that also reports whether a borrowed view was taken
// from the identity registry instead of being created by this call.
func wrapShared(lib *ogr.Library, src source, typ Type, ref backend.Geometry, parent *base) (Geometry, bool, error) {
	if err := lib.Check(); err != nil {
		if src == transferred {
			_ = releaser{lib.Driver()}.Release(ref)
		}
		return nil, false, err
	}
	d := lib.Driver()

	if src != fresh {
		t, err := d.Type(ref)
		if err != nil {
			if src == transferred {
				_ = releaser{d}.Release(ref)
			}
			return nil, false, ogr.RemapError(errors.Wrap(err, "geometry type"))
		}
		typ = t
	}
	if typ == TypeUnknown || typ > TypeLinearRing {
		if src == transferred {
			_ = releaser{d}.Release(ref)
		}
		return nil, false, errors.Wrapf(ogr.ErrUnsupported, "wrap %s", typ)
	}

	var parentHandle *handle.Handle[backend.Geometry]
	if parent != nil {
		parentHandle = parent.h
	}
	if src == borrowed {
		if g := lookup(lib.Registry(), ref, typ, parentHandle); g != nil {
			return g, true, nil
		}
	}

	opts := handle.Options[backend.Geometry]{
		Kind:     typ.String(),
		Releaser: releaser{d},
		Observer: lib.Observer(),
		Logger:   lib.Logger(),
		SizeOf: func(g backend.Geometry) int64 {
			n, _ := d.Size(g)
			return n
		},
	}

	var (
		h   *handle.Handle[backend.Geometry]
		err error
	)
	switch src {
	case fresh:
		h, err = handle.Allocate(func() (backend.Geometry, error) {
			return d.Create(typ)
		}, opts)
	case transferred:
		h, err = handle.Adopt(ref, opts)
	case borrowed:
		opts.SizeOf = nil
		opts.Epoch = lib.Epochs().For(ref)
		var p handle.Parent
		if parentHandle != nil {
			p = parentHandle
		}
		h, err = handle.Borrow(ref, p, opts)
	}
	if err != nil {
		return nil, false, ogr.RemapError(err)
	}

	g := build(base{lib: lib, h: h, typ: typ, parent: parentHandle})
	if src == borrowed {
		remember(lib.Registry(), ref, g)
	}
	return g, false, nil
}

func build(b base) Geometry {
	switch b.typ {
	case TypePoint:
		return &Point{base: b}
	case TypeLineString:
		return &LineString{curve{base: b}}
	case TypeLinearRing:
		return &LinearRing{curve{base: b}}
	case TypePolygon:
		return &Polygon{base: b}
	case TypeMultiPoint:
		mp := &MultiPoint{base: b}
		mp.Members = Members[*Point]{b: &mp.base}
		return mp
	case TypeMultiLineString:
		mls := &MultiLineString{base: b}
		mls.Members = Members[*LineString]{b: &mls.base}
		return mls
	case TypeMultiPolygon:
		mp := &MultiPolygon{base: b}
		mp.Members = Members[*Polygon]{b: &mp.base}
		return mp
	default:
		gc := &GeometryCollection{base: b}
		gc.Members = Members[Geometry]{b: &gc.base}
		return gc
	}
}

func lookupAs[W any, PW interface {
	*W
	Geometry
}](reg *handle.Registry, ref backend.Geometry) Geometry {
	if w := handle.Lookup[W](reg, ref); w != nil {
		return PW(w)
	}
	return nil
}

// lookup returns the remembered view of ref if it is still alive and was
// borrowed from the same container.
func lookup(reg *handle.Registry, ref backend.Geometry, typ Type, parent *handle.Handle[backend.Geometry]) Geometry {
	if reg == nil {
		return nil
	}
	var g Geometry
	switch typ {
	case TypePoint:
		g = lookupAs[Point](reg, ref)
	case TypeLineString:
		g = lookupAs[LineString](reg, ref)
	case TypeLinearRing:
		g = lookupAs[LinearRing](reg, ref)
	case TypePolygon:
		g = lookupAs[Polygon](reg, ref)
	case TypeMultiPoint:
		g = lookupAs[MultiPoint](reg, ref)
	case TypeMultiLineString:
		g = lookupAs[MultiLineString](reg, ref)
	case TypeMultiPolygon:
		g = lookupAs[MultiPolygon](reg, ref)
	case TypeGeometryCollection:
		g = lookupAs[GeometryCollection](reg, ref)
	}
	if g == nil || !g.IsAlive() || g.geometryBase().parent != parent {
		return nil
	}
	return g
}

func remember(reg *handle.Registry, ref backend.Geometry, g Geometry) {
	switch w := g.(type) {
	case *Point:
		handle.Remember(reg, ref, w)
	case *LineString:
		handle.Remember(reg, ref, w)
	case *LinearRing:
		handle.Remember(reg, ref, w)
	case *Polygon:
		handle.Remember(reg, ref, w)
	case *MultiPoint:
		handle.Remember(reg, ref, w)
	case *MultiLineString:
		handle.Remember(reg, ref, w)
	case *MultiPolygon:
		handle.Remember(reg, ref, w)
	case *GeometryCollection:
		handle.Remember(reg, ref, w)
	}
}

func newAs[G Geometry](lib *ogr.Library, typ Type) (G, error) {
	var zero G
	g, err := wrap(lib, fresh, typ, 0, nil)
	if err != nil {
		return zero, err
	}
	return g.(G), nil
}

// New creates an empty owned geometry of type t.
func New(lib *ogr.Library, t Type) (Geometry, error) {
	return wrap(lib, fresh, t, 0, nil)
}

// NewPoint creates an empty point.
func NewPoint(lib *ogr.Library) (*Point, error) {
	return newAs[*Point](lib, TypePoint)
}

// NewPointXY creates a two-dimensional point.
func NewPointXY(lib *ogr.Library, x, y float64) (*Point, error) {
	return newPointAt(lib, Coord{X: x, Y: y})
}

// NewPointXYZ creates a three-dimensional point.
func NewPointXYZ(lib *ogr.Library, x, y, z float64) (*Point, error) {
	return newPointAt(lib, Coord{X: x, Y: y, Z: z, HasZ: true})
}

func newPointAt(lib *ogr.Library, c Coord) (*Point, error) {
	p, err := NewPoint(lib)
	if err != nil {
		return nil, err
	}
	if err := p.set(c); err != nil {
		p.Dispose()
		return nil, err
	}
	return p, nil
}

func NewLineString(lib *ogr.Library) (*LineString, error) {
	return newAs[*LineString](lib, TypeLineString)
}

func NewLinearRing(lib *ogr.Library) (*LinearRing, error) {
	return newAs[*LinearRing](lib, TypeLinearRing)
}

func NewPolygon(lib *ogr.Library) (*Polygon, error) {
	return newAs[*Polygon](lib, TypePolygon)
}

func NewMultiPoint(lib *ogr.Library) (*MultiPoint, error) {
	return newAs[*MultiPoint](lib, TypeMultiPoint)
}

func NewMultiLineString(lib *ogr.Library) (*MultiLineString, error) {
	return newAs[*MultiLineString](lib, TypeMultiLineString)
}

func NewMultiPolygon(lib *ogr.Library) (*MultiPolygon, error) {
	return newAs[*MultiPolygon](lib, TypeMultiPolygon)
}

func NewGeometryCollection(lib *ogr.Library) (*GeometryCollection, error) {
	return newAs[*GeometryCollection](lib, TypeGeometryCollection)
}

// FromWKT parses well-known text into an owned geometry.
func FromWKT(lib *ogr.Library, text string) (Geometry, error) {
	if err := lib.Check(); err != nil {
		return nil, err
	}
	ref, err := lib.Driver().ImportWKT(text)
	if err != nil {
		return nil, ogr.RemapError(errors.Wrap(err, "parse wkt"))
	}
	return wrap(lib, transferred, TypeUnknown, ref, nil)
}

// FromWKB parses well-known binary into an owned geometry.
func FromWKB(lib *ogr.Library, data []byte) (Geometry, error) {
	if err := lib.Check(); err != nil {
		return nil, err
	}
	ref, err := lib.Driver().ImportWKB(data)
	if err != nil {
		return nil, ogr.RemapError(errors.Wrap(err, "parse wkb"))
	}
	return wrap(lib, transferred, TypeUnknown, ref, nil)
}

// FromGeoJSON parses a GeoJSON geometry object into an owned geometry.
func FromGeoJSON(lib *ogr.Library, text string) (Geometry, error) {
	if err := lib.Check(); err != nil {
		return nil, err
	}
	ref, err := lib.Driver().ImportJSON(text)
	if err != nil {
		return nil, ogr.RemapError(errors.Wrap(err, "parse geojson"))
	}
	return wrap(lib, transferred, TypeUnknown, ref, nil)
}

// As converts g to a concrete wrapper type, failing with ogr.ErrTypeMismatch.
func As[G Geometry](g Geometry) (G, error) {
	var zero G
	if g == nil {
		return zero, errors.Wrap(ogr.ErrNilNative, "nil geometry")
	}
	c, ok := g.(G)
	if !ok {
		return zero, errors.Wrapf(ogr.ErrTypeMismatch, "%s is %T", g.Type(), g)
	}
	return c, nil
}
