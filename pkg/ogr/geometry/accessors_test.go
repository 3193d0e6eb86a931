package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geobridge/ogr-go/pkg/ogr"
	"github.com/geobridge/ogr-go/pkg/ogr/geometry"
)

func TestPointAccessors(t *testing.T) {
	lib, _ := openLib(t, ogr.Config{})

	pt, err := geometry.NewPoint(lib)
	require.NoError(t, err)
	defer pt.Dispose()

	empty, err := pt.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
	x, err := pt.X()
	require.NoError(t, err)
	assert.Zero(t, x)

	require.NoError(t, pt.SetXY(3, 4))
	require.NoError(t, pt.SetX(5))
	c, err := pt.Coord()
	require.NoError(t, err)
	assert.Equal(t, geometry.Coord{X: 5, Y: 4}, c)

	dim, err := pt.CoordinateDimension()
	require.NoError(t, err)
	assert.Equal(t, 2, dim)

	require.NoError(t, pt.SetZ(7))
	require.NoError(t, pt.SetY(6))
	c, err = pt.Coord()
	require.NoError(t, err)
	assert.Equal(t, geometry.Coord{X: 5, Y: 6, Z: 7, HasZ: true}, c)
	assert.Equal(t, "POINT Z (5 6 7)", pt.String())
}

func TestNewPointXYZ(t *testing.T) {
	lib, _ := openLib(t, ogr.Config{})
	pt, err := geometry.NewPointXYZ(lib, 1, 2, 3)
	require.NoError(t, err)
	defer pt.Dispose()
	z, err := pt.Z()
	require.NoError(t, err)
	assert.Equal(t, 3.0, z)
}

func TestSetOnViewWritesThroughToContainer(t *testing.T) {
	lib, _ := openLib(t, ogr.Config{})

	g, err := geometry.FromWKT(lib, "MULTIPOINT ((1 2))")
	require.NoError(t, err)
	defer g.Dispose()
	mp := g.(*geometry.MultiPoint)

	member, err := mp.Get(0)
	require.NoError(t, err)
	require.NoError(t, member.SetX(10))

	again, err := mp.Get(0)
	require.NoError(t, err)
	x, err := again.X()
	require.NoError(t, err)
	assert.Equal(t, 10.0, x)
}

func TestLineStringVertices(t *testing.T) {
	lib, _ := openLib(t, ogr.Config{})

	ls, err := geometry.NewLineString(lib)
	require.NoError(t, err)
	defer ls.Dispose()

	require.NoError(t, ls.AddPoint(geometry.Coord{X: 0, Y: 0}))
	require.NoError(t, ls.AddPoint(geometry.Coord{X: 1, Y: 1}))
	require.NoError(t, ls.SetPoint(1, geometry.Coord{X: 2, Y: 2}))

	n, err := ls.PointCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	p, err := ls.Point(1)
	require.NoError(t, err)
	assert.Equal(t, geometry.Coord{X: 2, Y: 2}, p)

	_, err = ls.Point(5)
	require.ErrorIs(t, err, ogr.ErrIndexOutOfRange)

	s, err := ls.WKT()
	require.NoError(t, err)
	assert.Equal(t, "LINESTRING (0 0, 2 2)", s)
}

func TestPolygonRings(t *testing.T) {
	lib, _ := openLib(t, ogr.Config{})

	ring, err := geometry.NewLinearRing(lib)
	require.NoError(t, err)
	defer ring.Dispose()
	for _, c := range []geometry.Coord{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 0}} {
		require.NoError(t, ring.AddPoint(c))
	}

	poly, err := geometry.NewPolygon(lib)
	require.NoError(t, err)
	defer poly.Dispose()
	require.NoError(t, poly.Rings().Add(ring))
	require.NoError(t, poly.Rings().Add(ring))

	n, err := poly.Rings().Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	exterior, err := poly.Rings().Get(0)
	require.NoError(t, err)
	assert.Equal(t, geometry.TypeLinearRing, exterior.Type())
	assert.False(t, exterior.Owned())

	require.NoError(t, poly.Empty())
	assert.False(t, exterior.IsAlive())
	empty, err := poly.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestAddRejectsWrongMember(t *testing.T) {
	lib, _ := openLib(t, ogr.Config{})

	gc, err := geometry.NewGeometryCollection(lib)
	require.NoError(t, err)
	defer gc.Dispose()
	ring, err := geometry.NewLinearRing(lib)
	require.NoError(t, err)
	defer ring.Dispose()

	require.ErrorIs(t, gc.Add(ring), ogr.ErrUnsupported)
	require.ErrorIs(t, gc.Add(nil), ogr.ErrNilNative)
}

func TestAddDeadMember(t *testing.T) {
	lib, _ := openLib(t, ogr.Config{})

	mp, err := geometry.NewMultiPoint(lib)
	require.NoError(t, err)
	defer mp.Dispose()
	pt, err := geometry.NewPointXY(lib, 1, 1)
	require.NoError(t, err)
	pt.Dispose()

	require.ErrorIs(t, mp.Add(pt), ogr.ErrDeadHandle)
}

func TestAddRejectsMemberFromAnotherLibrary(t *testing.T) {
	libA, _ := openLib(t, ogr.Config{})
	libB, _ := openLib(t, ogr.Config{})

	foreign, err := geometry.NewPointXY(libA, 100, 100)
	require.NoError(t, err)
	defer foreign.Dispose()
	local, err := geometry.NewPointXY(libB, 7, 7)
	require.NoError(t, err)
	defer local.Dispose()

	mp, err := geometry.NewMultiPoint(libB)
	require.NoError(t, err)
	defer mp.Dispose()

	require.ErrorIs(t, mp.Add(foreign), ogr.ErrForeignGeometry)
	n, err := mp.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, mp.Add(local))
	wkt, err := mp.WKT()
	require.NoError(t, err)
	assert.Equal(t, "MULTIPOINT (7 7)", wkt)
}

func TestGeometryCollectionMixedMembers(t *testing.T) {
	lib, _ := openLib(t, ogr.Config{})

	g, err := geometry.FromWKT(lib, "GEOMETRYCOLLECTION (POINT (1 2), LINESTRING (0 0, 1 1))")
	require.NoError(t, err)
	defer g.Dispose()
	gc, err := geometry.As[*geometry.GeometryCollection](g)
	require.NoError(t, err)

	first, err := gc.Get(0)
	require.NoError(t, err)
	assert.Equal(t, geometry.TypePoint, first.Type())
	second, err := gc.Get(1)
	require.NoError(t, err)
	ls, err := geometry.As[*geometry.LineString](second)
	require.NoError(t, err)
	n, err := ls.PointCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = geometry.As[*geometry.Polygon](first)
	require.ErrorIs(t, err, ogr.ErrTypeMismatch)
	_, err = gc.Get(2)
	require.ErrorIs(t, err, ogr.ErrIndexOutOfRange)
}

func TestFormats(t *testing.T) {
	lib, _ := openLib(t, ogr.Config{})

	src, err := geometry.FromWKT(lib, "MULTILINESTRING ((0 0, 1 1), (2 2, 3 3))")
	require.NoError(t, err)
	defer src.Dispose()
	assert.Equal(t, geometry.TypeMultiLineString, src.Type())
	assert.True(t, src.Owned())
	want, err := src.WKT()
	require.NoError(t, err)

	b, err := src.WKB()
	require.NoError(t, err)
	fromWKB, err := geometry.FromWKB(lib, b)
	require.NoError(t, err)
	defer fromWKB.Dispose()
	got, err := fromWKB.WKT()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	js, err := src.GeoJSON()
	require.NoError(t, err)
	fromJSON, err := geometry.FromGeoJSON(lib, js)
	require.NoError(t, err)
	defer fromJSON.Dispose()
	assert.True(t, fromJSON.Owned())
	got, err = fromJSON.WKT()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = geometry.FromWKT(lib, "NOT WKT")
	require.ErrorIs(t, err, ogr.ErrCodec)
}

func TestNewByType(t *testing.T) {
	lib, d := openLib(t, ogr.Config{})

	for typ := geometry.TypePoint; typ <= geometry.TypeLinearRing; typ++ {
		g, err := geometry.New(lib, typ)
		require.NoError(t, err, typ.String())
		assert.Equal(t, typ, g.Type())
		g.Dispose()
	}
	assert.Equal(t, 8, d.destroyCalls())

	_, err := geometry.New(lib, geometry.TypeUnknown)
	require.ErrorIs(t, err, ogr.ErrUnsupported)
}
