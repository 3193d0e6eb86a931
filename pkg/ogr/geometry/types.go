package geometry

import "github.com/geobridge/ogr-go/pkg/ogr/internal/backend"

// Type is the flat geometry type of a wrapper.
type Type = backend.Type

// Coord is a single vertex. HasZ reports whether Z is meaningful; setting a
// vertex with HasZ makes the geometry three-dimensional.
type Coord = backend.Coord

const (
	TypeUnknown            = backend.Unknown
	TypePoint              = backend.Point
	TypeLineString         = backend.LineString
	TypePolygon            = backend.Polygon
	TypeMultiPoint         = backend.MultiPoint
	TypeMultiLineString    = backend.MultiLineString
	TypeMultiPolygon       = backend.MultiPolygon
	TypeGeometryCollection = backend.GeometryCollection
	TypeLinearRing         = backend.LinearRing
)

// Geometry is implemented by every wrapper in this package.
type Geometry interface {
	Type() Type
	IsAlive() bool
	Owned() bool
	Size() int64

	WKT() (string, error)
	WKB() ([]byte, error)
	GeoJSON() (string, error)
	String() string

	IsEmpty() (bool, error)
	Empty() error
	CoordinateDimension() (int, error)
	Clone() (Geometry, error)

	Dispose()

	geometryBase() *base
}

var (
	_ Geometry = (*Point)(nil)
	_ Geometry = (*LineString)(nil)
	_ Geometry = (*LinearRing)(nil)
	_ Geometry = (*Polygon)(nil)
	_ Geometry = (*MultiPoint)(nil)
	_ Geometry = (*MultiLineString)(nil)
	_ Geometry = (*MultiPolygon)(nil)
	_ Geometry = (*GeometryCollection)(nil)
)
