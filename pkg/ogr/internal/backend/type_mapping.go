package backend

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Type is the flat geometry type of a native geometry.
type Type int

const (
	Unknown Type = iota
	Point
	LineString
	Polygon
	MultiPoint
	MultiLineString
	MultiPolygon
	GeometryCollection
	LinearRing
)

// String returns the OGR geometry name of the type.
func (t Type) String() string {
	switch t {
	case Point:
		return "Point"
	case LineString:
		return "LineString"
	case Polygon:
		return "Polygon"
	case MultiPoint:
		return "MultiPoint"
	case MultiLineString:
		return "MultiLineString"
	case MultiPolygon:
		return "MultiPolygon"
	case GeometryCollection:
		return "GeometryCollection"
	case LinearRing:
		return "LinearRing"
	default:
		return "Unknown"
	}
}

// IsContainer reports whether geometries of type t hold member geometries.
func (t Type) IsContainer() bool {
	switch t {
	case Polygon, MultiPoint, MultiLineString, MultiPolygon, GeometryCollection:
		return true
	default:
		return false
	}
}

// IsCurve reports whether geometries of type t hold a vertex sequence.
func (t Type) IsCurve() bool {
	return t == LineString || t == LinearRing
}

// Accepts reports whether a container of type t can hold a member of type m.
func (t Type) Accepts(m Type) bool {
	switch t {
	case Polygon:
		return m == LinearRing
	case MultiPoint:
		return m == Point
	case MultiLineString:
		return m == LineString
	case MultiPolygon:
		return m == Polygon
	case GeometryCollection:
		return m != Unknown && m != LinearRing
	default:
		return false
	}
}

// OGR wkbGeometryType codes. wkbLinearRing is OGR's internal code; it never
// appears in WKB.
const (
	wkbUnknown            = 0
	wkbPoint              = 1
	wkbLineString         = 2
	wkbPolygon            = 3
	wkbMultiPoint         = 4
	wkbMultiLineString    = 5
	wkbMultiPolygon       = 6
	wkbGeometryCollection = 7
	wkbLinearRing         = 101

	wkb25DBit = 0x80000000
)

// TypeToWKB converts a Type to an OGR wkbGeometryType code. This is the only
// place where the mapping from Go types to OGR codes exists.
func TypeToWKB(t Type) (uint32, error) {
	switch t {
	case Point:
		return wkbPoint, nil
	case LineString:
		return wkbLineString, nil
	case Polygon:
		return wkbPolygon, nil
	case MultiPoint:
		return wkbMultiPoint, nil
	case MultiLineString:
		return wkbMultiLineString, nil
	case MultiPolygon:
		return wkbMultiPolygon, nil
	case GeometryCollection:
		return wkbGeometryCollection, nil
	case LinearRing:
		return wkbLinearRing, nil
	default:
		return wkbUnknown, errors.Wrapf(ErrUnsupported, "geometry type %s", t)
	}
}

// WKBToType converts an OGR wkbGeometryType code, possibly carrying the 2.5D
// flag or an ISO Z/M/ZM offset, to a Type.
func WKBToType(code uint32) (Type, error) {
	flat := code &^ wkb25DBit
	if flat != wkbLinearRing {
		flat %= 1000
	}
	switch flat {
	case wkbPoint:
		return Point, nil
	case wkbLineString:
		return LineString, nil
	case wkbPolygon:
		return Polygon, nil
	case wkbMultiPoint:
		return MultiPoint, nil
	case wkbMultiLineString:
		return MultiLineString, nil
	case wkbMultiPolygon:
		return MultiPolygon, nil
	case wkbGeometryCollection:
		return GeometryCollection, nil
	case wkbLinearRing:
		return LinearRing, nil
	default:
		return Unknown, errors.Wrapf(ErrUnsupported, "wkb geometry type %d", code)
	}
}

// NamedWKBToType is WKBToType for drivers that report a linear ring with the
// line string code. OGR does: OGR_G_GetGeometryType returns wkbLineString for
// a ring, and only OGR_G_GetGeometryName says "LINEARRING".
func NamedWKBToType(code uint32, name string) (Type, error) {
	t, err := WKBToType(code)
	if err != nil {
		return Unknown, err
	}
	if t == LineString && strings.EqualFold(name, "LINEARRING") {
		return LinearRing, nil
	}
	return t, nil
}
