package backend

import (
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// ErrCodec marks failures to encode or decode a text or binary geometry.
var ErrCodec = errors.New("geometry codec")

func encodeWKT(o *object) (string, error) {
	g, err := toGeom(o, layoutOf(o))
	if err != nil {
		return "", err
	}
	s, err := wkt.Marshal(g)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "encode wkt"), ErrCodec)
	}
	return s, nil
}

func encodeWKB(o *object) ([]byte, error) {
	g, err := toGeom(o, layoutOf(o))
	if err != nil {
		return nil, err
	}
	b, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "encode wkb"), ErrCodec)
	}
	return b, nil
}

func encodeJSON(o *object) (string, error) {
	g, err := toGeom(o, layoutOf(o))
	if err != nil {
		return "", err
	}
	b, err := geojson.Marshal(g)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "encode geojson"), ErrCodec)
	}
	return string(b), nil
}

func decodeWKT(s string) (*object, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode wkt"), ErrCodec)
	}
	return fromGeom(g)
}

func decodeWKB(b []byte) (*object, error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode wkb"), ErrCodec)
	}
	return fromGeom(g)
}

func decodeJSON(s string) (*object, error) {
	var g geom.T
	if err := geojson.Unmarshal([]byte(s), &g); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode geojson"), ErrCodec)
	}
	return fromGeom(g)
}

func layoutOf(o *object) geom.Layout {
	if o.dimension() == 3 {
		return geom.XYZ
	}
	return geom.XY
}

func toCoord(c Coord, l geom.Layout) geom.Coord {
	if l == geom.XYZ {
		return geom.Coord{c.X, c.Y, c.Z}
	}
	return geom.Coord{c.X, c.Y}
}

func toCoords(cs []Coord, l geom.Layout) []geom.Coord {
	out := make([]geom.Coord, len(cs))
	for i, c := range cs {
		out[i] = toCoord(c, l)
	}
	return out
}

func fromCoord(c geom.Coord, l geom.Layout) Coord {
	out := Coord{X: c[0], Y: c[1]}
	if zi := l.ZIndex(); zi != -1 {
		out.Z = c[zi]
	}
	return out
}

func fromCoords(cs []geom.Coord, l geom.Layout) []Coord {
	if len(cs) == 0 {
		return nil
	}
	out := make([]Coord, len(cs))
	for i, c := range cs {
		out[i] = fromCoord(c, l)
	}
	return out
}

// toGeom converts an object tree to a go-geom value with a single layout.
func toGeom(o *object, l geom.Layout) (geom.T, error) {
	switch o.typ {
	case Point:
		if len(o.coords) == 0 {
			return geom.NewPointEmpty(l), nil
		}
		return geom.NewPoint(l).SetCoords(toCoord(o.coords[0], l))
	case LineString:
		return geom.NewLineString(l).SetCoords(toCoords(o.coords, l))
	case LinearRing:
		return geom.NewLinearRing(l).SetCoords(toCoords(o.coords, l))
	case Polygon:
		p := geom.NewPolygon(l)
		for _, c := range o.members {
			r, err := toGeom(c, l)
			if err != nil {
				return nil, err
			}
			if err := p.Push(r.(*geom.LinearRing)); err != nil {
				return nil, errors.Wrap(err, "polygon ring")
			}
		}
		return p, nil
	case MultiPoint:
		mp := geom.NewMultiPoint(l)
		for _, c := range o.members {
			pt, err := toGeom(c, l)
			if err != nil {
				return nil, err
			}
			if err := mp.Push(pt.(*geom.Point)); err != nil {
				return nil, errors.Wrap(err, "multipoint member")
			}
		}
		return mp, nil
	case MultiLineString:
		mls := geom.NewMultiLineString(l)
		for _, c := range o.members {
			ls, err := toGeom(c, l)
			if err != nil {
				return nil, err
			}
			if err := mls.Push(ls.(*geom.LineString)); err != nil {
				return nil, errors.Wrap(err, "multilinestring member")
			}
		}
		return mls, nil
	case MultiPolygon:
		mp := geom.NewMultiPolygon(l)
		for _, c := range o.members {
			p, err := toGeom(c, l)
			if err != nil {
				return nil, err
			}
			if err := mp.Push(p.(*geom.Polygon)); err != nil {
				return nil, errors.Wrap(err, "multipolygon member")
			}
		}
		return mp, nil
	case GeometryCollection:
		gc := geom.NewGeometryCollection()
		for _, c := range o.members {
			m, err := toGeom(c, l)
			if err != nil {
				return nil, err
			}
			if err := gc.Push(m); err != nil {
				return nil, errors.Wrap(err, "collection member")
			}
		}
		return gc, nil
	default:
		return nil, errors.Wrapf(ErrUnsupported, "encode %s", o.typ)
	}
}

// fromGeom converts a go-geom value to an unplaced object tree.
func fromGeom(g geom.T) (*object, error) {
	l := g.Layout()
	is3D := l.ZIndex() != -1
	switch g := g.(type) {
	case *geom.Point:
		o := &object{typ: Point, is3D: is3D}
		if !g.Empty() {
			o.coords = []Coord{fromCoord(g.Coords(), l)}
		}
		return o, nil
	case *geom.LineString:
		return &object{typ: LineString, is3D: is3D, coords: fromCoords(g.Coords(), l)}, nil
	case *geom.LinearRing:
		return &object{typ: LinearRing, is3D: is3D, coords: fromCoords(g.Coords(), l)}, nil
	case *geom.Polygon:
		o := &object{typ: Polygon}
		for i := 0; i < g.NumLinearRings(); i++ {
			if err := o.push(g.LinearRing(i)); err != nil {
				return nil, err
			}
		}
		return o, nil
	case *geom.MultiPoint:
		o := &object{typ: MultiPoint}
		for i := 0; i < g.NumPoints(); i++ {
			if err := o.push(g.Point(i)); err != nil {
				return nil, err
			}
		}
		return o, nil
	case *geom.MultiLineString:
		o := &object{typ: MultiLineString}
		for i := 0; i < g.NumLineStrings(); i++ {
			if err := o.push(g.LineString(i)); err != nil {
				return nil, err
			}
		}
		return o, nil
	case *geom.MultiPolygon:
		o := &object{typ: MultiPolygon}
		for i := 0; i < g.NumPolygons(); i++ {
			if err := o.push(g.Polygon(i)); err != nil {
				return nil, err
			}
		}
		return o, nil
	case *geom.GeometryCollection:
		o := &object{typ: GeometryCollection}
		for _, m := range g.Geoms() {
			if err := o.push(m); err != nil {
				return nil, err
			}
		}
		return o, nil
	default:
		return nil, errors.Wrapf(ErrUnsupported, "decode %T", g)
	}
}

func (o *object) push(g geom.T) error {
	c, err := fromGeom(g)
	if err != nil {
		return err
	}
	c.parent = o
	o.members = append(o.members, c)
	return nil
}
