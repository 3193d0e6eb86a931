package geometry

import "github.com/geobridge/ogr-go/pkg/ogr/internal/backend"

// curve holds the vertex accessors shared by LineString and LinearRing.
type curve struct {
	base
}

// LineString is an open sequence of vertices.
type LineString struct {
	curve
}

// LinearRing is a closed sequence of vertices, used as a polygon ring. It
// cannot be added to a GeometryCollection.
type LinearRing struct {
	curve
}

func (c *curve) PointCount() (int, error) {
	return value(&c.base, func(d backend.Driver, g backend.Geometry) (int, error) {
		return d.PointCount(g)
	})
}

func (c *curve) Point(i int) (Coord, error) {
	return value(&c.base, func(d backend.Driver, g backend.Geometry) (Coord, error) {
		return d.GetPoint(g, i)
	})
}

// Points returns a copy of every vertex.
func (c *curve) Points() ([]Coord, error) {
	return value(&c.base, func(d backend.Driver, g backend.Geometry) ([]Coord, error) {
		n, err := d.PointCount(g)
		if err != nil {
			return nil, err
		}
		out := make([]Coord, 0, n)
		for i := range n {
			p, err := d.GetPoint(g, i)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	})
}

// SetPoint sets vertex i, growing the curve with zero vertices if needed.
func (c *curve) SetPoint(i int, p Coord) error {
	return c.do(func(d backend.Driver, g backend.Geometry) error {
		return d.SetPoint(g, i, p)
	})
}

func (c *curve) AddPoint(p Coord) error {
	return c.do(func(d backend.Driver, g backend.Geometry) error {
		return d.AddPoint(g, p)
	})
}
