package geometry

import "github.com/geobridge/ogr-go/pkg/ogr/internal/backend"

// Point is a single position. An empty point reads as the origin.
type Point struct {
	base
}

func (p *Point) coord() (Coord, error) {
	return value(&p.base, func(d backend.Driver, g backend.Geometry) (Coord, error) {
		return readPoint(d, g)
	})
}

func readPoint(d backend.Driver, g backend.Geometry) (Coord, error) {
	n, err := d.PointCount(g)
	if err != nil || n == 0 {
		return Coord{}, err
	}
	return d.GetPoint(g, 0)
}

// update applies fn to the current position and stores the result.
func (p *Point) update(fn func(c *Coord)) error {
	return p.do(func(d backend.Driver, g backend.Geometry) error {
		c, err := readPoint(d, g)
		if err != nil {
			return err
		}
		fn(&c)
		return d.SetPoint(g, 0, c)
	})
}

func (p *Point) set(c Coord) error {
	return p.do(func(d backend.Driver, g backend.Geometry) error {
		return d.SetPoint(g, 0, c)
	})
}

func (p *Point) X() (float64, error) {
	c, err := p.coord()
	return c.X, err
}

func (p *Point) Y() (float64, error) {
	c, err := p.coord()
	return c.Y, err
}

// Z returns zero for two-dimensional points.
func (p *Point) Z() (float64, error) {
	c, err := p.coord()
	return c.Z, err
}

// Coord returns the position with HasZ set for three-dimensional points.
func (p *Point) Coord() (Coord, error) {
	return p.coord()
}

func (p *Point) SetX(x float64) error {
	return p.update(func(c *Coord) { c.X = x })
}

func (p *Point) SetY(y float64) error {
	return p.update(func(c *Coord) { c.Y = y })
}

// SetZ makes the point three-dimensional.
func (p *Point) SetZ(z float64) error {
	return p.update(func(c *Coord) {
		c.Z = z
		c.HasZ = true
	})
}

// SetXY keeps Z of a three-dimensional point.
func (p *Point) SetXY(x, y float64) error {
	return p.update(func(c *Coord) {
		c.X = x
		c.Y = y
	})
}
