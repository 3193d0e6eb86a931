package geometry

// Polygon is an exterior ring followed by zero or more interior rings.
type Polygon struct {
	base
}

// Rings gives access to the polygon's rings. Rings returned by Get are views
// owned by the polygon; Add copies the ring it is given.
func (p *Polygon) Rings() Members[*LinearRing] {
	return Members[*LinearRing]{b: &p.base}
}
