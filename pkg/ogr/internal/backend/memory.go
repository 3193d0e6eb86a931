package backend

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// Memory is an in-process native heap. Every geometry, including each member
// of a collection, occupies one slot of the entry table and is addressed by
// its slot number. Slots are never reused, so a stale address always fails
// instead of aliasing a newer geometry.
type Memory struct {
	entries []*object
	mu      sync.RWMutex
	closed  bool
	stats   MemoryStats
}

// MemoryStats counts native allocations of a Memory driver.
type MemoryStats struct {
	// Allocated counts objects ever placed on the heap, members included.
	Allocated int64 `json:"allocated" yaml:"allocated"`
	// Freed counts objects removed from the heap.
	Freed int64 `json:"freed" yaml:"freed"`
	// Live is the number of objects currently on the heap.
	Live int64 `json:"live" yaml:"live"`
	// Roots is the number of live top-level geometries.
	Roots int64 `json:"roots" yaml:"roots"`
}

type object struct {
	addr    Geometry
	typ     Type
	is3D    bool
	coords  []Coord
	members []*object
	parent  *object
}

var _ Driver = (*Memory)(nil)

// NewMemory creates an empty heap.
func NewMemory() *Memory {
	return &Memory{entries: make([]*object, 0, 64)}
}

func (m *Memory) Name() string    { return MemoryDriverName }
func (m *Memory) Version() string { return "go-geom" }

// Stats returns a snapshot of the allocation counters.
func (m *Memory) Stats() MemoryStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Create allocates an empty geometry of type t.
func (m *Memory) Create(t Type) (Geometry, error) {
	if t == Unknown || t > LinearRing {
		return 0, errors.Wrapf(ErrUnsupported, "create %s", t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	o := &object{typ: t}
	m.place(o)
	return o.addr, nil
}

// Clone deep-copies g into a new top-level geometry.
func (m *Memory) Clone(g Geometry) (Geometry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(g)
	if err != nil {
		return 0, err
	}
	c := o.copy()
	m.place(c)
	return c.addr, nil
}

// Destroy frees a top-level geometry and all its members.
func (m *Memory) Destroy(g Geometry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(g)
	if err != nil {
		return errors.Wrap(err, "destroy")
	}
	if o.parent != nil {
		return errors.Wrapf(ErrInteriorPointer, "geometry %#x is a member of %#x", uintptr(g), uintptr(o.parent.addr))
	}
	m.free(o)
	return nil
}

func (m *Memory) Type(g Geometry) (Type, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return Unknown, err
	}
	return o.typ, nil
}

func (m *Memory) IsEmpty(g Geometry) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return false, err
	}
	return o.empty(), nil
}

// Empty clears g, freeing its members.
func (m *Memory) Empty(g Geometry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(g)
	if err != nil {
		return err
	}
	for _, c := range o.members {
		m.free(c)
	}
	o.members = nil
	o.coords = nil
	return nil
}

func (m *Memory) CoordinateDimension(g Geometry) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return 0, err
	}
	return o.dimension(), nil
}

// Size reports the bytes the geometry would occupy as OGR objects: a fixed
// header per object plus eight bytes per ordinate.
func (m *Memory) Size(g Geometry) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return 0, err
	}
	return o.footprint(), nil
}

func (m *Memory) ExportWKT(g Geometry) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return "", err
	}
	return encodeWKT(o)
}

func (m *Memory) ExportWKB(g Geometry) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return nil, err
	}
	return encodeWKB(o)
}

func (m *Memory) ExportJSON(g Geometry) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return "", err
	}
	return encodeJSON(o)
}

func (m *Memory) ImportWKT(text string) (Geometry, error) {
	o, err := decodeWKT(text)
	if err != nil {
		return 0, err
	}
	return m.adopt(o)
}

func (m *Memory) ImportWKB(data []byte) (Geometry, error) {
	o, err := decodeWKB(data)
	if err != nil {
		return 0, err
	}
	return m.adopt(o)
}

func (m *Memory) ImportJSON(text string) (Geometry, error) {
	o, err := decodeJSON(text)
	if err != nil {
		return 0, err
	}
	return m.adopt(o)
}

// GeometryCount returns the number of members. Non-containers have none.
func (m *Memory) GeometryCount(g Geometry) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return 0, err
	}
	return len(o.members), nil
}

func (m *Memory) GeometryRef(g Geometry, i int) (Geometry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return 0, err
	}
	if !o.typ.IsContainer() {
		return 0, errors.Wrapf(ErrUnsupported, "member of %s", o.typ)
	}
	if i < 0 || i >= len(o.members) {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "member %d of %d", i, len(o.members))
	}
	return o.members[i].addr, nil
}

func (m *Memory) AddGeometry(g, member Geometry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(g)
	if err != nil {
		return err
	}
	src, err := m.lookup(member)
	if err != nil {
		return errors.Wrap(err, "member")
	}
	if !o.typ.Accepts(src.typ) {
		return errors.Wrapf(ErrUnsupported, "add %s to %s", src.typ, o.typ)
	}
	c := src.copy()
	c.parent = o
	o.members = append(o.members, c)
	m.place(c)
	return nil
}

func (m *Memory) RemoveGeometry(g Geometry, i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(g)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(o.members) {
		return errors.Wrapf(ErrIndexOutOfRange, "member %d of %d", i, len(o.members))
	}
	c := o.members[i]
	o.members = append(o.members[:i], o.members[i+1:]...)
	m.free(c)
	return nil
}

// PointCount returns the vertex count of points and curves, zero otherwise.
func (m *Memory) PointCount(g Geometry) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return 0, err
	}
	return len(o.coords), nil
}

func (m *Memory) GetPoint(g Geometry, i int) (Coord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, err := m.lookup(g)
	if err != nil {
		return Coord{}, err
	}
	if i < 0 || i >= len(o.coords) {
		return Coord{}, errors.Wrapf(ErrIndexOutOfRange, "point %d of %d", i, len(o.coords))
	}
	c := o.coords[i]
	c.HasZ = o.is3D
	return c, nil
}

// SetPoint sets vertex i. Curves grow to hold i, padding with zero vertices.
func (m *Memory) SetPoint(g Geometry, i int, c Coord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(g)
	if err != nil {
		return err
	}
	switch {
	case o.typ == Point:
		if i != 0 {
			return errors.Wrapf(ErrIndexOutOfRange, "point %d of a point", i)
		}
		if len(o.coords) == 0 {
			o.coords = make([]Coord, 1)
		}
	case o.typ.IsCurve():
		if i < 0 {
			return errors.Wrapf(ErrIndexOutOfRange, "point %d", i)
		}
		for len(o.coords) <= i {
			o.coords = append(o.coords, Coord{})
		}
	default:
		return errors.Wrapf(ErrUnsupported, "set point of %s", o.typ)
	}
	o.setCoord(i, c)
	return nil
}

func (m *Memory) AddPoint(g Geometry, c Coord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.lookup(g)
	if err != nil {
		return err
	}
	if !o.typ.IsCurve() {
		return errors.Wrapf(ErrUnsupported, "add point to %s", o.typ)
	}
	o.coords = append(o.coords, Coord{})
	o.setCoord(len(o.coords)-1, c)
	return nil
}

// Close frees every geometry on the heap. Addresses handed out before Close
// become invalid.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for i, o := range m.entries {
		if o != nil {
			m.stats.Freed++
			m.entries[i] = nil
		}
	}
	m.stats.Live = 0
	m.stats.Roots = 0
	m.entries = nil
	return nil
}

// adopt places a decoded object tree on the heap.
func (m *Memory) adopt(o *object) (Geometry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	m.place(o)
	return o.addr, nil
}

// lookup must be called with m.mu held.
func (m *Memory) lookup(g Geometry) (*object, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if g == 0 {
		return nil, errors.Wrap(ErrInvalidPointer, "nil geometry")
	}
	idx := int(g) - 1
	if idx < 0 || idx >= len(m.entries) || m.entries[idx] == nil {
		return nil, errors.Wrapf(ErrInvalidPointer, "geometry %#x", uintptr(g))
	}
	return m.entries[idx], nil
}

// place assigns addresses to o and all its members.
func (m *Memory) place(o *object) {
	m.entries = append(m.entries, o)
	o.addr = Geometry(len(m.entries))
	m.stats.Allocated++
	m.stats.Live++
	if o.parent == nil {
		m.stats.Roots++
	}
	for _, c := range o.members {
		c.parent = o
		m.place(c)
	}
}

// free clears the slots of o and all its members.
func (m *Memory) free(o *object) {
	for _, c := range o.members {
		m.free(c)
	}
	m.entries[int(o.addr)-1] = nil
	m.stats.Freed++
	m.stats.Live--
	if o.parent == nil {
		m.stats.Roots--
	}
}

func (o *object) copy() *object {
	c := &object{typ: o.typ, is3D: o.is3D}
	if len(o.coords) > 0 {
		c.coords = append([]Coord(nil), o.coords...)
	}
	for _, mem := range o.members {
		mc := mem.copy()
		mc.parent = c
		c.members = append(c.members, mc)
	}
	return c
}

func (o *object) empty() bool {
	if o.typ.IsContainer() {
		for _, c := range o.members {
			if !c.empty() {
				return false
			}
		}
		return true
	}
	return len(o.coords) == 0
}

func (o *object) dimension() int {
	if !o.typ.IsContainer() {
		if o.is3D {
			return 3
		}
		return 2
	}
	dim := 2
	for _, c := range o.members {
		dim = max(dim, c.dimension())
	}
	return dim
}

func (o *object) setCoord(i int, c Coord) {
	if c.HasZ {
		o.is3D = true
	}
	if !o.is3D {
		c.Z = 0
	}
	c.HasZ = false
	o.coords[i] = c
}

const objectHeaderSize = 48

func (o *object) footprint() int64 {
	n := int64(objectHeaderSize)
	n += int64(len(o.coords)) * int64(o.dimension()) * 8
	for _, c := range o.members {
		n += 8 + c.footprint()
	}
	return n
}
