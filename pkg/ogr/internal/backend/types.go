package backend

import "github.com/cockroachdb/errors"

// Geometry is an opaque native geometry address. The zero value is the nil
// geometry. For the ogr driver it holds an OGRGeometryH; for the memory
// driver it is a slot in the handle table.
type Geometry uintptr

// Coord is a single vertex. HasZ reports whether Z is meaningful.
type Coord struct {
	X, Y, Z float64
	HasZ    bool
}

var (
	// ErrNotBuilt reports that the native bindings were not linked into the
	// current binary.
	ErrNotBuilt = errors.New("ogr/internal/backend: native bindings not built")

	// ErrClosed is returned by every operation of a closed driver.
	ErrClosed = errors.New("driver closed")

	// ErrInvalidPointer is returned for addresses that were never allocated
	// or have already been destroyed.
	ErrInvalidPointer = errors.New("invalid geometry pointer")

	// ErrInteriorPointer is returned when destroying a geometry that is a
	// member of another geometry.
	ErrInteriorPointer = errors.New("destroy of interior geometry pointer")

	// ErrUnsupported is returned for operations that do not apply to the
	// geometry type.
	ErrUnsupported = errors.New("operation not supported for geometry type")

	// ErrIndexOutOfRange is returned for member or vertex indexes outside
	// the geometry.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownDriver is returned by Open for unregistered driver names.
	ErrUnknownDriver = errors.New("unknown driver")
)

// Driver is the capability surface of the native geometry library. It has
// no reference counting: whoever created a root geometry (Create, Clone or
// an Import) must Destroy it exactly once, and addresses obtained from
// GeometryRef are interior pointers owned by their container.
type Driver interface {
	Name() string
	Version() string

	Create(t Type) (Geometry, error)
	Clone(g Geometry) (Geometry, error)
	Destroy(g Geometry) error

	Type(g Geometry) (Type, error)
	IsEmpty(g Geometry) (bool, error)
	Empty(g Geometry) error
	CoordinateDimension(g Geometry) (int, error)
	// Size approximates the native footprint of g in bytes.
	Size(g Geometry) (int64, error)

	ExportWKT(g Geometry) (string, error)
	ExportWKB(g Geometry) ([]byte, error)
	ExportJSON(g Geometry) (string, error)
	ImportWKT(wkt string) (Geometry, error)
	ImportWKB(wkb []byte) (Geometry, error)
	ImportJSON(json string) (Geometry, error)

	GeometryCount(g Geometry) (int, error)
	// GeometryRef returns an interior pointer to member i of g. The caller
	// must not destroy it.
	GeometryRef(g Geometry, i int) (Geometry, error)
	// AddGeometry appends a copy of member to g.
	AddGeometry(g, member Geometry) error
	// RemoveGeometry destroys member i of g.
	RemoveGeometry(g Geometry, i int) error

	PointCount(g Geometry) (int, error)
	GetPoint(g Geometry, i int) (Coord, error)
	SetPoint(g Geometry, i int, c Coord) error
	AddPoint(g Geometry, c Coord) error

	Close() error
}

// Open returns the driver registered under name. An empty name selects the
// memory driver.
func Open(name string) (Driver, error) {
	switch name {
	case "", MemoryDriverName:
		return NewMemory(), nil
	case OGRDriverName:
		return newOGR()
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", name)
	}
}

// Driver names accepted by Open.
const (
	MemoryDriverName = "memory"
	OGRDriverName    = "ogr"
)
