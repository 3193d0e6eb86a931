//go:build cgo && gdal

package backend

/*
#cgo pkg-config: gdal
#include <stdlib.h>
#include "gdal.h"
#include "ogr_api.h"
#include "cpl_conv.h"
#include "cpl_vsi.h"

static OGRErr ogrgo_from_wkt(const char *wkt, OGRGeometryH *out) {
	char *cursor = (char *)wkt;
	return OGR_G_CreateFromWkt(&cursor, NULL, out);
}

static OGRErr ogrgo_from_wkb(const void *data, int n, OGRGeometryH *out) {
	return OGR_G_CreateFromWkb((unsigned char *)data, NULL, out, n);
}

static OGRErr ogrgo_to_wkb(OGRGeometryH g, unsigned char *out) {
	return OGR_G_ExportToIsoWkb(g, wkbNDR, out);
}
*/
import "C"

import (
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// ogrDriver binds the OGR C API. Geometry values are OGRGeometryH pointers
// stored as uintptr; OGR memory is not managed by the Go collector.
type ogrDriver struct {
	closed atomic.Bool
}

var _ Driver = (*ogrDriver)(nil)

func newOGR() (Driver, error) {
	return &ogrDriver{}, nil
}

func cgeom(g Geometry) C.OGRGeometryH {
	return C.OGRGeometryH(unsafe.Pointer(uintptr(g)))
}

func gogeom(h C.OGRGeometryH) Geometry {
	return Geometry(uintptr(unsafe.Pointer(h)))
}

func ogrErr(code C.OGRErr, op string) error {
	if code == C.OGRERR_NONE {
		return nil
	}
	return errors.Newf("%s: OGR error %d", op, int(code))
}

func (d *ogrDriver) check(g Geometry) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if g == 0 {
		return errors.Wrap(ErrInvalidPointer, "nil geometry")
	}
	return nil
}

func (d *ogrDriver) Name() string { return OGRDriverName }

func (d *ogrDriver) Version() string {
	cs := C.CString("RELEASE_NAME")
	defer C.free(unsafe.Pointer(cs))
	return C.GoString(C.GDALVersionInfo(cs))
}

func (d *ogrDriver) Create(t Type) (Geometry, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	code, err := TypeToWKB(t)
	if err != nil {
		return 0, err
	}
	h := C.OGR_G_CreateGeometry(C.OGRwkbGeometryType(code))
	if h == nil {
		return 0, errors.Newf("OGR_G_CreateGeometry(%s) returned NULL", t)
	}
	return gogeom(h), nil
}

func (d *ogrDriver) Clone(g Geometry) (Geometry, error) {
	if err := d.check(g); err != nil {
		return 0, err
	}
	h := C.OGR_G_Clone(cgeom(g))
	if h == nil {
		return 0, errors.New("OGR_G_Clone returned NULL")
	}
	return gogeom(h), nil
}

// Destroy stays usable after Close so outstanding owners can still free
// their geometries.
func (d *ogrDriver) Destroy(g Geometry) error {
	if g == 0 {
		return errors.Wrap(ErrInvalidPointer, "nil geometry")
	}
	C.OGR_G_DestroyGeometry(cgeom(g))
	return nil
}

func (d *ogrDriver) Type(g Geometry) (Type, error) {
	if err := d.check(g); err != nil {
		return Unknown, err
	}
	h := cgeom(g)
	return NamedWKBToType(uint32(C.OGR_G_GetGeometryType(h)), C.GoString(C.OGR_G_GetGeometryName(h)))
}

func (d *ogrDriver) IsEmpty(g Geometry) (bool, error) {
	if err := d.check(g); err != nil {
		return false, err
	}
	return C.OGR_G_IsEmpty(cgeom(g)) != 0, nil
}

func (d *ogrDriver) Empty(g Geometry) error {
	if err := d.check(g); err != nil {
		return err
	}
	C.OGR_G_Empty(cgeom(g))
	return nil
}

func (d *ogrDriver) CoordinateDimension(g Geometry) (int, error) {
	if err := d.check(g); err != nil {
		return 0, err
	}
	return int(C.OGR_G_CoordinateDimension(cgeom(g))), nil
}

func (d *ogrDriver) Size(g Geometry) (int64, error) {
	if err := d.check(g); err != nil {
		return 0, err
	}
	return int64(C.OGR_G_WkbSize(cgeom(g))), nil
}

func (d *ogrDriver) ExportWKT(g Geometry) (string, error) {
	if err := d.check(g); err != nil {
		return "", err
	}
	var out *C.char
	if err := ogrErr(C.OGR_G_ExportToIsoWkt(cgeom(g), &out), "export wkt"); err != nil {
		return "", err
	}
	defer C.VSIFree(unsafe.Pointer(out))
	return C.GoString(out), nil
}

func (d *ogrDriver) ExportWKB(g Geometry) ([]byte, error) {
	if err := d.check(g); err != nil {
		return nil, err
	}
	n := C.OGR_G_WkbSize(cgeom(g))
	buf := C.malloc(C.size_t(n))
	defer C.free(buf)
	if err := ogrErr(C.ogrgo_to_wkb(cgeom(g), (*C.uchar)(buf)), "export wkb"); err != nil {
		return nil, err
	}
	return C.GoBytes(buf, n), nil
}

func (d *ogrDriver) ExportJSON(g Geometry) (string, error) {
	if err := d.check(g); err != nil {
		return "", err
	}
	out := C.OGR_G_ExportToJson(cgeom(g))
	if out == nil {
		return "", errors.New("OGR_G_ExportToJson returned NULL")
	}
	defer C.VSIFree(unsafe.Pointer(out))
	return C.GoString(out), nil
}

func (d *ogrDriver) ImportWKT(wkt string) (Geometry, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	cs := C.CString(wkt)
	defer C.free(unsafe.Pointer(cs))
	var h C.OGRGeometryH
	if err := ogrErr(C.ogrgo_from_wkt(cs, &h), "import wkt"); err != nil {
		return 0, err
	}
	return gogeom(h), nil
}

func (d *ogrDriver) ImportWKB(wkb []byte) (Geometry, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	if len(wkb) == 0 {
		return 0, errors.New("import wkb: empty input")
	}
	cb := C.CBytes(wkb)
	defer C.free(cb)
	var h C.OGRGeometryH
	if err := ogrErr(C.ogrgo_from_wkb(cb, C.int(len(wkb)), &h), "import wkb"); err != nil {
		return 0, err
	}
	return gogeom(h), nil
}

func (d *ogrDriver) ImportJSON(json string) (Geometry, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	cs := C.CString(json)
	defer C.free(unsafe.Pointer(cs))
	h := C.OGR_G_CreateGeometryFromJson(cs)
	if h == nil {
		return 0, errors.New("import geojson: OGR_G_CreateGeometryFromJson returned NULL")
	}
	return gogeom(h), nil
}

func (d *ogrDriver) GeometryCount(g Geometry) (int, error) {
	if err := d.check(g); err != nil {
		return 0, err
	}
	return int(C.OGR_G_GetGeometryCount(cgeom(g))), nil
}

func (d *ogrDriver) GeometryRef(g Geometry, i int) (Geometry, error) {
	if err := d.check(g); err != nil {
		return 0, err
	}
	n := int(C.OGR_G_GetGeometryCount(cgeom(g)))
	if i < 0 || i >= n {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "member %d of %d", i, n)
	}
	h := C.OGR_G_GetGeometryRef(cgeom(g), C.int(i))
	if h == nil {
		return 0, errors.Wrapf(ErrInvalidPointer, "member %d", i)
	}
	return gogeom(h), nil
}

func (d *ogrDriver) AddGeometry(g, member Geometry) error {
	if err := d.check(g); err != nil {
		return err
	}
	if err := d.check(member); err != nil {
		return errors.Wrap(err, "member")
	}
	return ogrErr(C.OGR_G_AddGeometry(cgeom(g), cgeom(member)), "add geometry")
}

func (d *ogrDriver) RemoveGeometry(g Geometry, i int) error {
	if err := d.check(g); err != nil {
		return err
	}
	return ogrErr(C.OGR_G_RemoveGeometry(cgeom(g), C.int(i), C.TRUE), "remove geometry")
}

func (d *ogrDriver) PointCount(g Geometry) (int, error) {
	if err := d.check(g); err != nil {
		return 0, err
	}
	return int(C.OGR_G_GetPointCount(cgeom(g))), nil
}

func (d *ogrDriver) GetPoint(g Geometry, i int) (Coord, error) {
	if err := d.check(g); err != nil {
		return Coord{}, err
	}
	n := int(C.OGR_G_GetPointCount(cgeom(g)))
	if i < 0 || i >= n {
		return Coord{}, errors.Wrapf(ErrIndexOutOfRange, "point %d of %d", i, n)
	}
	var x, y, z C.double
	C.OGR_G_GetPoint(cgeom(g), C.int(i), &x, &y, &z)
	return Coord{
		X:    float64(x),
		Y:    float64(y),
		Z:    float64(z),
		HasZ: C.OGR_G_CoordinateDimension(cgeom(g)) == 3,
	}, nil
}

func (d *ogrDriver) SetPoint(g Geometry, i int, c Coord) error {
	if err := d.check(g); err != nil {
		return err
	}
	if i < 0 {
		return errors.Wrapf(ErrIndexOutOfRange, "point %d", i)
	}
	if c.HasZ {
		C.OGR_G_SetPoint(cgeom(g), C.int(i), C.double(c.X), C.double(c.Y), C.double(c.Z))
	} else {
		C.OGR_G_SetPoint_2D(cgeom(g), C.int(i), C.double(c.X), C.double(c.Y))
	}
	return nil
}

func (d *ogrDriver) AddPoint(g Geometry, c Coord) error {
	if err := d.check(g); err != nil {
		return err
	}
	if c.HasZ {
		C.OGR_G_AddPoint(cgeom(g), C.double(c.X), C.double(c.Y), C.double(c.Z))
	} else {
		C.OGR_G_AddPoint_2D(cgeom(g), C.double(c.X), C.double(c.Y))
	}
	return nil
}

// Close only marks the driver closed. GDAL itself stays loaded for the life
// of the process.
func (d *ogrDriver) Close() error {
	d.closed.Store(true)
	return nil
}
