//go:build !cgo || !gdal

package backend

// newOGR reports that GDAL was not linked in. Build with cgo enabled and
// the `gdal` tag to get the real driver.
func newOGR() (Driver, error) {
	return nil, ErrNotBuilt
}
