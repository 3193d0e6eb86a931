package ogr

import (
	"github.com/cockroachdb/errors"

	"github.com/geobridge/ogr-go/pkg/ogr/handle"
	"github.com/geobridge/ogr-go/pkg/ogr/internal/backend"
)

var (
	// ErrLibraryClosed is returned by a closed Library and by geometries
	// created through it.
	ErrLibraryClosed = errors.New("ogr: library closed")

	// ErrTypeMismatch indicates a native geometry whose type does not match
	// the wrapper requested for it.
	ErrTypeMismatch = errors.New("ogr: geometry type mismatch")

	// ErrForeignGeometry is returned when a geometry is handed to a container
	// created through a different Library.
	ErrForeignGeometry = errors.New("ogr: geometry belongs to another library")

	ErrDeadHandle      = handle.ErrDeadHandle
	ErrAllocation      = handle.ErrAllocation
	ErrNilNative       = handle.ErrNilNative
	ErrNotBuilt        = backend.ErrNotBuilt
	ErrUnknownDriver   = backend.ErrUnknownDriver
	ErrIndexOutOfRange = backend.ErrIndexOutOfRange
	ErrUnsupported     = backend.ErrUnsupported
	ErrCodec           = backend.ErrCodec
	ErrInvalidPointer  = backend.ErrInvalidPointer
)

// RemapError converts driver errors to public API errors.
// This is exported for use by the geometry package.
func RemapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, backend.ErrClosed) {
		return errors.Mark(err, ErrLibraryClosed)
	}
	return err
}
