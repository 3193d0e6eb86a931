// Package backend hosts the boundary to the native geometry library. The
// rest of the module talks to a Driver and never sees cgo.
//
// Two drivers exist. The memory driver is a pure-Go native heap: geometries
// live in a handle table and are addressed by opaque Geometry values, with
// interior addresses for collection members, exactly like pointers into the
// C library. It reports double frees, frees of interior pointers and use
// after free as errors instead of corrupting memory, which makes it the
// driver the test suite runs against. The ogr driver binds GDAL's OGR C API
// and is only compiled with the `gdal` build tag and cgo enabled; otherwise
// a stub returns ErrNotBuilt.
package backend
