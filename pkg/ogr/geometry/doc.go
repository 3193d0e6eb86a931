// Package geometry exposes native geometries as Go values.
//
// Every wrapper either owns its native geometry or borrows it. Geometries
// built with the New* constructors, parsed with FromWKT, FromWKB or
// FromGeoJSON, or returned by Clone are owned: the wrapper destroys the
// native value when it is disposed or collected. Members returned by Get and
// Rings().Get are views into their container. A view never destroys
// anything, and it stops working as soon as its container is disposed or a
// member is removed from it.
//
//	mp, _ := geometry.NewMultiPoint(lib)
//	defer mp.Dispose()
//	pt, _ := geometry.NewPointXY(lib, 1, 2)
//	_ = mp.Add(pt) // copies pt
//	pt.Dispose()
//	first, _ := mp.Get(0) // view, owned by mp
//	x, _ := first.X()
//
// Operations on a disposed wrapper or a stale view return an error matching
// ogr.ErrDeadHandle without touching native memory.
package geometry
