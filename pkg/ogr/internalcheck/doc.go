// Package internalcheck holds static checks over the ogr-go source tree.
//
// The tests load the module's packages with golang.org/x/tools/go/packages
// and fail when a boundary is crossed: cgo outside the backend package,
// finalizers installed outside the handle package, or errors built without
// github.com/cockroachdb/errors.
//
// # Internal Use Only
//
// This package has no exported API and should not be imported.
package internalcheck
