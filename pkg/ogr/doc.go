// Package ogr opens and closes the native geometry library used by the
// geometry package. A Library selects a driver, carries the logger and
// lifecycle observer shared by every wrapper it creates, and optionally an
// identity registry that makes repeated member lookups return the same Go
// wrapper.
//
// Geometries created through a Library must not outlive it in use: once
// Close returns, every geometry entry point fails with ErrLibraryClosed.
// Wrappers that are still reachable are released by their finalizers.
package ogr
