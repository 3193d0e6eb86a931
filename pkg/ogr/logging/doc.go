// Package logging provides a minimal logging facade for the ogr-go wrapper.
//
// This package defines a Logger interface that wraps the subset of zap
// functionality the wrapper needs. The interface is intentionally small to
// allow applications to provide custom implementations for testing or for
// integration with existing logging systems.
//
// # Logger Interface
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// Arguments are alternating key/value pairs, as with zap's SugaredLogger.
//
// # Default Implementation
//
//	// Discard everything (the default used by ogr.Open)
//	logger := logging.Nop()
//
//	// Use a configured zap logger
//	z, _ := zap.NewProduction()
//	logger := logging.New(z)
//
// # Where the Wrapper Logs
//
// Handle finalization runs on the runtime's finalizer goroutine, where an
// error cannot be returned to anyone. Failures to release a native geometry
// at that point are reported through this facade at error level and then
// dropped.
package logging
