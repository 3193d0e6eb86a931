package ogr

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/geobridge/ogr-go/pkg/ogr/handle"
	"github.com/geobridge/ogr-go/pkg/ogr/internal/backend"
	"github.com/geobridge/ogr-go/pkg/ogr/logging"
)

// Library represents an opened native geometry library.
type Library struct {
	id       string
	cfg      Config
	driver   backend.Driver
	logger   logging.Logger
	observer handle.Observer
	registry *handle.Registry
	epochs   *handle.Epochs
	closed   atomic.Bool
}

// Option customizes Open.
type Option func(*options)

type options struct {
	logger   logging.Logger
	observer handle.Observer
	driver   backend.Driver
}

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver sets the observer notified of every wrapper created and
// finalized through the library.
func WithObserver(obs handle.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithDriver overrides the driver named in Config. Close closes it.
func WithDriver(d backend.Driver) Option {
	return func(o *options) { o.driver = d }
}

// Open prepares the native library.
func Open(cfg Config, opts ...Option) (*Library, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	if o.observer == nil {
		o.observer = handle.NopObserver{}
	}

	d := o.driver
	if d == nil {
		var err error
		if d, err = backend.Open(cfg.Driver); err != nil {
			return nil, errors.Wrap(err, "open driver")
		}
	}

	l := &Library{
		id:       uuid.NewString(),
		cfg:      cfg,
		driver:   d,
		observer: o.observer,
		epochs:   handle.NewEpochs(),
	}
	l.logger = o.logger.With("library", l.id, "driver", d.Name())
	if cfg.StableIdentity {
		l.registry = handle.NewRegistry()
	}
	l.logger.Debug(context.Background(), "library opened", "version", d.Version())
	return l, nil
}

// Close releases the native resources associated with the library. The
// method is idempotent, returning ErrLibraryClosed when called twice.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	if !l.closed.CompareAndSwap(false, true) {
		return ErrLibraryClosed
	}
	if err := l.driver.Close(); err != nil {
		return errors.Wrap(err, "close driver")
	}
	l.logger.Debug(context.Background(), "library closed")
	return nil
}

// Check returns ErrLibraryClosed once Close has been called.
func (l *Library) Check() error {
	if l == nil {
		return errors.AssertionFailedf("nil library")
	}
	if l.closed.Load() {
		return ErrLibraryClosed
	}
	return nil
}

// ID returns the instance id attached to the library's log lines.
func (l *Library) ID() string { return l.id }

func (l *Library) Config() Config             { return l.cfg }
func (l *Library) Logger() logging.Logger     { return l.logger }
func (l *Library) Observer() handle.Observer  { return l.observer }
func (l *Library) Driver() backend.Driver     { return l.driver }
func (l *Library) Registry() *handle.Registry { return l.registry }

// Epochs returns the table that lets every view of one native geometry share
// a single generation.
func (l *Library) Epochs() *handle.Epochs { return l.epochs }

// HeapStats counts native allocations of the memory driver.
type HeapStats = backend.MemoryStats

// HeapStats reports the driver's allocation counters. The second result is
// false for drivers that do not keep them.
func (l *Library) HeapStats() (HeapStats, bool) {
	m, ok := l.driver.(*backend.Memory)
	if !ok {
		return HeapStats{}, false
	}
	return m.Stats(), true
}
