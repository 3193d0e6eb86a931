package geometry_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geobridge/ogr-go/pkg/ogr"
	"github.com/geobridge/ogr-go/pkg/ogr/internal/backend"
)

// countingDriver records destroy and export calls made against the memory
// driver.
type countingDriver struct {
	*backend.Memory

	mu        sync.Mutex
	destroyed map[backend.Geometry]int
	exports   atomic.Int64
}

func newCountingDriver() *countingDriver {
	return &countingDriver{
		Memory:    backend.NewMemory(),
		destroyed: make(map[backend.Geometry]int),
	}
}

func (d *countingDriver) Destroy(g backend.Geometry) error {
	d.mu.Lock()
	d.destroyed[g]++
	d.mu.Unlock()
	return d.Memory.Destroy(g)
}

func (d *countingDriver) ExportWKT(g backend.Geometry) (string, error) {
	d.exports.Add(1)
	return d.Memory.ExportWKT(g)
}

func (d *countingDriver) ExportWKB(g backend.Geometry) ([]byte, error) {
	d.exports.Add(1)
	return d.Memory.ExportWKB(g)
}

func (d *countingDriver) ExportJSON(g backend.Geometry) (string, error) {
	d.exports.Add(1)
	return d.Memory.ExportJSON(g)
}

func (d *countingDriver) destroyCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.destroyed {
		n += c
	}
	return n
}

func (d *countingDriver) maxDestroysPerValue() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := 0
	for _, c := range d.destroyed {
		m = max(m, c)
	}
	return m
}

func openLib(t *testing.T, cfg ogr.Config, opts ...ogr.Option) (*ogr.Library, *countingDriver) {
	t.Helper()
	d := newCountingDriver()
	lib, err := ogr.Open(cfg, append([]ogr.Option{ogr.WithDriver(d)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	return lib, d
}
