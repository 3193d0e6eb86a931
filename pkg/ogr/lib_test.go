package ogr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/geobridge/ogr-go/pkg/ogr"
	"github.com/geobridge/ogr-go/pkg/ogr/logging"
)

func TestVersionFallback(t *testing.T) {
	assert.Equal(t, "v0.0.0-in-progress", ogr.WrapperVersion())
}

func TestOpenDefaultsToMemoryDriver(t *testing.T) {
	lib, err := ogr.Open(ogr.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })

	assert.Equal(t, "memory go-geom", lib.DriverVersion())
	assert.NotEmpty(t, lib.ID())
	assert.Nil(t, lib.Registry())
	require.NoError(t, lib.Check())

	_, ok := lib.HeapStats()
	assert.True(t, ok)
}

func TestOpenStableIdentityCreatesRegistry(t *testing.T) {
	lib, err := ogr.Open(ogr.Config{StableIdentity: true})
	require.NoError(t, err)
	defer lib.Close()
	assert.NotNil(t, lib.Registry())
}

func TestOpenUnknownDriver(t *testing.T) {
	lib, err := ogr.Open(ogr.Config{Driver: "postgis"})
	require.ErrorIs(t, err, ogr.ErrUnknownDriver)
	assert.Nil(t, lib)
}

func TestOpenOGRWithoutGDAL(t *testing.T) {
	lib, err := ogr.Open(ogr.Config{Driver: "ogr"})
	if err == nil {
		t.Skip("built with gdal")
		return
	}
	require.ErrorIs(t, err, ogr.ErrNotBuilt)
	assert.Nil(t, lib)
}

func TestCloseTwice(t *testing.T) {
	lib, err := ogr.Open(ogr.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, lib.Close())
	require.ErrorIs(t, lib.Close(), ogr.ErrLibraryClosed)
	require.ErrorIs(t, lib.Check(), ogr.ErrLibraryClosed)

	var nilLib *ogr.Library
	require.NoError(t, nilLib.Close())
}

func TestLoggerCarriesLibraryID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	lib, err := ogr.Open(ogr.Config{}, ogr.WithLogger(logging.New(zap.New(core))))
	require.NoError(t, err)
	require.NoError(t, lib.Close())

	entries := logs.FilterMessage("library opened").All()
	require.Len(t, entries, 1)
	assert.Equal(t, lib.ID(), entries[0].ContextMap()["library"])
	assert.Equal(t, 1, logs.FilterMessage("library closed").Len())
}
