package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vpm.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Component("registry").Info("Package installed")
	logger.Debug("dropped")
	require.NoError(t, logger.Sync())

	data, err := readFile(path)
	require.NoError(t, err)
	assert.Contains(t, data, `"logger":"registry"`)
	assert.Contains(t, data, `"service":"vpm"`)
	assert.NotContains(t, data, "dropped")
}

func TestSetLevelAffectsChildren(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vpm.log")
	logger, err := New(Config{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)
	child := logger.Component("cache")

	child.Info("before")
	require.NoError(t, logger.SetLevel("debug"))
	assert.Equal(t, "debug", logger.Level())
	child.Debug("after")
	require.NoError(t, logger.Sync())

	data, err := readFile(path)
	require.NoError(t, err)
	assert.NotContains(t, data, "before")
	assert.Contains(t, data, "after")

	assert.Error(t, logger.SetLevel("loud"))
}

func TestFallbackLoggers(t *testing.T) {
	assert.NotNil(t, NewDefault())
	assert.NotNil(t, NewDevelopment())
	assert.NotPanics(t, func() { Nop().Component("x").Info("ignored") })
}

func TestIsProduction(t *testing.T) {
	t.Setenv("VPM_ENV", "prod")
	assert.True(t, IsProduction())
	t.Setenv("VPM_ENV", "dev")
	assert.False(t, IsProduction())
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}
