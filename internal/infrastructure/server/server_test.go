package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/manifest"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Root = filepath.Join(t.TempDir(), "vroot")
	cfg.Storage.BackupDir = filepath.Join(t.TempDir(), "backups")
	cfg.Logging.Level = "error"
	cfg.RateLimit.Enabled = false
	return cfg
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestServerSeedsAndRestores(t *testing.T) {
	cfg := testConfig(t)

	seedDir := t.TempDir()
	data, err := manifest.Encode(testutil.ExampleManifest(t), manifest.FormatYAML)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "example.yaml"), data, 0o644))
	cfg.Storage.SeedDir = seedDir

	s, err := NewServer(cfg)
	require.NoError(t, err)
	assert.True(t, s.Registry().Exists(testutil.ExamplePackage))

	w := get(s, "/packages/"+testutil.ExamplePackage)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = get(s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
	require.NoError(t, s.Close())

	cfg.Storage.SeedDir = ""
	restarted, err := NewServer(cfg)
	require.NoError(t, err)
	defer restarted.Close()
	assert.Equal(t, []string{testutil.ExamplePackage}, restarted.Registry().List())
}

func TestServerProcessTableDrivesVisibility(t *testing.T) {
	s, err := NewServer(testConfig(t))
	require.NoError(t, err)
	defer s.Close()

	body, err := manifest.Encode(testutil.ExampleManifest(t), manifest.FormatYAML)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/packages", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/yaml")
	s.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/processes/4242",
		strings.NewReader(`{"package":"`+testutil.ExamplePackage+`"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.True(t, s.Processes().IsAppPID(4242))
	assert.False(t, s.Processes().IsAppPID(1))
	pkg, ok := s.Processes().PackageOf(4242)
	require.True(t, ok)
	assert.Equal(t, testutil.ExamplePackage, pkg)
}

func TestServerRejectsBadPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.PolicyFile = filepath.Join(t.TempDir(), "missing.toml")

	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestShutdownWithoutRun(t *testing.T) {
	s, err := NewServer(testConfig(t))
	require.NoError(t, err)
	assert.NoError(t, s.Shutdown(context.Background()))
}
