package view

import (
	"encoding/binary"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pkgcache"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/testutil"
)

// An installed package survives a restart and is projected for user 0.
func TestExampleScenario(t *testing.T) {
	f := newFixture(t, false)
	cache := pkgcache.New(f.layout, storage.NewKeyedMutex(), zap.NewNop())

	require.NoError(t, cache.Save(f.pkg))

	data, err := os.ReadFile(f.layout.PackageCacheFile(testutil.ExamplePackage))
	require.NoError(t, err)
	assert.Equal(t, uint32(4), binary.BigEndian.Uint32(data[:4]))

	reloaded, err := cache.Load(testutil.ExamplePackage)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Signatures)
	require.NoError(t, reloaded.VerifyOwnership())

	g := NewGenerator(recordMap{testutil.ExamplePackage: f.rec}, f.host, testutil.NewMockProcessFamily(t, false), ownPolicy)
	g.PrepareBase(reloaded, f.rec)

	main, ok := reloaded.FindActivity(".Main")
	require.True(t, ok)

	info, ok := g.Activity(reloaded, main, 0, installed, 0, 100)
	require.True(t, ok)
	assert.Equal(t, ".Main", info.Name)
	assert.Equal(t, testutil.ExamplePackage, info.PackageName)
	assert.True(t, strings.HasSuffix(info.Application.DataDir, "/0/com.example.app"), info.Application.DataDir)

	pi, ok := g.PackageInfo(reloaded, 0, installed, 0, 100)
	require.True(t, ok)
	assert.Equal(t, int32(3), pi.VersionCode)
}
