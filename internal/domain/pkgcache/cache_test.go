package pkgcache

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/testutil"
)

func buildExample(t *testing.T) *snapshot.Package {
	t.Helper()
	raw := testutil.ExampleManifest(t)
	raw.Application.SharedLibraryFiles = []string{}
	raw.Providers[0].PathPermissions = []pm.PathPermission{{
		PatternMatcher: pm.PatternMatcher{Path: "/secret", Type: pm.PatternLiteral},
		ReadPermission: "com.example.READ",
	}}
	raw.Services[0].IntentFilters[1].DataAuthorities = []pm.AuthorityEntry{{Host: "example.com", Port: 443}}
	raw.Services[0].IntentFilters[1].DataPaths = []pm.PatternMatcher{{Path: "/push/*", Type: pm.PatternSimpleGlob}}
	raw.MetaData["ratio"] = 0.25
	raw.MetaData["debug"] = false

	p, err := snapshot.NewBuilder(nil).Build(raw)
	require.NoError(t, err)
	return p
}

func withoutSignatures(p *snapshot.Package) *snapshot.Package {
	cp := *p
	cp.Signatures = nil
	return &cp
}

func TestRoundTrip(t *testing.T) {
	p := buildExample(t)
	require.NotNil(t, p.Signatures)

	data, err := Encode(p)
	require.NoError(t, err)
	assert.Equal(t, uint32(Version), binary.BigEndian.Uint32(data[:4]))

	got, err := Decode(data, p.PackageName)
	require.NoError(t, err)
	assert.Equal(t, withoutSignatures(p), got)
	assert.Nil(t, got.Signatures)
	require.NoError(t, got.VerifyOwnership())

	// nil and empty lists survive distinctly
	assert.NotNil(t, got.Application.SharedLibraryFiles)
	assert.Empty(t, got.Application.SharedLibraryFiles)
	assert.Nil(t, got.Receivers[0].MetaData)
}

func TestEncodingIsDeterministic(t *testing.T) {
	p := buildExample(t)
	a, err := Encode(p)
	require.NoError(t, err)
	b, err := Encode(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeRejectsUnsupportedMetadata(t *testing.T) {
	p := buildExample(t)
	p.MetaData["bad"] = []int{1}
	_, err := Encode(p)
	assert.Error(t, err)
}

func TestVersionGuard(t *testing.T) {
	p := buildExample(t)
	data, err := Encode(p)
	require.NoError(t, err)

	for _, v := range []uint32{3, 5, 0} {
		binary.BigEndian.PutUint32(data[:4], v)
		got, err := Decode(data, p.PackageName)
		assert.ErrorIs(t, err, ErrVersionMismatch)
		assert.Nil(t, got)
	}
}

func TestTruncatedDataIsCorrupt(t *testing.T) {
	p := buildExample(t)
	data, err := Encode(p)
	require.NoError(t, err)

	for i := 0; i < len(data); i++ {
		got, err := Decode(data[:i], p.PackageName)
		require.Error(t, err, "prefix %d", i)
		assert.ErrorIs(t, err, ErrCorruptCache, "prefix %d", i)
		assert.Nil(t, got)
	}
}

func TestGarbledDataNeverPanics(t *testing.T) {
	p := buildExample(t)
	data, err := Encode(p)
	require.NoError(t, err)

	for i := 4; i < len(data); i++ {
		garbled := append([]byte(nil), data...)
		garbled[i] ^= 0xff
		assert.NotPanics(t, func() {
			_, _ = Decode(garbled, "")
		})
	}
}

func TestTrailingBytesAreCorrupt(t *testing.T) {
	p := buildExample(t)
	data, err := Encode(p)
	require.NoError(t, err)

	_, err = Decode(append(data, 0), p.PackageName)
	assert.ErrorIs(t, err, ErrCorruptCache)
}

func TestDecodeChecksPackageName(t *testing.T) {
	p := buildExample(t)
	data, err := Encode(p)
	require.NoError(t, err)

	_, err = Decode(data, "com.other")
	assert.ErrorIs(t, err, ErrCorruptCache)
}

func TestCacheSaveLoad(t *testing.T) {
	layout := paths.NewLayout(t.TempDir())
	cache := New(layout, nil, nil)
	p := buildExample(t)

	require.NoError(t, cache.Save(p))
	assert.True(t, cache.Exists(p.PackageName))

	got, err := cache.Load(p.PackageName)
	require.NoError(t, err)
	assert.Equal(t, withoutSignatures(p), got)

	names, err := cache.List()
	require.NoError(t, err)
	assert.Equal(t, []string{p.PackageName}, names)

	require.NoError(t, cache.Delete(p.PackageName))
	require.NoError(t, cache.Delete(p.PackageName))
	assert.False(t, cache.Exists(p.PackageName))
}

func TestCacheLoadErrors(t *testing.T) {
	layout := paths.NewLayout(t.TempDir())
	cache := New(layout, nil, nil)

	_, err := cache.Load("com.missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, NeedsRebuild(err))

	var cacheErr *Error
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, "load", cacheErr.Op)
	assert.Equal(t, "com.missing", cacheErr.Package)

	_, err = cache.Load("../escape")
	assert.Error(t, err)

	p := buildExample(t)
	require.NoError(t, cache.Save(p))
	data, err := Encode(p)
	require.NoError(t, err)
	binary.BigEndian.PutUint32(data[:4], 3)
	require.NoError(t, writeRaw(layout.PackageCacheFile(p.PackageName), data))

	_, err = cache.Load(p.PackageName)
	assert.ErrorIs(t, err, ErrVersionMismatch)
	assert.True(t, NeedsRebuild(err))
}

func TestListWithoutAppDir(t *testing.T) {
	cache := New(paths.NewLayout(t.TempDir()), nil, nil)
	names, err := cache.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestConcurrentSavesSamePackage(t *testing.T) {
	cache := New(paths.NewLayout(t.TempDir()), nil, nil)
	base := buildExample(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(version int32) {
			defer wg.Done()
			cp := *base
			cp.VersionCode = version
			assert.NoError(t, cache.Save(&cp))
		}(int32(i))
	}
	wg.Wait()

	got, err := cache.Load(base.PackageName)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.VersionCode, int32(0))
	assert.Less(t, got.VersionCode, int32(8))
}
