package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryDir32(t *testing.T) {
	app32 := &Application{NativeLibraryDir: "/data/app/a-1/lib/arm", PrimaryCPUABI: "armeabi-v7a"}
	assert.Equal(t, "/data/app/a-1/lib/arm", app32.LibraryDir32())

	app64 := &Application{
		NativeLibraryDir:          "/data/app/a-1/lib/arm64",
		SecondaryNativeLibraryDir: "/data/app/a-1/lib/arm",
		PrimaryCPUABI:             "arm64-v8a",
	}
	assert.Equal(t, "/data/app/a-1/lib/arm", app64.LibraryDir32())

	app64.SecondaryNativeLibraryDir = ""
	assert.Empty(t, app64.LibraryDir32())
}

func TestStaticPackageManagerCopies(t *testing.T) {
	orig := &Application{PackageName: "com.host", SharedLibraryFiles: []string{"/system/framework/a.jar"}}
	pm := NewStaticPackageManager(orig)

	orig.SharedLibraryFiles[0] = "changed"
	got, ok := pm.Lookup("com.host")
	require.True(t, ok)
	assert.Equal(t, "/system/framework/a.jar", got.SharedLibraryFiles[0])

	got.DataDir = "mutated"
	again, _ := pm.Lookup("com.host")
	assert.Empty(t, again.DataDir)

	pm.Remove("com.host")
	_, ok = pm.Lookup("com.host")
	assert.False(t, ok)
}

func TestLoadStaticPackageManager(t *testing.T) {
	dir := t.TempDir()

	empty, err := LoadStaticPackageManager(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	_, ok := empty.Lookup("anything")
	assert.False(t, ok)

	path := filepath.Join(dir, "host.yaml")
	doc := "packages:\n  - packageName: com.host.app\n    dataDir: /data/data/com.host.app\n    primaryCpuAbi: arm64-v8a\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	pm, err := LoadStaticPackageManager(path)
	require.NoError(t, err)
	app, ok := pm.Lookup("com.host.app")
	require.True(t, ok)
	assert.Equal(t, "/data/data/com.host.app", app.DataDir)
	assert.Equal(t, "arm64-v8a", app.PrimaryCPUABI)

	require.NoError(t, os.WriteFile(path, []byte("packages:\n  - dataDir: /x\n"), 0o644))
	_, err = LoadStaticPackageManager(path)
	assert.Error(t, err)
}

func TestProcessTable(t *testing.T) {
	table := NewProcessTable()
	assert.False(t, table.IsAppPID(100))

	table.Register(100, "com.example.app")
	assert.True(t, table.IsAppPID(100))
	pkg, ok := table.PackageOf(100)
	assert.True(t, ok)
	assert.Equal(t, "com.example.app", pkg)

	table.Unregister(100)
	assert.False(t, table.IsAppPID(100))
}
