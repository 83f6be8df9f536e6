package view

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/host"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
)

// ABI64 is reported for packages running 64-bit on their own libraries.
const ABI64 = "arm64-v8a"

// fakeLibToken is the random-looking suffix of fabricated host install
// directories.
const fakeLibToken = "-1aWFtbG9keQ=="

// FakeLibDir returns the fabricated host library path of a package.
func FakeLibDir(packageName string) string {
	return "/data/app/" + packageName + fakeLibToken + "/lib/arm"
}

// DecideLib returns the effective library policy. A real-library policy
// without a host installation and a fake-path policy on 64-bit both fall
// back to the package's own libraries.
func DecideLib(configured pm.LibPolicy, is64, hostPresent bool) pm.LibPolicy {
	switch configured {
	case pm.LibReal:
		if !hostPresent {
			return pm.LibOwn
		}
		return pm.LibReal
	case pm.LibFake:
		if is64 {
			return pm.LibOwn
		}
		return pm.LibFake
	default:
		return pm.LibOwn
	}
}

type libLocation struct {
	dir string
	abi string // empty keeps the base ABI
}

// locateLibs resolves the native library directory for an effective policy.
func locateLibs(effective pm.LibPolicy, pkg string, rec InstallRecord, outside *host.Application, userID int, is64 bool) libLocation {
	own := libLocation{dir: rec.LibDirectory(userID, is64)}
	if is64 {
		own.abi = ABI64
	}

	switch effective {
	case pm.LibReal:
		if is64 {
			return libLocation{dir: outside.NativeLibraryDir, abi: outside.PrimaryCPUABI}
		}
		if dir := outside.LibraryDir32(); dir != "" {
			return libLocation{dir: dir}
		}
		return own
	case pm.LibFake:
		return libLocation{dir: FakeLibDir(pkg)}
	default:
		return own
	}
}

// SharedLibCache memoizes the host shared library files of packages that
// run from the host archive. Entries are never invalidated: a host update
// of such a package is only picked up after a restart.
type SharedLibCache struct {
	m sync.Map
}

// NewSharedLibCache creates an empty cache.
func NewSharedLibCache() *SharedLibCache {
	return &SharedLibCache{}
}

// Get returns a copy of the cached files of a package.
func (c *SharedLibCache) Get(packageName string) ([]string, bool) {
	v, ok := c.m.Load(packageName)
	if !ok {
		return nil, false
	}
	return pm.CloneStrings(v.([]string)), true
}

// Store records the files of a package. A nil list is stored as empty so a
// package without shared libraries is not looked up again.
func (c *SharedLibCache) Store(packageName string, files []string) {
	if files == nil {
		files = []string{}
	}
	c.m.Store(packageName, pm.CloneStrings(files))
}
