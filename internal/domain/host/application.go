package host

import (
	"strings"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
)

// Application is the host package manager's record of an installed package.
type Application struct {
	PackageName               string   `json:"packageName"`
	SourceDir                 string   `json:"sourceDir,omitempty"`
	PublicSourceDir           string   `json:"publicSourceDir,omitempty"`
	DataDir                   string   `json:"dataDir,omitempty"`
	NativeLibraryDir          string   `json:"nativeLibraryDir,omitempty"`
	SecondaryNativeLibraryDir string   `json:"secondaryNativeLibraryDir,omitempty"`
	PrimaryCPUABI             string   `json:"primaryCpuAbi,omitempty"`
	SharedLibraryFiles        []string `json:"sharedLibraryFiles,omitempty"`
}

// Clone returns a deep copy.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	out := *a
	out.SharedLibraryFiles = pm.CloneStrings(a.SharedLibraryFiles)
	return &out
}

// LibraryDir32 returns the directory holding the 32-bit native libraries of
// the host installation. A package whose primary ABI is 64-bit keeps them in
// the secondary directory, which may be empty.
func (a *Application) LibraryDir32() string {
	if Is64BitABI(a.PrimaryCPUABI) {
		return a.SecondaryNativeLibraryDir
	}
	return a.NativeLibraryDir
}

// Is64BitABI reports whether abi names a 64-bit instruction set.
func Is64BitABI(abi string) bool {
	switch abi {
	case "arm64-v8a", "x86_64":
		return true
	}
	return strings.HasSuffix(abi, "64")
}
