package paths

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

// Subtree roots
const (
	dataDir   = "data"
	data64Dir = "data64"
)

// File names inside a package's app directory
const (
	BaseAPK           = "base.apk"
	PackageCacheName  = "package.ini"
	SignatureFileName = "signature.ini"
	SettingsDBName    = "packages.db"
	ManifestName      = "manifest.yaml"
)

// Instruction sets used for odex placement
const (
	ISA32 = "arm"
	ISA64 = "arm64"
)

// packageNamePattern matches dotted Java-style package names
var packageNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)*$`)

// Layout resolves paths inside a virtual environment rooted at Root.
type Layout struct {
	Root string
}

// NewLayout creates a layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

func (l Layout) subtree(is64 bool) string {
	if is64 {
		return filepath.Join(l.Root, data64Dir)
	}
	return filepath.Join(l.Root, dataDir)
}

// AppDir returns the directory holding every installed package of one bitness.
func (l Layout) AppDir(is64 bool) string {
	return filepath.Join(l.subtree(is64), "app")
}

// AppPackageDir returns the install directory of a package.
func (l Layout) AppPackageDir(pkg string, is64 bool) string {
	return filepath.Join(l.AppDir(is64), pkg)
}

// PackageResourcePath returns the copied package archive.
func (l Layout) PackageResourcePath(pkg string, is64 bool) string {
	return filepath.Join(l.AppPackageDir(pkg, is64), BaseAPK)
}

// OdexFile returns the optimized dex location for a package.
func (l Layout) OdexFile(pkg string, is64 bool) string {
	isa := ISA32
	if is64 {
		isa = ISA64
	}
	return filepath.Join(l.AppPackageDir(pkg, is64), "oat", isa, "base.odex")
}

// AppLibDir returns the package's own native library directory.
func (l Layout) AppLibDir(pkg string, is64 bool) string {
	if is64 {
		return filepath.Join(l.AppPackageDir(pkg, true), "lib64")
	}
	return filepath.Join(l.AppPackageDir(pkg, false), "lib")
}

// DataUserDir returns the root of one user's virtual data.
func (l Layout) DataUserDir(userID int, is64 bool) string {
	return filepath.Join(l.subtree(is64), "user", strconv.Itoa(userID))
}

// DataUserPackageDir returns the virtual data directory of a package for a user.
func (l Layout) DataUserPackageDir(userID int, pkg string, is64 bool) string {
	return filepath.Join(l.DataUserDir(userID, is64), pkg)
}

// PackageCacheFile returns the descriptor cache file of a package.
// Descriptors always live in the default subtree.
func (l Layout) PackageCacheFile(pkg string) string {
	return filepath.Join(l.AppPackageDir(pkg, false), PackageCacheName)
}

// SignatureFile returns the signer certificate file of a package.
func (l Layout) SignatureFile(pkg string) string {
	return filepath.Join(l.AppPackageDir(pkg, false), SignatureFileName)
}

// ManifestFile returns the stored raw manifest a snapshot can be rebuilt from.
func (l Layout) ManifestFile(pkg string) string {
	return filepath.Join(l.AppPackageDir(pkg, false), ManifestName)
}

// SystemDir returns the directory for registry-wide state.
func (l Layout) SystemDir() string {
	return filepath.Join(l.subtree(false), "system")
}

// SettingsDB returns the install record database path.
func (l Layout) SettingsDB() string {
	return filepath.Join(l.SystemDir(), SettingsDBName)
}

// StandardDirectories returns the directories that must exist before use.
func (l Layout) StandardDirectories() []string {
	return []string{
		l.AppDir(false),
		l.AppDir(true),
		filepath.Join(l.subtree(false), "user"),
		filepath.Join(l.subtree(true), "user"),
		l.SystemDir(),
	}
}

// ValidatePackageName checks that a package name is safe for path construction.
func ValidatePackageName(pkg string) error {
	if pkg == "" {
		return fmt.Errorf("package name cannot be empty")
	}
	if len(pkg) > 255 {
		return fmt.Errorf("package name too long: %d characters", len(pkg))
	}
	if !packageNamePattern.MatchString(pkg) {
		return fmt.Errorf("invalid package name %q", pkg)
	}
	return nil
}
