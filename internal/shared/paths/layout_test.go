package paths

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutDataDirs(t *testing.T) {
	l := NewLayout("/va/")

	assert.Equal(t, "/va/data/user/0/com.example.app", l.DataUserPackageDir(0, "com.example.app", false))
	assert.Equal(t, "/va/data64/user/10/com.example.app", l.DataUserPackageDir(10, "com.example.app", true))
	assert.True(t, strings.HasSuffix(l.DataUserPackageDir(0, "com.example.app", true), "/0/com.example.app"))
}

func TestLayoutPackageFiles(t *testing.T) {
	l := NewLayout("/va")

	assert.Equal(t, "/va/data/app/com.a/base.apk", l.PackageResourcePath("com.a", false))
	assert.Equal(t, "/va/data64/app/com.a/base.apk", l.PackageResourcePath("com.a", true))
	assert.Equal(t, "/va/data/app/com.a/lib", l.AppLibDir("com.a", false))
	assert.Equal(t, "/va/data64/app/com.a/lib64", l.AppLibDir("com.a", true))
	assert.Equal(t, "/va/data/app/com.a/oat/arm/base.odex", l.OdexFile("com.a", false))
	assert.Equal(t, "/va/data64/app/com.a/oat/arm64/base.odex", l.OdexFile("com.a", true))

	// Descriptor and signature files are shared by both bitness variants.
	assert.Equal(t, filepath.Dir(l.PackageCacheFile("com.a")), filepath.Dir(l.SignatureFile("com.a")))
	assert.Equal(t, "/va/data/system/packages.db", l.SettingsDB())
	assert.Equal(t, "/va/data/app/com.a/manifest.yaml", l.ManifestFile("com.a"))
}

func TestStandardDirectories(t *testing.T) {
	dirs := NewLayout("/va").StandardDirectories()
	assert.Contains(t, dirs, "/va/data/app")
	assert.Contains(t, dirs, "/va/data64/app")
	assert.Contains(t, dirs, "/va/data/system")
}

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		wantErr bool
	}{
		{"dotted", "com.example.app", false},
		{"single segment", "launcher", false},
		{"underscore", "com.example.my_app", false},
		{"empty", "", true},
		{"path traversal", "../etc", true},
		{"slash", "com/example", true},
		{"leading digit segment", "com.1app", true},
		{"trailing dot", "com.example.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.pkg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
