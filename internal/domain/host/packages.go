package host

import (
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
)

// PackageManager answers queries about packages installed on the host.
// Absence of a package is a normal result.
type PackageManager interface {
	Lookup(packageName string) (*Application, bool)
}

// StaticPackageManager is an in-memory host package table.
type StaticPackageManager struct {
	mu   sync.RWMutex
	apps map[string]*Application
}

// NewStaticPackageManager creates a table holding apps.
func NewStaticPackageManager(apps ...*Application) *StaticPackageManager {
	pm := &StaticPackageManager{apps: make(map[string]*Application, len(apps))}
	for _, app := range apps {
		pm.Add(app)
	}
	return pm
}

// hostFile is the on-disk form of a host package table.
type hostFile struct {
	Packages []*Application `yaml:"packages"`
}

// LoadStaticPackageManager reads a YAML host package table. A missing file
// yields an empty table.
func LoadStaticPackageManager(path string) (*StaticPackageManager, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewStaticPackageManager(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read host packages: %w", err)
	}

	var file hostFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse host packages: %w", err)
	}
	for i, app := range file.Packages {
		if app == nil || app.PackageName == "" {
			return nil, fmt.Errorf("host package %d has no packageName", i)
		}
	}
	return NewStaticPackageManager(file.Packages...), nil
}

// Add registers or replaces a host package.
func (m *StaticPackageManager) Add(app *Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.PackageName] = app.Clone()
}

// Remove forgets a host package.
func (m *StaticPackageManager) Remove(packageName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.apps, packageName)
}

// Lookup returns a copy of the host record of packageName.
func (m *StaticPackageManager) Lookup(packageName string) (*Application, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	app, ok := m.apps[packageName]
	if !ok {
		return nil, false
	}
	return app.Clone(), true
}
