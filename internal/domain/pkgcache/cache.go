package pkgcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/parcel"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
)

// Version is the current descriptor format version.
const Version int32 = 4

// Encode serializes p with the version tag.
func Encode(p *snapshot.Package) ([]byte, error) {
	w := parcel.NewWriter()
	w.WriteInt32(Version)
	if err := encodePackage(w, p); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Decode parses data produced by Encode and wires the result. When name is
// not empty the decoded package must carry that name.
func Decode(data []byte, name string) (*snapshot.Package, error) {
	r := parcel.NewReader(data)
	version := r.ReadInt32()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCache, err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: found %d, want %d", ErrVersionMismatch, version, Version)
	}

	p := decodePackage(r)
	if err := r.Finish(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCache, err)
	}
	if name != "" && p.PackageName != name {
		return nil, fmt.Errorf("%w: file holds %q", ErrCorruptCache, p.PackageName)
	}

	p.Wire()
	return p, nil
}

// Cache reads and writes descriptor files laid out by a paths.Layout.
type Cache struct {
	layout paths.Layout
	locks  *storage.KeyedMutex
	logger *zap.Logger
}

// New creates a cache. Saves of the same package are serialized through
// locks, which may be shared with other per-package writers.
func New(layout paths.Layout, locks *storage.KeyedMutex, logger *zap.Logger) *Cache {
	if locks == nil {
		locks = storage.NewKeyedMutex()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		layout: layout,
		locks:  locks,
		logger: logger.Named("pkgcache"),
	}
}

// Save writes the descriptor of p atomically.
func (c *Cache) Save(p *snapshot.Package) error {
	if err := paths.ValidatePackageName(p.PackageName); err != nil {
		return &Error{Op: "save", Package: p.PackageName, Err: err}
	}
	data, err := Encode(p)
	if err != nil {
		return &Error{Op: "save", Package: p.PackageName, Err: err}
	}

	unlock := c.locks.Lock(p.PackageName)
	defer unlock()

	if err := storage.AtomicWriteFile(c.layout.PackageCacheFile(p.PackageName), data, 0o644); err != nil {
		return &Error{Op: "save", Package: p.PackageName, Err: err}
	}
	c.logger.Debug("Saved descriptor",
		zap.String("package", p.PackageName),
		zap.Int("bytes", len(data)))
	return nil
}

// Load reads and decodes the descriptor of name.
func (c *Cache) Load(name string) (*snapshot.Package, error) {
	if err := paths.ValidatePackageName(name); err != nil {
		return nil, &Error{Op: "load", Package: name, Err: err}
	}
	data, err := os.ReadFile(c.layout.PackageCacheFile(name))
	if err != nil {
		return nil, &Error{Op: "load", Package: name, Err: err}
	}
	p, err := Decode(data, name)
	if err != nil {
		return nil, &Error{Op: "load", Package: name, Err: err}
	}
	return p, nil
}

// Delete removes the descriptor of name. A missing file is not an error.
func (c *Cache) Delete(name string) error {
	if err := paths.ValidatePackageName(name); err != nil {
		return &Error{Op: "delete", Package: name, Err: err}
	}
	unlock := c.locks.Lock(name)
	defer unlock()

	err := os.Remove(c.layout.PackageCacheFile(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &Error{Op: "delete", Package: name, Err: err}
	}
	return nil
}

// Exists reports whether a descriptor file is present for name.
func (c *Cache) Exists(name string) bool {
	_, err := os.Stat(c.layout.PackageCacheFile(name))
	return err == nil
}

// List returns the sorted names of packages that have a descriptor file.
func (c *Cache) List() ([]string, error) {
	entries, err := os.ReadDir(c.layout.AppDir(false))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptors: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || paths.ValidatePackageName(e.Name()) != nil {
			continue
		}
		if c.Exists(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
