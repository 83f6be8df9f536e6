// Package signature persists the signer certificates of a package apart from
// its descriptor, as a single parcel-encoded list of blobs without a
// version tag.
package signature

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/parcel"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
)

// ErrDecode is returned when a signature file exists but cannot be parsed.
var ErrDecode = errors.New("signature file undecodable")

// Store reads and writes signature files.
type Store struct {
	layout paths.Layout
	locks  *storage.KeyedMutex
	logger *zap.Logger
}

// NewStore creates a store. locks may be shared with the descriptor cache.
func NewStore(layout paths.Layout, locks *storage.KeyedMutex, logger *zap.Logger) *Store {
	if locks == nil {
		locks = storage.NewKeyedMutex()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		layout: layout,
		locks:  locks,
		logger: logger.Named("signature"),
	}
}

// Encode serializes a signer list.
func Encode(sigs []pm.Signature) []byte {
	w := parcel.NewWriter()
	w.WriteListHeader(sigs == nil, len(sigs))
	for _, s := range sigs {
		w.WriteBlob(s)
	}
	return w.Bytes()
}

// Decode parses data produced by Encode.
func Decode(data []byte) ([]pm.Signature, error) {
	r := parcel.NewReader(data)
	n, isNil := r.ReadListHeader()
	var sigs []pm.Signature
	if !isNil && r.Err() == nil {
		sigs = make([]pm.Signature, 0, n)
		for i := 0; i < n && r.Err() == nil; i++ {
			sigs = append(sigs, pm.Signature(r.ReadBlob()))
		}
	}
	if err := r.Finish(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return sigs, nil
}

// Save replaces the signature file of name. An existing file is deleted
// first; a failed delete is logged and the write proceeds.
func (s *Store) Save(name string, sigs []pm.Signature) error {
	if err := paths.ValidatePackageName(name); err != nil {
		return fmt.Errorf("failed to save signatures: %w", err)
	}
	path := s.layout.SignatureFile(name)

	unlock := s.locks.Lock(name)
	defer unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Unable to delete existing signatures",
			zap.String("package", name),
			zap.Error(err))
	}
	if err := storage.AtomicWriteFile(path, Encode(sigs), 0o644); err != nil {
		return fmt.Errorf("failed to save signatures of %s: %w", name, err)
	}
	return nil
}

// Load reads the signature file of name. ok is false when no file exists.
func (s *Store) Load(name string) (sigs []pm.Signature, ok bool, err error) {
	if err := paths.ValidatePackageName(name); err != nil {
		return nil, false, fmt.Errorf("failed to load signatures: %w", err)
	}
	data, err := os.ReadFile(s.layout.SignatureFile(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read signatures of %s: %w", name, err)
	}
	sigs, err = Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", name, err)
	}
	return sigs, true, nil
}

// Delete removes the signature file of name. A missing file is not an error.
func (s *Store) Delete(name string) error {
	if err := paths.ValidatePackageName(name); err != nil {
		return fmt.Errorf("failed to delete signatures: %w", err)
	}
	unlock := s.locks.Lock(name)
	defer unlock()

	err := os.Remove(s.layout.SignatureFile(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete signatures of %s: %w", name, err)
	}
	return nil
}
