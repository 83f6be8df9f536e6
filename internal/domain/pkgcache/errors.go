package pkgcache

import (
	"errors"
	"fmt"
)

var (
	// ErrVersionMismatch is returned when the file's version tag is not Version.
	ErrVersionMismatch = errors.New("descriptor cache version mismatch")
	// ErrCorruptCache is returned when the file cannot be decoded.
	ErrCorruptCache = errors.New("descriptor cache corrupt")
)

// Error describes a failed cache operation on one package.
type Error struct {
	Op      string
	Package string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pkgcache %s %s: %v", e.Op, e.Package, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NeedsRebuild reports whether err means the snapshot must be rebuilt from
// its raw package.
func NeedsRebuild(err error) bool {
	return errors.Is(err, ErrVersionMismatch) || errors.Is(err, ErrCorruptCache)
}
