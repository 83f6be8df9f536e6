// Package pkgcache persists package snapshots in the versioned binary
// descriptor format.
//
// File Format (version 4):
//   - 4-byte big-endian version tag
//   - identity fields, application descriptor, component lists in manifest
//     order, permission and library name lists, config preferences,
//     features and the metadata bag, all in parcel encoding
//
// Signatures and owner references are never written. Load rejects any other
// version tag with ErrVersionMismatch and undecodable bytes with
// ErrCorruptCache; callers rebuild the snapshot from the raw package in both
// cases. Owner references are rebuilt before Load returns.
//
// Example Usage:
//
//	cache := pkgcache.New(layout, locks, logger)
//	if err := cache.Save(pkg); err != nil {
//	    return err
//	}
//	pkg, err := cache.Load("com.example.app")
package pkgcache
