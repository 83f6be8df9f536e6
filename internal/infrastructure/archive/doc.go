// Package archive snapshots the virtual environment root into compressed
// tar backups and restores them.
//
// Backups are written as <dir>/<backup id>.tar.zst. The backup id is a
// prefixed ULID, so the archive list sorts by creation time.
package archive
