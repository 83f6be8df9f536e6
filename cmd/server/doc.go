// Package main is the entry point of the virtual package registry daemon.
//
// The daemon keeps the package descriptors of a virtual app environment:
// it restores installed packages from their binary descriptor cache on
// startup, rebuilds stale descriptors from the stored manifests, and serves
// per-user package views over HTTP.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -root /data/vpm
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
//	# Replace the root with a backup, then start
//	./server -restore bak_01J9Z3K6Q2ZP5C1V8X4N7M0A2B
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
