// Package logging provides structured logging using uber/zap.
//
// Two output modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Subsystems receive a named child logger through Component so that
// entries carry "registry", "cache", "signature" and so on. The level can
// be changed at runtime; children follow.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	reg := registry.New(deps, logger.Component("registry"))
//	logger.Info("Server starting", zap.String("port", "8000"))
package logging
