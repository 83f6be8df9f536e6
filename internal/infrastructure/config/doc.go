// Package config provides 12-factor configuration management for the
// package descriptor daemon.
//
// Configuration is loaded from environment variables with sensible defaults.
// The virtualization policy lives in a separate TOML file because it is
// structured per package.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Storage: virtual root, policy file, host package table, backups
//   - Engine: platform SDK level and host ABI used by the view generator
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	policy, err := config.LoadPolicy(cfg.Storage.PolicyFile)
//
// Environment Variables:
//   - PORT, HOST
//   - VPM_ROOT, VPM_POLICY, VPM_HOST_PACKAGES, VPM_BACKUP_DIR
//   - VPM_PLATFORM_SDK, VPM_HOST_ABI, VPM_DEFAULT_USER
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//
// Policy file:
//
//	io_redirect = true
//	default_lib = "own"
//
//	[[rule]]
//	pattern = "com.google.**"
//	lib = "real"
//	use_real_data_dir = true
package config
