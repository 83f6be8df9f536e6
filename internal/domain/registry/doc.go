// Package registry keeps the installed packages of the virtual environment.
//
// The Manager publishes one immutable snapshot per package together with
// its install record and per-user states, and answers view queries through
// the view generator. Installing a package persists three things:
//
//   - the descriptor cache file the snapshot is reloaded from
//   - the signer list, kept apart from the descriptor
//   - the raw manifest, used to rebuild a descriptor the current format
//     can no longer read
//
// Restore republishes everything the settings store knows about on
// startup. Seeder installs prebuilt manifests from a directory.
//
// Example Usage:
//
//	manager := registry.NewManager(registry.Dependencies{...})
//	stats, err := manager.Restore(ctx)
//	ps, err := manager.Install(ctx, raw, registry.InstallOptions{Run64Bit: true})
//	info, ok := manager.Activity("com.example.app", ".Main", pm.GetMetaData, 0, pid)
package registry
