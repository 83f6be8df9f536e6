// Package view synthesizes per-user projections of package snapshots.
//
// A view is built fresh for every request and shares no memory with the
// snapshot it came from. Fields copied verbatim from the snapshot and fields
// computed from the install record, the caller and the virtualization
// policy are assembled by separate constructors so the two sources never
// mix.
//
// Computed fields:
//   - source and public source path (copied archive, or the host archive
//     for packages that were not copied)
//   - native library directory and primary ABI, see DecideLib
//   - data directory and its protected mirrors
//   - per-user uid
//   - metadata, only with pm.GetMetaData
//
// A package is 64-bit for a request only when its install record allows it
// and the caller pid belongs to the virtual app process family.
//
// Example Usage:
//
//	gen := view.NewGenerator(records, hostPM, processes, policy,
//		view.WithPlatformSDK(28))
//	info, ok := gen.Activity(pkg, act, pm.GetMetaData, state, 0, pid)
package view
