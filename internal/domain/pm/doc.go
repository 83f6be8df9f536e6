// Package pm defines the package-manager value types shared by the raw
// parsed package tree, the persistent snapshot and the per-user views:
// application, component, permission and intent-filter descriptors, the
// metadata Bundle, signer certificates and the query flag bits callers pass
// when asking for a view.
package pm
