// Package snapshot holds the normalized, persistent descriptor of an
// installed package and the builder that derives it from a raw parse.
//
// A Package owns its component lists in manifest order. Components refer
// back to their package by name and intent filters refer back to their
// component by ComponentRef, so the graph has no pointer cycles and can be
// encoded field by field. Wire rebuilds those references; it runs once at
// the end of Build and again after every cache load.
//
// Example Usage:
//
//	b := snapshot.NewBuilder(logger, snapshot.WithTrustPolicy(policy))
//	pkg, err := b.Build(raw)
//	if errors.Is(err, snapshot.ErrParseRejected) {
//	    // abort the install
//	}
package snapshot
