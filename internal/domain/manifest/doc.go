// Package manifest defines the raw parsed-package tree handed to the
// snapshot builder and reads it from YAML or JSON documents.
//
// The tree mirrors what an external manifest parser yields: identity fields,
// the application element, component lists in manifest order, requested
// permissions, metadata bags and, when the parser could extract them, the
// signer certificates as hex strings.
//
// Supported Formats:
//   - YAML (.yaml, .yml) via goccy/go-yaml
//   - JSON (.json) via bytedance/sonic
//
// Example Usage:
//
//	raw, err := manifest.Load("testdata/example.yaml")
//	if err != nil {
//	    return err
//	}
//	pkg, err := builder.Build(raw)
package manifest
