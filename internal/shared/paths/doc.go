// Package paths provides the on-disk layout of the virtual environment.
//
// Every file the registry reads or writes is located through a Layout so that
// tests and alternative deployments can relocate the whole tree by changing a
// single root directory.
//
// # Directory Structure
//
//	<root>/
//	  ├── data/                      (32-bit / default subtree)
//	  │   ├── app/<pkg>/
//	  │   │   ├── base.apk           (copied package)
//	  │   │   ├── lib/               (own native libraries)
//	  │   │   ├── oat/arm/base.odex
//	  │   │   ├── package.ini        (descriptor cache)
//	  │   │   └── signature.ini      (signer certificates)
//	  │   ├── user/<userId>/<pkg>/   (virtual data directory)
//	  │   └── system/packages.db     (install records)
//	  └── data64/                    (64-bit subtree)
//	      ├── app/<pkg>/{base.apk,lib64/,oat/arm64/base.odex}
//	      └── user/<userId>/<pkg>/
//
// # Usage
//
//	layout := paths.NewLayout("/data/data/io.va/virtual")
//	dir := layout.DataUserPackageDir(0, "com.example.app", false)
//	// /data/data/io.va/virtual/data/user/0/com.example.app
package paths
