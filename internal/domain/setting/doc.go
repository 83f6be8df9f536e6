// Package setting keeps the install-time records of packages and their
// per-user state in SQLite.
//
// A PackageSetting carries the numeric app id, the 64-bit eligibility and
// "not copied" flags and the install times of a package. Bound to a
// paths.Layout it answers the path queries the view generator needs
// (resource, odex, library and data directories for a user and bitness).
//
// App ids are allocated from FirstApplicationID upward. Packages declaring
// the same shared user id share one app id.
//
// Example Usage:
//
//	store, err := setting.New(layout.SettingsDB(), layout)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	if err := store.CreateSchema(); err != nil {
//	    return err
//	}
//	ps, err := store.Get("com.example.app")
package setting
