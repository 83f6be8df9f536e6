// Package host models the real device the virtual environment runs on: the
// host package manager's view of packages installed outside the sandbox and
// the table of processes that belong to virtual apps.
package host
