package registry

import (
	"sort"
	"strings"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/view"
)

// classNames returns the spellings a component may be declared under:
// as given, and relative to its package.
func classNames(pkg, className string) []string {
	names := []string{className}
	if rel, ok := strings.CutPrefix(className, pkg+"."); ok {
		names = append(names, "."+rel)
	} else if strings.HasPrefix(className, ".") {
		names = append(names, pkg+className)
	}
	return names
}

func find[T any](pkg, className string, lookup func(string) (T, bool)) (T, bool) {
	for _, name := range classNames(pkg, className) {
		if c, ok := lookup(name); ok {
			return c, true
		}
	}
	var zero T
	return zero, false
}

// sortedEntries returns a stable copy of the published entries.
func (m *Manager) sortedEntries() []*entry {
	m.mu.RLock()
	out := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].pkg.PackageName < out[j].pkg.PackageName })
	return out
}

// Application returns the application view of a package for a user.
func (m *Manager) Application(name string, flags pm.QueryFlags, userID, callerPID int) (*view.ApplicationInfo, bool) {
	e, ok := m.entry(name)
	if !ok {
		return nil, false
	}
	return m.gen.Application(e.pkg, flags, e.state(userID), userID, callerPID)
}

// ApplicationOut returns the application view handed to callers outside
// the package.
func (m *Manager) ApplicationOut(name string, flags pm.QueryFlags, userID, callerPID int) (*view.ApplicationInfo, bool) {
	e, ok := m.entry(name)
	if !ok {
		return nil, false
	}
	return m.gen.ApplicationOut(e.pkg, flags, e.state(userID), userID, callerPID)
}

// PackageInfo returns the package view of a package for a user.
func (m *Manager) PackageInfo(name string, flags pm.QueryFlags, userID, callerPID int) (*view.PackageInfo, bool) {
	e, ok := m.entry(name)
	if !ok {
		return nil, false
	}
	return m.gen.PackageInfo(e.pkg, flags, e.state(userID), userID, callerPID)
}

// InstalledPackages returns the package views visible to a user.
func (m *Manager) InstalledPackages(flags pm.QueryFlags, userID, callerPID int) []*view.PackageInfo {
	var out []*view.PackageInfo
	for _, e := range m.sortedEntries() {
		if pi, ok := m.gen.PackageInfo(e.pkg, flags, e.state(userID), userID, callerPID); ok {
			out = append(out, pi)
		}
	}
	return out
}

// Activity returns the view of an activity by class name.
func (m *Manager) Activity(pkg, className string, flags pm.QueryFlags, userID, callerPID int) (*view.ActivityInfo, bool) {
	e, ok := m.entry(pkg)
	if !ok {
		return nil, false
	}
	a, ok := find(pkg, className, e.pkg.FindActivity)
	if !ok {
		return nil, false
	}
	return m.gen.Activity(e.pkg, a, flags, e.state(userID), userID, callerPID)
}

// Receiver returns the view of a receiver by class name.
func (m *Manager) Receiver(pkg, className string, flags pm.QueryFlags, userID, callerPID int) (*view.ActivityInfo, bool) {
	e, ok := m.entry(pkg)
	if !ok {
		return nil, false
	}
	r, ok := find(pkg, className, e.pkg.FindReceiver)
	if !ok {
		return nil, false
	}
	return m.gen.Receiver(e.pkg, r, flags, e.state(userID), userID, callerPID)
}

// Service returns the view of a service by class name.
func (m *Manager) Service(pkg, className string, flags pm.QueryFlags, userID, callerPID int) (*view.ServiceInfo, bool) {
	e, ok := m.entry(pkg)
	if !ok {
		return nil, false
	}
	s, ok := find(pkg, className, e.pkg.FindService)
	if !ok {
		return nil, false
	}
	return m.gen.Service(e.pkg, s, flags, e.state(userID), userID, callerPID)
}

// Provider returns the view of a content provider by class name.
func (m *Manager) Provider(pkg, className string, flags pm.QueryFlags, userID, callerPID int) (*view.ProviderInfo, bool) {
	e, ok := m.entry(pkg)
	if !ok {
		return nil, false
	}
	pr, ok := find(pkg, className, e.pkg.FindProvider)
	if !ok {
		return nil, false
	}
	return m.gen.Provider(e.pkg, pr, flags, e.state(userID), userID, callerPID)
}

// Instrumentation returns the view of an instrumentation by class name.
func (m *Manager) Instrumentation(pkg, className string, flags pm.QueryFlags, userID, callerPID int) (*view.InstrumentationInfo, bool) {
	e, ok := m.entry(pkg)
	if !ok {
		return nil, false
	}
	in, ok := find(pkg, className, e.pkg.FindInstrumentation)
	if !ok {
		return nil, false
	}
	return m.gen.Instrumentation(e.pkg, in, flags, e.state(userID), userID, callerPID)
}

// ProviderByAuthority resolves a content URI authority to the provider
// serving it for a user, with its application view attached. Packages are
// searched in name order; the first visible match wins.
func (m *Manager) ProviderByAuthority(authority string, flags pm.QueryFlags, userID, callerPID int) (*view.ProviderInfo, bool) {
	if authority == "" {
		return nil, false
	}
	for _, e := range m.sortedEntries() {
		for _, pr := range e.pkg.Providers {
			if !hasAuthority(pr, authority) {
				continue
			}
			if info, ok := m.gen.Provider(e.pkg, pr, flags, e.state(userID), userID, callerPID); ok {
				return info, true
			}
		}
	}
	return nil, false
}

func hasAuthority(pr *snapshot.Provider, authority string) bool {
	for _, a := range authorities(pr.Info.Authority) {
		if a == authority {
			return true
		}
	}
	return false
}

// Permission returns the view of a declared permission by name.
func (m *Manager) Permission(name string, flags pm.QueryFlags, userID int) (*view.PermissionInfo, bool) {
	for _, e := range m.sortedEntries() {
		for _, perm := range e.pkg.Permissions {
			if perm.Info.Name != name {
				continue
			}
			if info, ok := m.gen.Permission(e.pkg, perm, flags, e.state(userID)); ok {
				return info, true
			}
		}
	}
	return nil, false
}

// PermissionGroup returns the view of a declared permission group by name.
func (m *Manager) PermissionGroup(name string, flags pm.QueryFlags, userID int) (*view.PermissionGroupInfo, bool) {
	for _, e := range m.sortedEntries() {
		for _, g := range e.pkg.PermissionGroups {
			if g.Info.Name != name {
				continue
			}
			if info, ok := m.gen.PermissionGroup(e.pkg, g, flags, e.state(userID)); ok {
				return info, true
			}
		}
	}
	return nil, false
}
