package snapshot

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
)

// ComponentKind identifies one of the component lists of a Package.
type ComponentKind uint8

const (
	KindActivity ComponentKind = iota + 1
	KindReceiver
	KindService
	KindProvider
	KindInstrumentation
	KindPermission
	KindPermissionGroup
)

var kindNames = map[ComponentKind]string{
	KindActivity:        "activity",
	KindReceiver:        "receiver",
	KindService:         "service",
	KindProvider:        "provider",
	KindInstrumentation: "instrumentation",
	KindPermission:      "permission",
	KindPermissionGroup: "permission-group",
}

func (k ComponentKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ComponentRef addresses a component inside its owning Package.
type ComponentRef struct {
	Package string
	Kind    ComponentKind
	Index   int
}

func (r ComponentRef) String() string {
	return fmt.Sprintf("%s/%s[%d]", r.Package, r.Kind, r.Index)
}

// Component holds what every descriptor shares. Owner and Ref are set by
// Wire and never persisted.
type Component struct {
	ClassName string
	MetaData  pm.Bundle

	Owner string
	Ref   ComponentRef
}

// IntentFilter is an intent filter owned by an activity, receiver, service
// or provider.
type IntentFilter struct {
	pm.IntentFilter

	Owner ComponentRef
}

type Activity struct {
	Component
	Info          pm.ActivityInfo
	IntentFilters []*IntentFilter
}

type Service struct {
	Component
	Info          pm.ServiceInfo
	IntentFilters []*IntentFilter
}

type Provider struct {
	Component
	Info          pm.ProviderInfo
	IntentFilters []*IntentFilter
}

type Instrumentation struct {
	Component
	Info pm.InstrumentationInfo
}

type Permission struct {
	Component
	Info pm.PermissionInfo
}

type PermissionGroup struct {
	Component
	Info pm.PermissionGroupInfo
}

// Package is the snapshot of one installed package. The install record of
// the package is found by PackageName; it is not part of the snapshot.
type Package struct {
	PackageName     string
	VersionCode     int32
	VersionName     string
	SharedUserID    string
	SharedUserLabel int32
	PreferredOrder  int32

	Application pm.ApplicationInfo

	Activities       []*Activity
	Services         []*Service
	Receivers        []*Activity
	Providers        []*Provider
	Instrumentation  []*Instrumentation
	Permissions      []*Permission
	PermissionGroups []*PermissionGroup

	RequestedPermissions []string
	ProtectedBroadcasts  []string
	UsesLibraries        []string
	ConfigPreferences    []pm.ConfigurationInfo
	ReqFeatures          []pm.FeatureInfo
	MetaData             pm.Bundle

	// Signatures is nil until collected or loaded from the signature store.
	Signatures []pm.Signature
}

// Resolve returns the component a reference points to.
func (p *Package) Resolve(ref ComponentRef) (*Component, bool) {
	if ref.Package != p.PackageName || ref.Index < 0 {
		return nil, false
	}
	i := ref.Index
	switch ref.Kind {
	case KindActivity:
		if i < len(p.Activities) {
			return &p.Activities[i].Component, true
		}
	case KindReceiver:
		if i < len(p.Receivers) {
			return &p.Receivers[i].Component, true
		}
	case KindService:
		if i < len(p.Services) {
			return &p.Services[i].Component, true
		}
	case KindProvider:
		if i < len(p.Providers) {
			return &p.Providers[i].Component, true
		}
	case KindInstrumentation:
		if i < len(p.Instrumentation) {
			return &p.Instrumentation[i].Component, true
		}
	case KindPermission:
		if i < len(p.Permissions) {
			return &p.Permissions[i].Component, true
		}
	case KindPermissionGroup:
		if i < len(p.PermissionGroups) {
			return &p.PermissionGroups[i].Component, true
		}
	}
	return nil, false
}

// FindActivity returns the activity with the given class name.
func (p *Package) FindActivity(className string) (*Activity, bool) {
	return findActivity(p.Activities, className)
}

// FindReceiver returns the receiver with the given class name.
func (p *Package) FindReceiver(className string) (*Activity, bool) {
	return findActivity(p.Receivers, className)
}

func findActivity(list []*Activity, className string) (*Activity, bool) {
	for _, a := range list {
		if a.ClassName == className {
			return a, true
		}
	}
	return nil, false
}

// FindService returns the service with the given class name.
func (p *Package) FindService(className string) (*Service, bool) {
	for _, s := range p.Services {
		if s.ClassName == className {
			return s, true
		}
	}
	return nil, false
}

// FindProvider returns the provider with the given class name.
func (p *Package) FindProvider(className string) (*Provider, bool) {
	for _, pr := range p.Providers {
		if pr.ClassName == className {
			return pr, true
		}
	}
	return nil, false
}

// FindInstrumentation returns the instrumentation with the given class name.
func (p *Package) FindInstrumentation(className string) (*Instrumentation, bool) {
	for _, in := range p.Instrumentation {
		if in.ClassName == className {
			return in, true
		}
	}
	return nil, false
}
