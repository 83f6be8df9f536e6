package manifest

import "github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"

// Package is the root of a parsed package tree.
type Package struct {
	PackageName          string                 `json:"packageName"`
	VersionCode          int32                  `json:"versionCode"`
	VersionName          string                 `json:"versionName,omitempty"`
	SharedUserID         string                 `json:"sharedUserId,omitempty"`
	SharedUserLabel      int32                  `json:"sharedUserLabel,omitempty"`
	PreferredOrder       int32                  `json:"preferredOrder,omitempty"`
	Application          pm.ApplicationInfo     `json:"application"`
	Activities           []Activity             `json:"activities,omitempty"`
	Receivers            []Activity             `json:"receivers,omitempty"`
	Services             []Service              `json:"services,omitempty"`
	Providers            []Provider             `json:"providers,omitempty"`
	Instrumentation      []Instrumentation      `json:"instrumentation,omitempty"`
	Permissions          []Permission           `json:"permissions,omitempty"`
	PermissionGroups     []PermissionGroup      `json:"permissionGroups,omitempty"`
	RequestedPermissions []string               `json:"requestedPermissions,omitempty"`
	ProtectedBroadcasts  []string               `json:"protectedBroadcasts,omitempty"`
	UsesLibraries        []string               `json:"usesLibraries,omitempty"`
	ConfigPreferences    []pm.ConfigurationInfo `json:"configPreferences,omitempty"`
	ReqFeatures          []pm.FeatureInfo       `json:"reqFeatures,omitempty"`
	MetaData             pm.Bundle              `json:"metaData,omitempty"`
	// Certificates are hex-encoded signer certificates extracted by the parser.
	Certificates []string `json:"certificates,omitempty"`
}

// Activity is a parsed <activity> or <receiver>.
type Activity struct {
	pm.ActivityInfo `json:",inline"`
	MetaData        pm.Bundle         `json:"metaData,omitempty"`
	IntentFilters   []pm.IntentFilter `json:"intentFilters,omitempty"`
}

// Service is a parsed <service>.
type Service struct {
	pm.ServiceInfo `json:",inline"`
	MetaData       pm.Bundle         `json:"metaData,omitempty"`
	IntentFilters  []pm.IntentFilter `json:"intentFilters,omitempty"`
}

// Provider is a parsed <provider>.
type Provider struct {
	pm.ProviderInfo `json:",inline"`
	MetaData        pm.Bundle         `json:"metaData,omitempty"`
	IntentFilters   []pm.IntentFilter `json:"intentFilters,omitempty"`
}

// Instrumentation is a parsed <instrumentation>.
type Instrumentation struct {
	pm.InstrumentationInfo `json:",inline"`
	MetaData               pm.Bundle `json:"metaData,omitempty"`
}

// Permission is a parsed <permission>.
type Permission struct {
	pm.PermissionInfo `json:",inline"`
	MetaData          pm.Bundle `json:"metaData,omitempty"`
}

// PermissionGroup is a parsed <permission-group>.
type PermissionGroup struct {
	pm.PermissionGroupInfo `json:",inline"`
	MetaData               pm.Bundle `json:"metaData,omitempty"`
}

// RequestsPermission reports whether name is among the requested permissions.
func (p *Package) RequestsPermission(name string) bool {
	for _, perm := range p.RequestedPermissions {
		if perm == name {
			return true
		}
	}
	return false
}
