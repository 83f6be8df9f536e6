package view

import "github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"

// ApplicationInfo is the per-user projection of a package's application.
type ApplicationInfo struct {
	pm.ApplicationInfo

	MetaData pm.Bundle `json:"metaData,omitempty"`

	ScanSourceDir         string   `json:"scanSourceDir,omitempty"`
	ScanPublicSourceDir   string   `json:"scanPublicSourceDir,omitempty"`
	SplitSourceDirs       []string `json:"splitSourceDirs,omitempty"`
	SplitPublicSourceDirs []string `json:"splitPublicSourceDirs,omitempty"`

	DeviceProtectedDataDir     string `json:"deviceProtectedDataDir,omitempty"`
	CredentialProtectedDataDir string `json:"credentialProtectedDataDir,omitempty"`
	DeviceEncryptedDataDir     string `json:"deviceEncryptedDataDir,omitempty"`
	CredentialEncryptedDataDir string `json:"credentialEncryptedDataDir,omitempty"`
}

// ActivityInfo is the projection of an activity or receiver.
type ActivityInfo struct {
	pm.ActivityInfo

	MetaData    pm.Bundle        `json:"metaData,omitempty"`
	Application *ApplicationInfo `json:"applicationInfo"`
}

// ServiceInfo is the projection of a service.
type ServiceInfo struct {
	pm.ServiceInfo

	MetaData    pm.Bundle        `json:"metaData,omitempty"`
	Application *ApplicationInfo `json:"applicationInfo"`
}

// ProviderInfo is the projection of a content provider.
type ProviderInfo struct {
	pm.ProviderInfo

	MetaData    pm.Bundle        `json:"metaData,omitempty"`
	Application *ApplicationInfo `json:"applicationInfo"`
}

// InstrumentationInfo is the projection of an instrumentation. The paths
// mirror the target application.
type InstrumentationInfo struct {
	pm.InstrumentationInfo

	MetaData         pm.Bundle        `json:"metaData,omitempty"`
	SourceDir        string           `json:"sourceDir,omitempty"`
	PublicSourceDir  string           `json:"publicSourceDir,omitempty"`
	DataDir          string           `json:"dataDir,omitempty"`
	NativeLibraryDir string           `json:"nativeLibraryDir,omitempty"`
	Application      *ApplicationInfo `json:"applicationInfo"`
}

type PermissionInfo struct {
	pm.PermissionInfo

	MetaData pm.Bundle `json:"metaData,omitempty"`
}

type PermissionGroupInfo struct {
	pm.PermissionGroupInfo

	MetaData pm.Bundle `json:"metaData,omitempty"`
}

// PackageInfo is the full projection of a package.
type PackageInfo struct {
	PackageName      string           `json:"packageName"`
	VersionCode      int32            `json:"versionCode"`
	VersionName      string           `json:"versionName,omitempty"`
	SharedUserID     string           `json:"sharedUserId,omitempty"`
	SharedUserLabel  int32            `json:"sharedUserLabel,omitempty"`
	Application      *ApplicationInfo `json:"applicationInfo"`
	FirstInstallTime int64            `json:"firstInstallTime"`
	LastUpdateTime   int64            `json:"lastUpdateTime"`
	GIDs             []int32          `json:"gids,omitempty"`

	RequestedPermissions []string               `json:"requestedPermissions,omitempty"`
	ConfigPreferences    []pm.ConfigurationInfo `json:"configPreferences,omitempty"`
	ReqFeatures          []pm.FeatureInfo       `json:"reqFeatures,omitempty"`

	Activities      []*ActivityInfo        `json:"activities,omitempty"`
	Receivers       []*ActivityInfo        `json:"receivers,omitempty"`
	Services        []*ServiceInfo         `json:"services,omitempty"`
	Providers       []*ProviderInfo        `json:"providers,omitempty"`
	Instrumentation []*InstrumentationInfo `json:"instrumentation,omitempty"`
	Permissions     []*PermissionInfo      `json:"permissions,omitempty"`

	Signatures []pm.Signature `json:"signatures,omitempty"`
}
