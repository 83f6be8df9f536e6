package pm

// ApplicationInfo describes the <application> element of a package.
type ApplicationInfo struct {
	PackageName        string   `json:"packageName"`
	ClassName          string   `json:"className,omitempty"`
	ProcessName        string   `json:"processName,omitempty"`
	TaskAffinity       string   `json:"taskAffinity,omitempty"`
	Permission         string   `json:"permission,omitempty"`
	Label              string   `json:"label,omitempty"`
	Icon               int32    `json:"icon,omitempty"`
	Theme              int32    `json:"theme,omitempty"`
	Flags              int32    `json:"flags,omitempty"`
	Enabled            bool     `json:"enabled"`
	UID                int32    `json:"uid,omitempty"`
	MinSDKVersion      int32    `json:"minSdkVersion,omitempty"`
	TargetSDKVersion   int32    `json:"targetSdkVersion,omitempty"`
	SourceDir          string   `json:"sourceDir,omitempty"`
	PublicSourceDir    string   `json:"publicSourceDir,omitempty"`
	DataDir            string   `json:"dataDir,omitempty"`
	NativeLibraryDir   string   `json:"nativeLibraryDir,omitempty"`
	PrimaryCPUABI      string   `json:"primaryCpuAbi,omitempty"`
	SharedLibraryFiles []string `json:"sharedLibraryFiles,omitempty"`
}

// Clone returns a deep copy.
func (a ApplicationInfo) Clone() ApplicationInfo {
	a.SharedLibraryFiles = cloneStrings(a.SharedLibraryFiles)
	return a
}

// ComponentInfo holds the fields common to every manifest component.
type ComponentInfo struct {
	Name            string `json:"name"`
	PackageName     string `json:"packageName,omitempty"`
	ProcessName     string `json:"processName,omitempty"`
	Label           string `json:"label,omitempty"`
	Icon            int32  `json:"icon,omitempty"`
	Enabled         bool   `json:"enabled"`
	Exported        bool   `json:"exported"`
	DirectBootAware bool   `json:"directBootAware,omitempty"`
}

// ActivityInfo describes an <activity> or <receiver>.
type ActivityInfo struct {
	ComponentInfo      `json:",inline"`
	Theme              int32  `json:"theme,omitempty"`
	LaunchMode         int32  `json:"launchMode,omitempty"`
	ScreenOrientation  int32  `json:"screenOrientation,omitempty"`
	ConfigChanges      int32  `json:"configChanges,omitempty"`
	SoftInputMode      int32  `json:"softInputMode,omitempty"`
	Flags              int32  `json:"flags,omitempty"`
	TaskAffinity       string `json:"taskAffinity,omitempty"`
	TargetActivity     string `json:"targetActivity,omitempty"`
	Permission         string `json:"permission,omitempty"`
	ParentActivityName string `json:"parentActivityName,omitempty"`
}

// ServiceInfo describes a <service>.
type ServiceInfo struct {
	ComponentInfo `json:",inline"`
	Permission    string `json:"permission,omitempty"`
	Flags         int32  `json:"flags,omitempty"`
}

// PatternMatcher is a path pattern with a PatternLiteral/Prefix/SimpleGlob type.
type PatternMatcher struct {
	Path string `json:"path"`
	Type int32  `json:"type,omitempty"`
}

// PathPermission guards a provider path.
type PathPermission struct {
	PatternMatcher  `json:",inline"`
	ReadPermission  string `json:"readPermission,omitempty"`
	WritePermission string `json:"writePermission,omitempty"`
}

// ProviderInfo describes a <provider>.
type ProviderInfo struct {
	ComponentInfo         `json:",inline"`
	Authority             string           `json:"authority"`
	ReadPermission        string           `json:"readPermission,omitempty"`
	WritePermission       string           `json:"writePermission,omitempty"`
	GrantURIPermissions   bool             `json:"grantUriPermissions,omitempty"`
	URIPermissionPatterns []PatternMatcher `json:"uriPermissionPatterns,omitempty"`
	PathPermissions       []PathPermission `json:"pathPermissions,omitempty"`
	Multiprocess          bool             `json:"multiprocess,omitempty"`
	InitOrder             int32            `json:"initOrder,omitempty"`
	IsSyncable            bool             `json:"isSyncable,omitempty"`
	Flags                 int32            `json:"flags,omitempty"`
}

// Clone returns a deep copy.
func (p ProviderInfo) Clone() ProviderInfo {
	if p.URIPermissionPatterns != nil {
		p.URIPermissionPatterns = append([]PatternMatcher{}, p.URIPermissionPatterns...)
	}
	if p.PathPermissions != nil {
		p.PathPermissions = append([]PathPermission{}, p.PathPermissions...)
	}
	return p
}

// InstrumentationInfo describes an <instrumentation>.
type InstrumentationInfo struct {
	Name            string `json:"name"`
	PackageName     string `json:"packageName,omitempty"`
	Label           string `json:"label,omitempty"`
	TargetPackage   string `json:"targetPackage"`
	HandleProfiling bool   `json:"handleProfiling,omitempty"`
	FunctionalTest  bool   `json:"functionalTest,omitempty"`
}

// PermissionInfo describes a declared <permission>.
type PermissionInfo struct {
	Name            string `json:"name"`
	PackageName     string `json:"packageName,omitempty"`
	Label           string `json:"label,omitempty"`
	Description     string `json:"description,omitempty"`
	Group           string `json:"group,omitempty"`
	ProtectionLevel int32  `json:"protectionLevel,omitempty"`
	Flags           int32  `json:"flags,omitempty"`
}

// PermissionGroupInfo describes a declared <permission-group>.
type PermissionGroupInfo struct {
	Name        string `json:"name"`
	PackageName string `json:"packageName,omitempty"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Priority    int32  `json:"priority,omitempty"`
	Flags       int32  `json:"flags,omitempty"`
}

// AuthorityEntry is a host/port pair of an intent filter's data.
type AuthorityEntry struct {
	Host string `json:"host"`
	Port int32  `json:"port,omitempty"`
}

// IntentFilter is the immutable part of an <intent-filter>.
type IntentFilter struct {
	Actions         []string         `json:"actions,omitempty"`
	Categories      []string         `json:"categories,omitempty"`
	DataSchemes     []string         `json:"dataSchemes,omitempty"`
	DataTypes       []string         `json:"dataTypes,omitempty"`
	DataAuthorities []AuthorityEntry `json:"dataAuthorities,omitempty"`
	DataPaths       []PatternMatcher `json:"dataPaths,omitempty"`
	Priority        int32            `json:"priority,omitempty"`
	Label           string           `json:"label,omitempty"`
	Icon            int32            `json:"icon,omitempty"`
	HasDefault      bool             `json:"hasDefault,omitempty"`
}

// Clone returns a deep copy.
func (f IntentFilter) Clone() IntentFilter {
	f.Actions = cloneStrings(f.Actions)
	f.Categories = cloneStrings(f.Categories)
	f.DataSchemes = cloneStrings(f.DataSchemes)
	f.DataTypes = cloneStrings(f.DataTypes)
	if f.DataAuthorities != nil {
		f.DataAuthorities = append([]AuthorityEntry{}, f.DataAuthorities...)
	}
	if f.DataPaths != nil {
		f.DataPaths = append([]PatternMatcher{}, f.DataPaths...)
	}
	return f
}

// ConfigurationInfo is a <uses-configuration> entry.
type ConfigurationInfo struct {
	ReqTouchScreen   int32 `json:"reqTouchScreen,omitempty"`
	ReqKeyboardType  int32 `json:"reqKeyboardType,omitempty"`
	ReqNavigation    int32 `json:"reqNavigation,omitempty"`
	ReqInputFeatures int32 `json:"reqInputFeatures,omitempty"`
	ReqGlEsVersion   int32 `json:"reqGlEsVersion,omitempty"`
}

// FeatureInfo is a <uses-feature> entry.
type FeatureInfo struct {
	Name           string `json:"name,omitempty"`
	ReqGlEsVersion int32  `json:"reqGlEsVersion,omitempty"`
	Flags          int32  `json:"flags,omitempty"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// CloneStrings copies a string slice, preserving nil.
func CloneStrings(s []string) []string {
	return cloneStrings(s)
}
