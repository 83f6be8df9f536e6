package pm

// QueryFlags selects which optional parts of a view are populated.
// Bit values follow the platform package manager so callers can pass their
// flags through unchanged.
type QueryFlags uint32

const (
	GetActivities            QueryFlags = 0x00000001
	GetReceivers             QueryFlags = 0x00000002
	GetServices              QueryFlags = 0x00000004
	GetProviders             QueryFlags = 0x00000008
	GetInstrumentation       QueryFlags = 0x00000010
	GetIntentFilters         QueryFlags = 0x00000020
	GetSignatures            QueryFlags = 0x00000040
	GetMetaData              QueryFlags = 0x00000080
	GetGIDs                  QueryFlags = 0x00000100
	GetDisabledComponents    QueryFlags = 0x00000200
	GetSharedLibraryFiles    QueryFlags = 0x00000400
	GetURIPermissionPatterns QueryFlags = 0x00000800
	GetPermissions           QueryFlags = 0x00001000
	GetUninstalledPackages   QueryFlags = 0x00002000
	GetConfigurations        QueryFlags = 0x00004000
)

// Has reports whether every bit of f is set.
func (q QueryFlags) Has(f QueryFlags) bool {
	return q&f == f
}

// ApplicationInfo.Flags bits used by the registry
const (
	FlagSystem  int32 = 1 << 0
	FlagDebug   int32 = 1 << 1
	FlagHasCode int32 = 1 << 2
)

// PatternMatcher types
const (
	PatternLiteral    int32 = 0
	PatternPrefix     int32 = 1
	PatternSimpleGlob int32 = 2
)
