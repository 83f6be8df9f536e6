package setting

import (
	"math"
	"time"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
)

const (
	// FirstApplicationID is the lowest app id handed to installed packages.
	FirstApplicationID int32 = 10000
	// PerUserRange is the uid span reserved for each user.
	PerUserRange int32 = 100000
	// MaxUserID is the largest user id whose uids fit in an int32.
	MaxUserID = int((math.MaxInt32 - (PerUserRange - 1)) / PerUserRange)
)

// PackageSetting is the install record of one package.
type PackageSetting struct {
	PackageName      string    `json:"packageName"`
	AppID            int32     `json:"appId"`
	SharedUserID     string    `json:"sharedUserId,omitempty"`
	Run64Bit         bool      `json:"run64Bit"`
	NotCopied        bool      `json:"notCopied"`
	InstallFlags     int32     `json:"installFlags,omitempty"`
	FirstInstallTime time.Time `json:"firstInstallTime"`
	LastUpdateTime   time.Time `json:"lastUpdateTime"`

	layout paths.Layout
}

// Bind attaches the layout used for path queries and returns s.
func (s *PackageSetting) Bind(layout paths.Layout) *PackageSetting {
	s.layout = layout
	return s
}

func (s *PackageSetting) ApplicationID() int32 { return s.AppID }

func (s *PackageSetting) Is64BitEligible() bool { return s.Run64Bit }

func (s *PackageSetting) IsNotCopied() bool { return s.NotCopied }

// ResourcePath returns the copied package archive for the given bitness.
func (s *PackageSetting) ResourcePath(is64 bool) string {
	return s.layout.PackageResourcePath(s.PackageName, is64)
}

// OdexPath returns the optimized dex file for the given bitness.
func (s *PackageSetting) OdexPath(is64 bool) string {
	return s.layout.OdexFile(s.PackageName, is64)
}

// LibDirectory returns the package's own native library directory. Libraries
// are shared by every user.
func (s *PackageSetting) LibDirectory(userID int, is64 bool) string {
	return s.layout.AppLibDir(s.PackageName, is64)
}

// DataDirectory returns the virtual data directory of the package for a user.
func (s *PackageSetting) DataDirectory(userID int, is64 bool) string {
	return s.layout.DataUserPackageDir(userID, s.PackageName, is64)
}

// UID returns the per-user uid of the package.
func (s *PackageSetting) UID(userID int) int32 {
	return UserUID(userID, s.AppID)
}

// ValidUserID reports whether userID is in [0, MaxUserID].
func ValidUserID(userID int) bool {
	return userID >= 0 && userID <= MaxUserID
}

// UserUID combines a user id and an app id into a uid. userID must satisfy
// ValidUserID.
func UserUID(userID int, appID int32) int32 {
	return int32(userID)*PerUserRange + appID%PerUserRange
}

// UserState is the per-user visibility of a package.
type UserState struct {
	Installed bool `json:"installed"`
	Hidden    bool `json:"hidden"`
	Launched  bool `json:"launched"`
}

// Visible reports whether the package is installed and not hidden.
func (u UserState) Visible() bool {
	return u.Installed && !u.Hidden
}

// InstallTimes returns the first install and last update time.
func (s *PackageSetting) InstallTimes() (first, last time.Time) {
	return s.FirstInstallTime, s.LastUpdateTime
}
