// Package testutil provides fixtures and testify mocks shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/host"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/manifest"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
)

// ExamplePackage is the package name used by ExampleManifest.
const ExamplePackage = "com.example.app"

// MockHostPackageManager is a mock of the host package manager.
type MockHostPackageManager struct {
	mock.Mock
}

// Lookup mocks the Lookup method.
func (m *MockHostPackageManager) Lookup(packageName string) (*host.Application, bool) {
	args := m.Called(packageName)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*host.Application), args.Bool(1)
}

// NewMockHostPackageManager creates a host mock that knows no packages.
func NewMockHostPackageManager(t *testing.T) *MockHostPackageManager {
	t.Helper()
	m := new(MockHostPackageManager)
	m.On("Lookup", mock.Anything).Return(nil, false).Maybe()
	return m
}

// MockProcessFamily is a mock of the virtual app process table.
type MockProcessFamily struct {
	mock.Mock
}

// IsAppPID mocks the IsAppPID method.
func (m *MockProcessFamily) IsAppPID(pid int) bool {
	args := m.Called(pid)
	return args.Bool(0)
}

// NewMockProcessFamily creates a process mock answering isApp for every pid.
func NewMockProcessFamily(t *testing.T, isApp bool) *MockProcessFamily {
	t.Helper()
	m := new(MockProcessFamily)
	m.On("IsAppPID", mock.Anything).Return(isApp).Maybe()
	return m
}

// MockTrustPolicy is a mock of the fake-signature trust policy.
type MockTrustPolicy struct {
	mock.Mock
}

// AllowFakeSignature mocks the AllowFakeSignature method.
func (m *MockTrustPolicy) AllowFakeSignature(packageName string) bool {
	args := m.Called(packageName)
	return args.Bool(0)
}

// ExampleManifest returns a raw package with one component of every kind.
func ExampleManifest(t *testing.T) *manifest.Package {
	t.Helper()

	return &manifest.Package{
		PackageName: ExamplePackage,
		VersionCode: 3,
		VersionName: "1.0.3",
		Application: pm.ApplicationInfo{
			PackageName:      ExamplePackage,
			ClassName:        ".ExampleApp",
			Label:            "Example",
			TargetSDKVersion: 28,
		},
		Activities: []manifest.Activity{
			{
				ActivityInfo: pm.ActivityInfo{
					ComponentInfo: pm.ComponentInfo{Name: ".Main", Enabled: true, Exported: true},
					LaunchMode:    1,
				},
				MetaData: pm.Bundle{"screen": "main"},
				IntentFilters: []pm.IntentFilter{{
					Actions:    []string{"android.intent.action.MAIN"},
					Categories: []string{"android.intent.category.LAUNCHER"},
				}},
			},
		},
		Receivers: []manifest.Activity{
			{
				ActivityInfo: pm.ActivityInfo{ComponentInfo: pm.ComponentInfo{Name: ".BootReceiver", Enabled: true}},
				IntentFilters: []pm.IntentFilter{{
					Actions: []string{"android.intent.action.BOOT_COMPLETED"},
				}},
			},
		},
		Services: []manifest.Service{
			{
				ServiceInfo: pm.ServiceInfo{ComponentInfo: pm.ComponentInfo{Name: ".SyncService", Enabled: true}},
				IntentFilters: []pm.IntentFilter{
					{Actions: []string{"com.example.SYNC"}},
					{Actions: []string{"com.example.PUSH"}, Priority: 10},
				},
			},
		},
		Providers: []manifest.Provider{
			{
				ProviderInfo: pm.ProviderInfo{
					ComponentInfo:         pm.ComponentInfo{Name: ".FileProvider", Enabled: true},
					Authority:             "com.example.app.files",
					GrantURIPermissions:   true,
					URIPermissionPatterns: []pm.PatternMatcher{{Path: "/shared/", Type: pm.PatternPrefix}},
				},
				MetaData: pm.Bundle{"paths": "res/xml/paths"},
			},
		},
		Instrumentation: []manifest.Instrumentation{
			{InstrumentationInfo: pm.InstrumentationInfo{Name: ".Runner", TargetPackage: ExamplePackage}},
		},
		Permissions: []manifest.Permission{
			{PermissionInfo: pm.PermissionInfo{Name: "com.example.permission.SYNC", Group: "com.example.group"}},
		},
		PermissionGroups: []manifest.PermissionGroup{
			{PermissionGroupInfo: pm.PermissionGroupInfo{Name: "com.example.group", Priority: 1}},
		},
		RequestedPermissions: []string{"android.permission.INTERNET", "android.permission.INTERNET", "android.permission.CAMERA"},
		ProtectedBroadcasts:  []string{"com.example.PRIVATE"},
		UsesLibraries:        []string{"org.apache.http.legacy"},
		ConfigPreferences:    []pm.ConfigurationInfo{{ReqTouchScreen: 3}},
		ReqFeatures:          []pm.FeatureInfo{{Name: "android.hardware.camera"}},
		MetaData:             pm.Bundle{"channel": "beta", "build": int64(42)},
		Certificates:         []string{"3082010a0282010100"},
	}
}
