package view

import (
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
)

// computed holds the per-request fields of an application view. Nothing in
// it is read from the snapshot's component descriptors.
type computed struct {
	is64 bool
	uid  int32

	sourceDir      string
	dataDir        string // reported data directory
	virtualDataDir string

	libDir string
	abi    string

	sharedLibs    []string
	keepSharedLib bool

	// platform level the mirrors are generated for
	sdk int

	metaData pm.Bundle
}

// Platform levels that introduced application fields
const (
	sdkLollipop = 21
	sdkNougat   = 24
	sdkOreo     = 26
)

func newApplicationInfo(base *pm.ApplicationInfo, c computed) *ApplicationInfo {
	ai := &ApplicationInfo{ApplicationInfo: base.Clone()}
	ai.UID = c.uid
	ai.SourceDir = c.sourceDir
	ai.PublicSourceDir = c.sourceDir
	ai.DataDir = c.dataDir
	ai.NativeLibraryDir = c.libDir
	if c.abi != "" {
		ai.PrimaryCPUABI = c.abi
	}
	if c.keepSharedLib {
		if c.sharedLibs != nil {
			ai.SharedLibraryFiles = pm.CloneStrings(c.sharedLibs)
		}
	} else {
		ai.SharedLibraryFiles = nil
	}
	ai.MetaData = c.metaData.Clone()

	if c.sdk >= sdkLollipop {
		ai.ScanSourceDir = c.virtualDataDir
		ai.ScanPublicSourceDir = c.virtualDataDir
		ai.SplitSourceDirs = []string{c.sourceDir}
		ai.SplitPublicSourceDirs = []string{c.sourceDir}
	}
	if c.sdk >= sdkNougat {
		ai.DeviceProtectedDataDir = c.virtualDataDir
		ai.CredentialProtectedDataDir = c.virtualDataDir
		if c.sdk < sdkOreo {
			ai.DeviceEncryptedDataDir = c.virtualDataDir
			ai.CredentialEncryptedDataDir = c.virtualDataDir
		}
	}
	return ai
}

// metaFor returns the metadata a component view carries: all of it with
// GetMetaData, otherwise none.
func metaFor(meta pm.Bundle, flags pm.QueryFlags) pm.Bundle {
	if !flags.Has(pm.GetMetaData) {
		return nil
	}
	return meta.Clone()
}

func newActivityInfo(a *snapshot.Activity, app *ApplicationInfo, flags pm.QueryFlags) *ActivityInfo {
	return &ActivityInfo{
		ActivityInfo: a.Info,
		MetaData:     metaFor(a.MetaData, flags),
		Application:  app,
	}
}

func newServiceInfo(s *snapshot.Service, app *ApplicationInfo, flags pm.QueryFlags) *ServiceInfo {
	return &ServiceInfo{
		ServiceInfo: s.Info,
		MetaData:    metaFor(s.MetaData, flags),
		Application: app,
	}
}

func newProviderInfo(p *snapshot.Provider, app *ApplicationInfo, flags pm.QueryFlags) *ProviderInfo {
	info := p.Info.Clone()
	if !flags.Has(pm.GetURIPermissionPatterns) {
		info.URIPermissionPatterns = nil
	}
	return &ProviderInfo{
		ProviderInfo: info,
		MetaData:     metaFor(p.MetaData, flags),
		Application:  app,
	}
}

func newInstrumentationInfo(in *snapshot.Instrumentation, app *ApplicationInfo, flags pm.QueryFlags) *InstrumentationInfo {
	return &InstrumentationInfo{
		InstrumentationInfo: in.Info,
		MetaData:            metaFor(in.MetaData, flags),
		SourceDir:           app.SourceDir,
		PublicSourceDir:     app.PublicSourceDir,
		DataDir:             app.DataDir,
		NativeLibraryDir:    app.NativeLibraryDir,
		Application:         app,
	}
}

func newPermissionInfo(p *snapshot.Permission, flags pm.QueryFlags) *PermissionInfo {
	return &PermissionInfo{PermissionInfo: p.Info, MetaData: metaFor(p.MetaData, flags)}
}

func newPermissionGroupInfo(g *snapshot.PermissionGroup, flags pm.QueryFlags) *PermissionGroupInfo {
	return &PermissionGroupInfo{PermissionGroupInfo: g.Info, MetaData: metaFor(g.MetaData, flags)}
}
