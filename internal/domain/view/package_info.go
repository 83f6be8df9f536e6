package view

import (
	"slices"
	"time"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/setting"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
)

// installTimes is implemented by install records that know when the package
// was installed and last updated.
type installTimes interface {
	InstallTimes() (first, last time.Time)
}

// permissionGIDs maps permissions to the supplementary groups the platform
// grants for them.
var permissionGIDs = map[string][]int32{
	"android.permission.INTERNET":                {3003},
	"android.permission.BLUETOOTH":               {3001},
	"android.permission.BLUETOOTH_ADMIN":         {3002},
	"android.permission.NET_ADMIN":               {3005},
	"android.permission.READ_EXTERNAL_STORAGE":   {1028},
	"android.permission.WRITE_EXTERNAL_STORAGE":  {1015, 1028},
	"android.permission.WRITE_MEDIA_STORAGE":     {1023},
	"android.permission.ACCESS_CACHE_FILESYSTEM": {2001},
	"android.permission.DIAGNOSTIC":              {1004, 2002},
	"android.permission.READ_LOGS":               {1007},
}

// gidsFor returns the sorted, de-duplicated groups granted for perms.
func (g *Generator) gidsFor(perms []string) []int32 {
	seen := make(map[int32]bool)
	out := []int32{}
	for _, perm := range perms {
		for _, gid := range g.gids[perm] {
			if !seen[gid] {
				seen[gid] = true
				out = append(out, gid)
			}
		}
	}
	slices.Sort(out)
	return out
}

// PackageInfo returns the full view of p. Component lists are included per
// flag; disabled components are not filtered.
func (g *Generator) PackageInfo(p *snapshot.Package, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*PackageInfo, bool) {
	done := g.observe("package")
	pi, ok := g.packageInfo(p, flags, state, userID, callerPID)
	done(ok)
	return pi, ok
}

func (g *Generator) packageInfo(p *snapshot.Package, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*PackageInfo, bool) {
	if p == nil || !visible(state, flags) {
		return nil, false
	}
	rec, ok := g.records.InstallRecord(p.PackageName)
	if !ok {
		return nil, false
	}

	c := g.compute(p, rec, flags, userID, callerPID, false)
	app := newApplicationInfo(&p.Application, c)
	pi := &PackageInfo{
		PackageName:     p.PackageName,
		VersionCode:     p.VersionCode,
		VersionName:     p.VersionName,
		SharedUserID:    p.SharedUserID,
		SharedUserLabel: p.SharedUserLabel,
		Application:     app,
	}
	if t, ok := rec.(installTimes); ok {
		first, last := t.InstallTimes()
		pi.FirstInstallTime = first.UnixMilli()
		pi.LastUpdateTime = last.UnixMilli()
	}
	if len(p.RequestedPermissions) > 0 {
		pi.RequestedPermissions = pm.CloneStrings(p.RequestedPermissions)
	}
	if flags.Has(pm.GetGIDs) {
		pi.GIDs = g.gidsFor(p.RequestedPermissions)
	}
	if flags.Has(pm.GetConfigurations) {
		if len(p.ConfigPreferences) > 0 {
			pi.ConfigPreferences = append([]pm.ConfigurationInfo{}, p.ConfigPreferences...)
		}
		if len(p.ReqFeatures) > 0 {
			pi.ReqFeatures = append([]pm.FeatureInfo{}, p.ReqFeatures...)
		}
	}

	// Each component gets its own application copy.
	if flags.Has(pm.GetActivities) {
		for _, a := range p.Activities {
			pi.Activities = append(pi.Activities, newActivityInfo(a, newApplicationInfo(&p.Application, c), flags))
		}
	}
	if flags.Has(pm.GetReceivers) {
		for _, r := range p.Receivers {
			pi.Receivers = append(pi.Receivers, newActivityInfo(r, newApplicationInfo(&p.Application, c), flags))
		}
	}
	if flags.Has(pm.GetServices) {
		for _, s := range p.Services {
			pi.Services = append(pi.Services, newServiceInfo(s, newApplicationInfo(&p.Application, c), flags))
		}
	}
	if flags.Has(pm.GetProviders) {
		for _, pr := range p.Providers {
			pi.Providers = append(pi.Providers, newProviderInfo(pr, newApplicationInfo(&p.Application, c), flags))
		}
	}
	if flags.Has(pm.GetInstrumentation) {
		for _, in := range p.Instrumentation {
			pi.Instrumentation = append(pi.Instrumentation, newInstrumentationInfo(in, newApplicationInfo(&p.Application, c), flags))
		}
	}
	if flags.Has(pm.GetPermissions) {
		for _, perm := range p.Permissions {
			pi.Permissions = append(pi.Permissions, newPermissionInfo(perm, flags))
		}
	}
	if flags.Has(pm.GetSignatures) {
		if sigs := g.signatures.Signatures(p); len(sigs) > 0 {
			pi.Signatures = pm.CloneSignatures(sigs)
		}
	}
	return pi, true
}
