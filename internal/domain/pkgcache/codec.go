package pkgcache

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/parcel"
)

// Metadata value tags
const (
	tagString byte = 's'
	tagInt    byte = 'i'
	tagBool   byte = 'b'
	tagFloat  byte = 'f'
)

func writeList[T any](w *parcel.Writer, list []T, enc func(*parcel.Writer, T) error) error {
	w.WriteListHeader(list == nil, len(list))
	for _, v := range list {
		if err := enc(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readList[T any](r *parcel.Reader, dec func(*parcel.Reader) T) []T {
	n, isNil := r.ReadListHeader()
	if r.Err() != nil || isNil {
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v := dec(r)
		if r.Err() != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

func encodePackage(w *parcel.Writer, p *snapshot.Package) error {
	w.WriteString(p.PackageName)
	w.WriteInt32(p.VersionCode)
	w.WriteString(p.VersionName)
	w.WriteString(p.SharedUserID)
	w.WriteInt32(p.SharedUserLabel)
	w.WriteInt32(p.PreferredOrder)
	writeApplication(w, &p.Application)

	if err := writeList(w, p.Activities, encodeActivity); err != nil {
		return err
	}
	if err := writeList(w, p.Services, encodeService); err != nil {
		return err
	}
	if err := writeList(w, p.Receivers, encodeActivity); err != nil {
		return err
	}
	if err := writeList(w, p.Providers, encodeProvider); err != nil {
		return err
	}
	if err := writeList(w, p.Instrumentation, encodeInstrumentation); err != nil {
		return err
	}
	if err := writeList(w, p.Permissions, encodePermission); err != nil {
		return err
	}
	if err := writeList(w, p.PermissionGroups, encodePermissionGroup); err != nil {
		return err
	}

	w.WriteStrings(p.RequestedPermissions)
	w.WriteStrings(p.ProtectedBroadcasts)
	w.WriteStrings(p.UsesLibraries)
	_ = writeList(w, p.ConfigPreferences, func(w *parcel.Writer, c pm.ConfigurationInfo) error {
		w.WriteInt32(c.ReqTouchScreen)
		w.WriteInt32(c.ReqKeyboardType)
		w.WriteInt32(c.ReqNavigation)
		w.WriteInt32(c.ReqInputFeatures)
		w.WriteInt32(c.ReqGlEsVersion)
		return nil
	})
	_ = writeList(w, p.ReqFeatures, func(w *parcel.Writer, f pm.FeatureInfo) error {
		w.WriteString(f.Name)
		w.WriteInt32(f.ReqGlEsVersion)
		w.WriteInt32(f.Flags)
		return nil
	})
	return writeBundle(w, p.MetaData)
}

func decodePackage(r *parcel.Reader) *snapshot.Package {
	p := &snapshot.Package{
		PackageName:     r.ReadString(),
		VersionCode:     r.ReadInt32(),
		VersionName:     r.ReadString(),
		SharedUserID:    r.ReadString(),
		SharedUserLabel: r.ReadInt32(),
		PreferredOrder:  r.ReadInt32(),
	}
	p.Application = readApplication(r)
	p.Activities = readList(r, decodeActivity)
	p.Services = readList(r, decodeService)
	p.Receivers = readList(r, decodeActivity)
	p.Providers = readList(r, decodeProvider)
	p.Instrumentation = readList(r, decodeInstrumentation)
	p.Permissions = readList(r, decodePermission)
	p.PermissionGroups = readList(r, decodePermissionGroup)
	p.RequestedPermissions = r.ReadStrings()
	p.ProtectedBroadcasts = r.ReadStrings()
	p.UsesLibraries = r.ReadStrings()
	p.ConfigPreferences = readList(r, func(r *parcel.Reader) pm.ConfigurationInfo {
		return pm.ConfigurationInfo{
			ReqTouchScreen:   r.ReadInt32(),
			ReqKeyboardType:  r.ReadInt32(),
			ReqNavigation:    r.ReadInt32(),
			ReqInputFeatures: r.ReadInt32(),
			ReqGlEsVersion:   r.ReadInt32(),
		}
	})
	p.ReqFeatures = readList(r, func(r *parcel.Reader) pm.FeatureInfo {
		return pm.FeatureInfo{
			Name:           r.ReadString(),
			ReqGlEsVersion: r.ReadInt32(),
			Flags:          r.ReadInt32(),
		}
	})
	p.MetaData = readBundle(r)
	return p
}

func writeApplication(w *parcel.Writer, a *pm.ApplicationInfo) {
	w.WriteString(a.PackageName)
	w.WriteString(a.ClassName)
	w.WriteString(a.ProcessName)
	w.WriteString(a.TaskAffinity)
	w.WriteString(a.Permission)
	w.WriteString(a.Label)
	w.WriteInt32(a.Icon)
	w.WriteInt32(a.Theme)
	w.WriteInt32(a.Flags)
	w.WriteBool(a.Enabled)
	w.WriteInt32(a.UID)
	w.WriteInt32(a.MinSDKVersion)
	w.WriteInt32(a.TargetSDKVersion)
	w.WriteString(a.SourceDir)
	w.WriteString(a.PublicSourceDir)
	w.WriteString(a.DataDir)
	w.WriteString(a.NativeLibraryDir)
	w.WriteString(a.PrimaryCPUABI)
	w.WriteStrings(a.SharedLibraryFiles)
}

func readApplication(r *parcel.Reader) pm.ApplicationInfo {
	return pm.ApplicationInfo{
		PackageName:        r.ReadString(),
		ClassName:          r.ReadString(),
		ProcessName:        r.ReadString(),
		TaskAffinity:       r.ReadString(),
		Permission:         r.ReadString(),
		Label:              r.ReadString(),
		Icon:               r.ReadInt32(),
		Theme:              r.ReadInt32(),
		Flags:              r.ReadInt32(),
		Enabled:            r.ReadBool(),
		UID:                r.ReadInt32(),
		MinSDKVersion:      r.ReadInt32(),
		TargetSDKVersion:   r.ReadInt32(),
		SourceDir:          r.ReadString(),
		PublicSourceDir:    r.ReadString(),
		DataDir:            r.ReadString(),
		NativeLibraryDir:   r.ReadString(),
		PrimaryCPUABI:      r.ReadString(),
		SharedLibraryFiles: r.ReadStrings(),
	}
}

func writeComponentInfo(w *parcel.Writer, c *pm.ComponentInfo) {
	w.WriteString(c.Name)
	w.WriteString(c.PackageName)
	w.WriteString(c.ProcessName)
	w.WriteString(c.Label)
	w.WriteInt32(c.Icon)
	w.WriteBool(c.Enabled)
	w.WriteBool(c.Exported)
	w.WriteBool(c.DirectBootAware)
}

func readComponentInfo(r *parcel.Reader) pm.ComponentInfo {
	return pm.ComponentInfo{
		Name:            r.ReadString(),
		PackageName:     r.ReadString(),
		ProcessName:     r.ReadString(),
		Label:           r.ReadString(),
		Icon:            r.ReadInt32(),
		Enabled:         r.ReadBool(),
		Exported:        r.ReadBool(),
		DirectBootAware: r.ReadBool(),
	}
}

// writeComponent encodes the shared part of a descriptor. Owner references
// are not written.
func writeComponent(w *parcel.Writer, c *snapshot.Component) error {
	w.WriteString(c.ClassName)
	return writeBundle(w, c.MetaData)
}

func readComponent(r *parcel.Reader) snapshot.Component {
	return snapshot.Component{
		ClassName: r.ReadString(),
		MetaData:  readBundle(r),
	}
}

func encodeActivity(w *parcel.Writer, a *snapshot.Activity) error {
	if err := writeComponent(w, &a.Component); err != nil {
		return err
	}
	writeComponentInfo(w, &a.Info.ComponentInfo)
	w.WriteInt32(a.Info.Theme)
	w.WriteInt32(a.Info.LaunchMode)
	w.WriteInt32(a.Info.ScreenOrientation)
	w.WriteInt32(a.Info.ConfigChanges)
	w.WriteInt32(a.Info.SoftInputMode)
	w.WriteInt32(a.Info.Flags)
	w.WriteString(a.Info.TaskAffinity)
	w.WriteString(a.Info.TargetActivity)
	w.WriteString(a.Info.Permission)
	w.WriteString(a.Info.ParentActivityName)
	return writeList(w, a.IntentFilters, encodeIntentFilter)
}

func decodeActivity(r *parcel.Reader) *snapshot.Activity {
	a := &snapshot.Activity{Component: readComponent(r)}
	a.Info = pm.ActivityInfo{
		ComponentInfo:      readComponentInfo(r),
		Theme:              r.ReadInt32(),
		LaunchMode:         r.ReadInt32(),
		ScreenOrientation:  r.ReadInt32(),
		ConfigChanges:      r.ReadInt32(),
		SoftInputMode:      r.ReadInt32(),
		Flags:              r.ReadInt32(),
		TaskAffinity:       r.ReadString(),
		TargetActivity:     r.ReadString(),
		Permission:         r.ReadString(),
		ParentActivityName: r.ReadString(),
	}
	a.IntentFilters = readList(r, decodeIntentFilter)
	return a
}

func encodeService(w *parcel.Writer, s *snapshot.Service) error {
	if err := writeComponent(w, &s.Component); err != nil {
		return err
	}
	writeComponentInfo(w, &s.Info.ComponentInfo)
	w.WriteString(s.Info.Permission)
	w.WriteInt32(s.Info.Flags)
	return writeList(w, s.IntentFilters, encodeIntentFilter)
}

func decodeService(r *parcel.Reader) *snapshot.Service {
	s := &snapshot.Service{Component: readComponent(r)}
	s.Info = pm.ServiceInfo{
		ComponentInfo: readComponentInfo(r),
		Permission:    r.ReadString(),
		Flags:         r.ReadInt32(),
	}
	s.IntentFilters = readList(r, decodeIntentFilter)
	return s
}

func writePattern(w *parcel.Writer, m pm.PatternMatcher) error {
	w.WriteString(m.Path)
	w.WriteInt32(m.Type)
	return nil
}

func readPattern(r *parcel.Reader) pm.PatternMatcher {
	return pm.PatternMatcher{Path: r.ReadString(), Type: r.ReadInt32()}
}

func encodeProvider(w *parcel.Writer, p *snapshot.Provider) error {
	if err := writeComponent(w, &p.Component); err != nil {
		return err
	}
	info := &p.Info
	writeComponentInfo(w, &info.ComponentInfo)
	w.WriteString(info.Authority)
	w.WriteString(info.ReadPermission)
	w.WriteString(info.WritePermission)
	w.WriteBool(info.GrantURIPermissions)
	_ = writeList(w, info.URIPermissionPatterns, writePattern)
	_ = writeList(w, info.PathPermissions, func(w *parcel.Writer, pp pm.PathPermission) error {
		_ = writePattern(w, pp.PatternMatcher)
		w.WriteString(pp.ReadPermission)
		w.WriteString(pp.WritePermission)
		return nil
	})
	w.WriteBool(info.Multiprocess)
	w.WriteInt32(info.InitOrder)
	w.WriteBool(info.IsSyncable)
	w.WriteInt32(info.Flags)
	return writeList(w, p.IntentFilters, encodeIntentFilter)
}

func decodeProvider(r *parcel.Reader) *snapshot.Provider {
	p := &snapshot.Provider{Component: readComponent(r)}
	p.Info = pm.ProviderInfo{
		ComponentInfo:         readComponentInfo(r),
		Authority:             r.ReadString(),
		ReadPermission:        r.ReadString(),
		WritePermission:       r.ReadString(),
		GrantURIPermissions:   r.ReadBool(),
		URIPermissionPatterns: readList(r, readPattern),
		PathPermissions: readList(r, func(r *parcel.Reader) pm.PathPermission {
			return pm.PathPermission{
				PatternMatcher:  readPattern(r),
				ReadPermission:  r.ReadString(),
				WritePermission: r.ReadString(),
			}
		}),
		Multiprocess: r.ReadBool(),
		InitOrder:    r.ReadInt32(),
		IsSyncable:   r.ReadBool(),
		Flags:        r.ReadInt32(),
	}
	p.IntentFilters = readList(r, decodeIntentFilter)
	return p
}

func encodeInstrumentation(w *parcel.Writer, in *snapshot.Instrumentation) error {
	if err := writeComponent(w, &in.Component); err != nil {
		return err
	}
	w.WriteString(in.Info.Name)
	w.WriteString(in.Info.PackageName)
	w.WriteString(in.Info.Label)
	w.WriteString(in.Info.TargetPackage)
	w.WriteBool(in.Info.HandleProfiling)
	w.WriteBool(in.Info.FunctionalTest)
	return nil
}

func decodeInstrumentation(r *parcel.Reader) *snapshot.Instrumentation {
	return &snapshot.Instrumentation{
		Component: readComponent(r),
		Info: pm.InstrumentationInfo{
			Name:            r.ReadString(),
			PackageName:     r.ReadString(),
			Label:           r.ReadString(),
			TargetPackage:   r.ReadString(),
			HandleProfiling: r.ReadBool(),
			FunctionalTest:  r.ReadBool(),
		},
	}
}

func encodePermission(w *parcel.Writer, p *snapshot.Permission) error {
	if err := writeComponent(w, &p.Component); err != nil {
		return err
	}
	w.WriteString(p.Info.Name)
	w.WriteString(p.Info.PackageName)
	w.WriteString(p.Info.Label)
	w.WriteString(p.Info.Description)
	w.WriteString(p.Info.Group)
	w.WriteInt32(p.Info.ProtectionLevel)
	w.WriteInt32(p.Info.Flags)
	return nil
}

func decodePermission(r *parcel.Reader) *snapshot.Permission {
	return &snapshot.Permission{
		Component: readComponent(r),
		Info: pm.PermissionInfo{
			Name:            r.ReadString(),
			PackageName:     r.ReadString(),
			Label:           r.ReadString(),
			Description:     r.ReadString(),
			Group:           r.ReadString(),
			ProtectionLevel: r.ReadInt32(),
			Flags:           r.ReadInt32(),
		},
	}
}

func encodePermissionGroup(w *parcel.Writer, g *snapshot.PermissionGroup) error {
	if err := writeComponent(w, &g.Component); err != nil {
		return err
	}
	w.WriteString(g.Info.Name)
	w.WriteString(g.Info.PackageName)
	w.WriteString(g.Info.Label)
	w.WriteString(g.Info.Description)
	w.WriteInt32(g.Info.Priority)
	w.WriteInt32(g.Info.Flags)
	return nil
}

func decodePermissionGroup(r *parcel.Reader) *snapshot.PermissionGroup {
	return &snapshot.PermissionGroup{
		Component: readComponent(r),
		Info: pm.PermissionGroupInfo{
			Name:        r.ReadString(),
			PackageName: r.ReadString(),
			Label:       r.ReadString(),
			Description: r.ReadString(),
			Priority:    r.ReadInt32(),
			Flags:       r.ReadInt32(),
		},
	}
}

func encodeIntentFilter(w *parcel.Writer, f *snapshot.IntentFilter) error {
	w.WriteStrings(f.Actions)
	w.WriteStrings(f.Categories)
	w.WriteStrings(f.DataSchemes)
	w.WriteStrings(f.DataTypes)
	_ = writeList(w, f.DataAuthorities, func(w *parcel.Writer, a pm.AuthorityEntry) error {
		w.WriteString(a.Host)
		w.WriteInt32(a.Port)
		return nil
	})
	_ = writeList(w, f.DataPaths, writePattern)
	w.WriteInt32(f.Priority)
	w.WriteString(f.Label)
	w.WriteInt32(f.Icon)
	w.WriteBool(f.HasDefault)
	return nil
}

func decodeIntentFilter(r *parcel.Reader) *snapshot.IntentFilter {
	return &snapshot.IntentFilter{
		IntentFilter: pm.IntentFilter{
			Actions:     r.ReadStrings(),
			Categories:  r.ReadStrings(),
			DataSchemes: r.ReadStrings(),
			DataTypes:   r.ReadStrings(),
			DataAuthorities: readList(r, func(r *parcel.Reader) pm.AuthorityEntry {
				return pm.AuthorityEntry{Host: r.ReadString(), Port: r.ReadInt32()}
			}),
			DataPaths:  readList(r, readPattern),
			Priority:   r.ReadInt32(),
			Label:      r.ReadString(),
			Icon:       r.ReadInt32(),
			HasDefault: r.ReadBool(),
		},
	}
}

// writeBundle encodes a metadata bag with keys in sorted order so equal
// bags produce equal bytes.
func writeBundle(w *parcel.Writer, b pm.Bundle) error {
	w.WriteListHeader(b == nil, len(b))
	for _, k := range b.Keys() {
		w.WriteString(k)
		switch v := b[k].(type) {
		case string:
			w.WriteTag(tagString)
			w.WriteString(v)
		case int64:
			w.WriteTag(tagInt)
			w.WriteInt64(v)
		case bool:
			w.WriteTag(tagBool)
			w.WriteBool(v)
		case float64:
			w.WriteTag(tagFloat)
			w.WriteFloat64(v)
		default:
			return fmt.Errorf("metadata %q: unsupported value type %T", k, v)
		}
	}
	return nil
}

func readBundle(r *parcel.Reader) pm.Bundle {
	n, isNil := r.ReadListHeader()
	if r.Err() != nil || isNil {
		return nil
	}
	b := make(pm.Bundle, n)
	for i := 0; i < n; i++ {
		k := r.ReadString()
		switch tag := r.ReadTag(); tag {
		case tagString:
			b[k] = r.ReadString()
		case tagInt:
			b[k] = r.ReadInt64()
		case tagBool:
			b[k] = r.ReadBool()
		case tagFloat:
			b[k] = r.ReadFloat64()
		default:
			r.Fail(fmt.Errorf("%w: unknown metadata tag 0x%02x", parcel.ErrMalformed, tag))
		}
		if r.Err() != nil {
			return nil
		}
	}
	if len(b) != n {
		r.Fail(fmt.Errorf("%w: duplicate metadata keys", parcel.ErrMalformed))
		return nil
	}
	return b
}
