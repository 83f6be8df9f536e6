package snapshot

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/manifest"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
)

const (
	// FakeSignaturePermission must be requested to use a declared signature.
	FakeSignaturePermission = "android.permission.FAKE_PACKAGE_SIGNATURE"
	// FakeSignatureMetaKey is the application metadata key carrying it, hex encoded.
	FakeSignatureMetaKey = "fake-signature"
)

// ErrParseRejected marks raw input the registry must not install.
var ErrParseRejected = errors.New("package rejected")

func rejectf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrParseRejected, fmt.Sprintf(format, args...))
}

// Builder converts raw packages into wired snapshots.
type Builder struct {
	trust     TrustPolicy
	collector CertificateCollector
	logger    *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithTrustPolicy sets the fake-signature entitlement policy.
func WithTrustPolicy(policy TrustPolicy) Option {
	return func(b *Builder) {
		b.trust = policy
	}
}

// WithCollector sets the certificate collector.
func WithCollector(collector CertificateCollector) Option {
	return func(b *Builder) {
		b.collector = collector
	}
}

// NewBuilder creates a builder. Without options every entitled package may
// use a fake signature and certificates come from the raw package.
func NewBuilder(logger *zap.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{
		trust:     TrustAll{},
		collector: DeclaredCertificates{},
		logger:    logger.Named("builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build normalizes raw into a snapshot. The result shares no memory with raw.
func (b *Builder) Build(raw *manifest.Package) (*Package, error) {
	if raw == nil {
		return nil, rejectf("nil package")
	}
	name := raw.PackageName
	if err := paths.ValidatePackageName(name); err != nil {
		return nil, rejectf("%v", err)
	}
	if app := raw.Application.PackageName; app != "" && app != name {
		return nil, rejectf("application package %q does not match %q", app, name)
	}

	appMeta, err := raw.MetaData.Normalize()
	if err != nil {
		return nil, rejectf("%s: %v", name, err)
	}

	p := &Package{
		PackageName:          name,
		VersionCode:          raw.VersionCode,
		VersionName:          raw.VersionName,
		SharedUserID:         raw.SharedUserID,
		SharedUserLabel:      raw.SharedUserLabel,
		PreferredOrder:       raw.PreferredOrder,
		Application:          raw.Application.Clone(),
		RequestedPermissions: dedupe(raw.RequestedPermissions),
		ProtectedBroadcasts:  pm.CloneStrings(raw.ProtectedBroadcasts),
		UsesLibraries:        pm.CloneStrings(raw.UsesLibraries),
		MetaData:             appMeta,
	}
	p.Application.PackageName = name
	if raw.ConfigPreferences != nil {
		p.ConfigPreferences = append([]pm.ConfigurationInfo{}, raw.ConfigPreferences...)
	}
	if raw.ReqFeatures != nil {
		p.ReqFeatures = append([]pm.FeatureInfo{}, raw.ReqFeatures...)
	}

	if err := b.buildComponents(p, raw); err != nil {
		return nil, err
	}

	sigs, err := b.signatures(raw, appMeta)
	if err != nil {
		return nil, err
	}
	p.Signatures = sigs

	p.Wire()
	return p, nil
}

func (b *Builder) buildComponents(p *Package, raw *manifest.Package) error {
	name := p.PackageName

	for i := range raw.Activities {
		a, err := newActivity(name, KindActivity, i, &raw.Activities[i])
		if err != nil {
			return err
		}
		p.Activities = append(p.Activities, a)
	}
	for i := range raw.Receivers {
		a, err := newActivity(name, KindReceiver, i, &raw.Receivers[i])
		if err != nil {
			return err
		}
		p.Receivers = append(p.Receivers, a)
	}
	for i := range raw.Services {
		s := &raw.Services[i]
		c, err := newComponent(name, KindService, i, s.Name, s.MetaData)
		if err != nil {
			return err
		}
		info := s.ServiceInfo
		info.PackageName = name
		p.Services = append(p.Services, &Service{Component: c, Info: info, IntentFilters: newFilters(s.IntentFilters)})
	}
	for i := range raw.Providers {
		pr := &raw.Providers[i]
		c, err := newComponent(name, KindProvider, i, pr.Name, pr.MetaData)
		if err != nil {
			return err
		}
		info := pr.ProviderInfo.Clone()
		info.PackageName = name
		p.Providers = append(p.Providers, &Provider{Component: c, Info: info, IntentFilters: newFilters(pr.IntentFilters)})
	}
	for i := range raw.Instrumentation {
		in := &raw.Instrumentation[i]
		c, err := newComponent(name, KindInstrumentation, i, in.Name, in.MetaData)
		if err != nil {
			return err
		}
		info := in.InstrumentationInfo
		info.PackageName = name
		p.Instrumentation = append(p.Instrumentation, &Instrumentation{Component: c, Info: info})
	}
	for i := range raw.Permissions {
		perm := &raw.Permissions[i]
		c, err := newComponent(name, KindPermission, i, perm.Name, perm.MetaData)
		if err != nil {
			return err
		}
		info := perm.PermissionInfo
		info.PackageName = name
		p.Permissions = append(p.Permissions, &Permission{Component: c, Info: info})
	}
	for i := range raw.PermissionGroups {
		g := &raw.PermissionGroups[i]
		c, err := newComponent(name, KindPermissionGroup, i, g.Name, g.MetaData)
		if err != nil {
			return err
		}
		info := g.PermissionGroupInfo
		info.PackageName = name
		p.PermissionGroups = append(p.PermissionGroups, &PermissionGroup{Component: c, Info: info})
	}
	return nil
}

func newComponent(pkg string, kind ComponentKind, index int, className string, meta pm.Bundle) (Component, error) {
	if className == "" {
		return Component{}, rejectf("%s: %s %d has no class name", pkg, kind, index)
	}
	normalized, err := meta.Normalize()
	if err != nil {
		return Component{}, rejectf("%s: %s %s: %v", pkg, kind, className, err)
	}
	return Component{ClassName: className, MetaData: normalized}, nil
}

func newActivity(pkg string, kind ComponentKind, index int, raw *manifest.Activity) (*Activity, error) {
	c, err := newComponent(pkg, kind, index, raw.Name, raw.MetaData)
	if err != nil {
		return nil, err
	}
	info := raw.ActivityInfo
	info.PackageName = pkg
	return &Activity{Component: c, Info: info, IntentFilters: newFilters(raw.IntentFilters)}, nil
}

func newFilters(raw []pm.IntentFilter) []*IntentFilter {
	if raw == nil {
		return nil
	}
	out := make([]*IntentFilter, len(raw))
	for i := range raw {
		out[i] = &IntentFilter{IntentFilter: raw[i].Clone()}
	}
	return out
}

// signatures applies the fake-signature entitlement, then falls back to
// certificate collection. Collection failures leave the list nil unless the
// collector rejects the package outright.
func (b *Builder) signatures(raw *manifest.Package, meta pm.Bundle) ([]pm.Signature, error) {
	declared, hasDeclared := meta.GetString(FakeSignatureMetaKey)
	if hasDeclared && raw.RequestsPermission(FakeSignaturePermission) {
		if b.trust.AllowFakeSignature(raw.PackageName) {
			sig, err := pm.ParseSignature(declared)
			if err != nil {
				return nil, rejectf("%s: %s: %v", raw.PackageName, FakeSignatureMetaKey, err)
			}
			b.logger.Debug("Using fake signature", zap.String("package", raw.PackageName))
			return []pm.Signature{sig}, nil
		}
		b.logger.Warn("Fake signature not trusted, collecting certificates",
			zap.String("package", raw.PackageName))
	}

	sigs, err := b.collector.Collect(raw)
	if errors.Is(err, ErrParseRejected) {
		return nil, err
	}
	if err != nil {
		b.logger.Warn("Certificate collection failed, signatures deferred",
			zap.String("package", raw.PackageName),
			zap.Error(err))
		return nil, nil
	}
	return pm.CloneSignatures(sigs), nil
}

func dedupe(list []string) []string {
	if list == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
