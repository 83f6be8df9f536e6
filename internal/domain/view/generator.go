package view

import (
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/host"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/setting"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/monitoring"
)

// Defaults used when no option overrides them
const (
	DefaultPlatformSDK = 28
	DefaultHostABI     = "armeabi-v7a"
)

// Generator builds views. It holds no per-package state apart from the
// shared library memo and is safe for concurrent use.
type Generator struct {
	records    RecordSource
	host       host.PackageManager
	processes  ProcessFamily
	policy     Policy
	signatures SignatureSource
	sharedLibs *SharedLibCache
	metrics    *monitoring.Metrics
	logger     *zap.Logger

	sdk     int
	hostABI string
	gids    map[string][]int32
}

// Option configures a Generator.
type Option func(*Generator)

// WithPlatformSDK sets the platform level views are generated for.
func WithPlatformSDK(sdk int) Option {
	return func(g *Generator) { g.sdk = sdk }
}

// WithHostABI sets the primary ABI of the host process.
func WithHostABI(abi string) Option {
	return func(g *Generator) { g.hostABI = abi }
}

// WithSignatureSource sets where PackageInfo gets signer lists from.
func WithSignatureSource(src SignatureSource) Option {
	return func(g *Generator) { g.signatures = src }
}

// WithSharedLibCache shares a memo between generators.
func WithSharedLibCache(cache *SharedLibCache) Option {
	return func(g *Generator) { g.sharedLibs = cache }
}

// WithMetrics records view counts and latency.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) { g.logger = logger.Named("view") }
}

// NewGenerator creates a generator.
func NewGenerator(records RecordSource, hostPM host.PackageManager, processes ProcessFamily, policy Policy, opts ...Option) *Generator {
	g := &Generator{
		records:    records,
		host:       hostPM,
		processes:  processes,
		policy:     policy,
		signatures: snapshotSignatures{},
		sharedLibs: NewSharedLibCache(),
		logger:     zap.NewNop(),
		sdk:        DefaultPlatformSDK,
		hostABI:    DefaultHostABI,
		gids:       permissionGIDs,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PlatformSDK returns the platform level views are generated for.
func (g *Generator) PlatformSDK() int {
	return g.sdk
}

// PrepareBase finalizes the application descriptor of a freshly built or
// loaded snapshot. It must run before the snapshot is published.
func (g *Generator) PrepareBase(p *snapshot.Package, rec InstallRecord) {
	ai := &p.Application
	ai.Flags |= pm.FlagHasCode
	if ai.ProcessName == "" {
		ai.ProcessName = p.PackageName
	}
	ai.Enabled = true
	ai.UID = rec.ApplicationID()
	ai.ClassName = FixClassName(p.PackageName, ai.ClassName)
	ai.PrimaryCPUABI = g.hostABI

	if rec.IsNotCopied() {
		files, ok := g.sharedLibs.Get(p.PackageName)
		if !ok {
			outside, found := g.host.Lookup(p.PackageName)
			if !found {
				g.logger.Warn("Host package missing for uncopied install",
					zap.String("package", p.PackageName))
				return
			}
			g.sharedLibs.Store(p.PackageName, outside.SharedLibraryFiles)
			files, _ = g.sharedLibs.Get(p.PackageName)
		}
		ai.SharedLibraryFiles = files
	}
}

// FixClassName qualifies a relative class name with its package.
func FixClassName(pkg, className string) string {
	switch {
	case className == "":
		return ""
	case className[0] == '.':
		return pkg + className
	case !strings.Contains(className, "."):
		return pkg + "." + className
	default:
		return className
	}
}

// visible reports whether a view may be produced for the given state.
func visible(state setting.UserState, flags pm.QueryFlags) bool {
	return state.Visible() || flags.Has(pm.GetUninstalledPackages)
}

// compute derives the per-request fields of the application view of p.
func (g *Generator) compute(p *snapshot.Package, rec InstallRecord, flags pm.QueryFlags, userID, callerPID int, out bool) computed {
	pkg := p.PackageName
	is64 := rec.Is64BitEligible() && g.processes.IsAppPID(callerPID)

	outside, hostPresent := g.host.Lookup(pkg)
	if outside == nil {
		hostPresent = false
	}

	c := computed{
		is64: is64,
		uid:  setting.UserUID(userID, rec.ApplicationID()),
		sdk:  g.sdk,
	}

	c.sourceDir = rec.ResourcePath(is64)
	if rec.IsNotCopied() {
		if hostPresent && outside.PublicSourceDir != "" {
			c.sourceDir = outside.PublicSourceDir
		} else {
			g.logger.Warn("Host source missing for uncopied install, using virtual path",
				zap.String("package", pkg), zap.String("source_dir", c.sourceDir))
		}
	}

	effective := DecideLib(g.policy.LibPolicy(pkg), is64, hostPresent)
	loc := locateLibs(effective, pkg, rec, outside, userID, is64)
	c.libDir = loc.dir
	c.abi = loc.abi

	c.virtualDataDir = rec.DataDirectory(userID, is64)
	c.dataDir = c.virtualDataDir
	if g.policy.UseRealDataDir(pkg) && g.policy.IORedirectEnabled() {
		if hostPresent && outside.DataDir != "" {
			c.dataDir = outside.DataDir
		} else {
			c.dataDir = "/data/data/" + pkg + "/"
		}
	}

	c.sharedLibs = p.Application.SharedLibraryFiles
	c.keepSharedLib = !out || flags.Has(pm.GetSharedLibraryFiles)

	if flags.Has(pm.GetMetaData) {
		c.metaData = p.MetaData
	}
	return c
}

// application builds the application view without metrics; component views
// share it.
func (g *Generator) application(p *snapshot.Package, flags pm.QueryFlags, state setting.UserState, userID, callerPID int, out bool) (*ApplicationInfo, bool) {
	if p == nil || !visible(state, flags) {
		return nil, false
	}
	rec, ok := g.records.InstallRecord(p.PackageName)
	if !ok {
		g.logger.Debug("No install record", zap.String("package", p.PackageName))
		return nil, false
	}
	return newApplicationInfo(&p.Application, g.compute(p, rec, flags, userID, callerPID, out)), true
}

func (g *Generator) observe(kind string) func(ok bool) {
	timer := monitoring.NewTimer(g.metrics, kind)
	return func(ok bool) {
		if ok {
			timer.Stop("ok")
			return
		}
		timer.Stop("absent")
	}
}

// Application returns the application view of p as seen from inside the
// virtual environment.
func (g *Generator) Application(p *snapshot.Package, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*ApplicationInfo, bool) {
	done := g.observe("application")
	ai, ok := g.application(p, flags, state, userID, callerPID, false)
	done(ok)
	return ai, ok
}

// ApplicationOut returns the application view handed to callers outside the
// package, such as a host process creating a package context. Shared library
// files are only reported with pm.GetSharedLibraryFiles.
func (g *Generator) ApplicationOut(p *snapshot.Package, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*ApplicationInfo, bool) {
	done := g.observe("application_out")
	ai, ok := g.application(p, flags, state, userID, callerPID, true)
	done(ok)
	return ai, ok
}

// Activity returns the view of an activity of p.
func (g *Generator) Activity(p *snapshot.Package, a *snapshot.Activity, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*ActivityInfo, bool) {
	done := g.observe("activity")
	info, ok := g.activity(p, a, flags, state, userID, callerPID)
	done(ok)
	return info, ok
}

// Receiver returns the view of a receiver of p.
func (g *Generator) Receiver(p *snapshot.Package, r *snapshot.Activity, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*ActivityInfo, bool) {
	done := g.observe("receiver")
	info, ok := g.activity(p, r, flags, state, userID, callerPID)
	done(ok)
	return info, ok
}

func (g *Generator) activity(p *snapshot.Package, a *snapshot.Activity, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*ActivityInfo, bool) {
	if a == nil {
		return nil, false
	}
	app, ok := g.application(p, flags, state, userID, callerPID, false)
	if !ok {
		return nil, false
	}
	return newActivityInfo(a, app, flags), true
}

// Service returns the view of a service of p.
func (g *Generator) Service(p *snapshot.Package, s *snapshot.Service, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*ServiceInfo, bool) {
	done := g.observe("service")
	info, ok := g.service(p, s, flags, state, userID, callerPID)
	done(ok)
	return info, ok
}

func (g *Generator) service(p *snapshot.Package, s *snapshot.Service, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*ServiceInfo, bool) {
	if s == nil {
		return nil, false
	}
	app, ok := g.application(p, flags, state, userID, callerPID, false)
	if !ok {
		return nil, false
	}
	return newServiceInfo(s, app, flags), true
}

// Provider returns the view of a content provider of p.
func (g *Generator) Provider(p *snapshot.Package, pr *snapshot.Provider, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*ProviderInfo, bool) {
	done := g.observe("provider")
	info, ok := g.provider(p, pr, flags, state, userID, callerPID)
	done(ok)
	return info, ok
}

func (g *Generator) provider(p *snapshot.Package, pr *snapshot.Provider, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*ProviderInfo, bool) {
	if pr == nil {
		return nil, false
	}
	app, ok := g.application(p, flags, state, userID, callerPID, false)
	if !ok {
		return nil, false
	}
	return newProviderInfo(pr, app, flags), true
}

// Instrumentation returns the view of an instrumentation of p.
func (g *Generator) Instrumentation(p *snapshot.Package, in *snapshot.Instrumentation, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*InstrumentationInfo, bool) {
	done := g.observe("instrumentation")
	info, ok := g.instrumentation(p, in, flags, state, userID, callerPID)
	done(ok)
	return info, ok
}

func (g *Generator) instrumentation(p *snapshot.Package, in *snapshot.Instrumentation, flags pm.QueryFlags, state setting.UserState, userID, callerPID int) (*InstrumentationInfo, bool) {
	if in == nil {
		return nil, false
	}
	app, ok := g.application(p, flags, state, userID, callerPID, false)
	if !ok {
		return nil, false
	}
	return newInstrumentationInfo(in, app, flags), true
}

// Permission returns the view of a permission declared by p.
func (g *Generator) Permission(p *snapshot.Package, perm *snapshot.Permission, flags pm.QueryFlags, state setting.UserState) (*PermissionInfo, bool) {
	done := g.observe("permission")
	if p == nil || perm == nil || !visible(state, flags) {
		done(false)
		return nil, false
	}
	done(true)
	return newPermissionInfo(perm, flags), true
}

// PermissionGroup returns the view of a permission group declared by p.
func (g *Generator) PermissionGroup(p *snapshot.Package, group *snapshot.PermissionGroup, flags pm.QueryFlags, state setting.UserState) (*PermissionGroupInfo, bool) {
	done := g.observe("permission_group")
	if p == nil || group == nil || !visible(state, flags) {
		done(false)
		return nil, false
	}
	done(true)
	return newPermissionGroupInfo(group, flags), true
}
