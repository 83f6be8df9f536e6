package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/host"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/manifest"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pkgcache"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/setting"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/signature"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/view"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
)

// ErrNotInstalled is returned for operations on unknown packages.
var ErrNotInstalled = errors.New("package not installed")

// Dependencies are the collaborators of a Manager.
type Dependencies struct {
	Layout     paths.Layout
	Builder    *snapshot.Builder
	Cache      *pkgcache.Cache
	Signatures *signature.Store
	Settings   *setting.Store
	Locks      *storage.KeyedMutex
	Host       host.PackageManager
	Processes  view.ProcessFamily
	Policy     view.Policy
	Metrics    *monitoring.Metrics
	Logger     *zap.Logger
	Tracer     *tracing.Tracer // optional

	// ViewOptions are passed to the view generator.
	ViewOptions []view.Option
}

// entry is one published package. The snapshot is immutable after publish
// except for its signer list, which mu guards.
type entry struct {
	pkg     *snapshot.Package
	setting *setting.PackageSetting

	mu         sync.RWMutex
	states     map[int]setting.UserState
	sigsLoaded bool
}

func (e *entry) state(userID int) setting.UserState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.states[userID]
}

// Manager is the in-memory registry of installed packages.
type Manager struct {
	deps   Dependencies
	gen    *view.Generator
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewManager creates a registry manager. Call Restore to load the packages
// installed by earlier runs.
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Locks == nil {
		deps.Locks = storage.NewKeyedMutex()
	}
	if deps.Host == nil {
		deps.Host = host.NewStaticPackageManager()
	}
	if deps.Processes == nil {
		deps.Processes = host.NewProcessTable()
	}
	if deps.Policy == nil {
		deps.Policy = config.DefaultPolicy()
	}
	if deps.Builder == nil {
		deps.Builder = snapshot.NewBuilder(deps.Logger)
	}

	m := &Manager{
		deps:    deps,
		logger:  deps.Logger.Named("registry"),
		entries: make(map[string]*entry),
	}

	opts := []view.Option{
		view.WithSignatureSource(m),
		view.WithMetrics(deps.Metrics),
		view.WithLogger(deps.Logger),
	}
	m.gen = view.NewGenerator(m, deps.Host, deps.Processes, deps.Policy, append(opts, deps.ViewOptions...)...)
	return m
}

// Generator returns the view generator bound to this registry.
func (m *Manager) Generator() *view.Generator {
	return m.gen
}

// InstallRecord implements view.RecordSource.
func (m *Manager) InstallRecord(name string) (view.InstallRecord, bool) {
	e, ok := m.entry(name)
	if !ok {
		return nil, false
	}
	return e.setting, true
}

// Signatures implements view.SignatureSource. A snapshot published without
// signers loads them from the signature store once.
func (m *Manager) Signatures(p *snapshot.Package) []pm.Signature {
	e, ok := m.entry(p.PackageName)
	if !ok || e.pkg != p {
		return p.Signatures
	}

	e.mu.RLock()
	if p.Signatures != nil || e.sigsLoaded {
		sigs := p.Signatures
		e.mu.RUnlock()
		return sigs
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if p.Signatures != nil || e.sigsLoaded {
		return p.Signatures
	}

	sigs, found, err := m.deps.Signatures.Load(p.PackageName)
	switch {
	case err != nil:
		m.logger.Warn("Failed to load signatures", zap.String("package", p.PackageName), zap.Error(err))
		m.deps.Metrics.RecordSignatureLoad("error")
	case !found:
		m.deps.Metrics.RecordSignatureLoad("missing")
	default:
		m.deps.Metrics.RecordSignatureLoad("found")
		p.Signatures = sigs
	}
	e.sigsLoaded = true
	return p.Signatures
}

func (m *Manager) entry(name string) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	return e, ok
}

func (m *Manager) publish(e *entry) {
	m.mu.Lock()
	m.entries[e.pkg.PackageName] = e
	n := len(m.entries)
	m.mu.Unlock()
	m.deps.Metrics.SetPackages(n)
}

// InstallOptions control how a package is installed.
type InstallOptions struct {
	Run64Bit  bool
	NotCopied bool
	// Users the package is made visible to. Empty means user 0.
	Users []int
}

// Install builds, persists and publishes raw. Reinstalling a package keeps
// its app id and first install time.
func (m *Manager) Install(ctx context.Context, raw *manifest.Package, opts InstallOptions) (*setting.PackageSetting, error) {
	span, ctx := m.deps.Tracer.StartSpan(ctx, "registry.install")
	span.SetTag("package", raw.PackageName)
	ps, err := m.install(ctx, raw, opts)
	m.deps.Tracer.End(span, err)
	return ps, err
}

func (m *Manager) install(ctx context.Context, raw *manifest.Package, opts InstallOptions) (*setting.PackageSetting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := id.NewTransactionID()

	p, err := m.deps.Builder.Build(raw)
	if err != nil {
		m.deps.Metrics.RecordInstall("rejected")
		return nil, err
	}
	name := p.PackageName
	log := m.logger.With(zap.String("txn", txn.String()), zap.String("package", name))

	unlock := m.deps.Locks.Lock("install:" + name)
	defer unlock()

	ps, err := m.installRecord(p, opts)
	if err != nil {
		m.deps.Metrics.RecordInstall("error")
		return nil, err
	}

	if err := m.persist(raw, p); err != nil {
		m.deps.Metrics.RecordInstall("error")
		return nil, err
	}
	if err := m.deps.Settings.Put(ps); err != nil {
		m.deps.Metrics.RecordInstall("error")
		return nil, err
	}

	users := opts.Users
	if len(users) == 0 {
		users = []int{0}
	}
	states, err := m.deps.Settings.UserStates(name)
	if err != nil {
		m.deps.Metrics.RecordInstall("error")
		return nil, err
	}
	for _, u := range users {
		st := states[u]
		st.Installed = true
		if err := m.deps.Settings.SetUserState(name, u, st); err != nil {
			m.deps.Metrics.RecordInstall("error")
			return nil, err
		}
		states[u] = st
	}

	m.gen.PrepareBase(p, ps)
	m.publish(&entry{pkg: p, setting: ps, states: states, sigsLoaded: p.Signatures != nil})
	m.deps.Metrics.RecordInstall("ok")

	log.Info("Package installed",
		zap.Int32("versionCode", p.VersionCode),
		zap.Int32("appId", ps.AppID),
		zap.Bool("run64", ps.Run64Bit))
	return ps, nil
}

// installRecord returns the updated record of a reinstall or a fresh one.
func (m *Manager) installRecord(p *snapshot.Package, opts InstallOptions) (*setting.PackageSetting, error) {
	// the settings store keeps milliseconds
	now := time.Now().Truncate(time.Millisecond)
	existing, err := m.deps.Settings.Get(p.PackageName)
	switch {
	case err == nil:
		existing.SharedUserID = p.SharedUserID
		existing.Run64Bit = opts.Run64Bit
		existing.NotCopied = opts.NotCopied
		existing.LastUpdateTime = now
		return existing, nil
	case errors.Is(err, setting.ErrNotFound):
	default:
		return nil, err
	}

	appID, err := m.deps.Settings.AllocateAppID(p.SharedUserID)
	if err != nil {
		return nil, err
	}
	ps := &setting.PackageSetting{
		PackageName:      p.PackageName,
		AppID:            appID,
		SharedUserID:     p.SharedUserID,
		Run64Bit:         opts.Run64Bit,
		NotCopied:        opts.NotCopied,
		FirstInstallTime: now,
		LastUpdateTime:   now,
	}
	return ps.Bind(m.deps.Layout), nil
}

// persist writes the descriptor, the signer list and the raw manifest the
// descriptor can be rebuilt from.
func (m *Manager) persist(raw *manifest.Package, p *snapshot.Package) error {
	if err := m.deps.Cache.Save(p); err != nil {
		m.deps.Metrics.RecordCacheSave("error")
		return err
	}
	m.deps.Metrics.RecordCacheSave("ok")

	if p.Signatures != nil {
		if err := m.deps.Signatures.Save(p.PackageName, p.Signatures); err != nil {
			return err
		}
	}

	data, err := manifest.Encode(raw, manifest.FormatYAML)
	if err != nil {
		return err
	}
	if err := storage.AtomicWriteFile(m.deps.Layout.ManifestFile(p.PackageName), data, 0o644); err != nil {
		return fmt.Errorf("failed to save manifest %s: %w", p.PackageName, err)
	}
	return nil
}

// Remove uninstalls a package for every user and deletes its files.
func (m *Manager) Remove(ctx context.Context, name string) error {
	span, ctx := m.deps.Tracer.StartSpan(ctx, "registry.remove")
	span.SetTag("package", name)
	err := m.remove(ctx, name)
	m.deps.Tracer.End(span, err)
	return err
}

func (m *Manager) remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := m.deps.Locks.Lock("install:" + name)
	defer unlock()

	m.mu.Lock()
	_, ok := m.entries[name]
	delete(m.entries, name)
	n := len(m.entries)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	m.deps.Metrics.SetPackages(n)

	if err := m.deps.Settings.Delete(name); err != nil {
		return err
	}
	if err := m.deps.Cache.Delete(name); err != nil {
		m.logger.Warn("Failed to delete descriptor", zap.String("package", name), zap.Error(err))
	}
	if err := m.deps.Signatures.Delete(name); err != nil {
		m.logger.Warn("Failed to delete signatures", zap.String("package", name), zap.Error(err))
	}
	for _, is64 := range []bool{false, true} {
		if err := os.RemoveAll(m.deps.Layout.AppPackageDir(name, is64)); err != nil {
			m.logger.Warn("Failed to delete package directory", zap.String("package", name), zap.Error(err))
		}
	}

	m.deps.Metrics.IncRemovals()
	m.logger.Info("Package removed", zap.String("package", name))
	return nil
}

// SetUserState changes the visibility of a package for one user.
func (m *Manager) SetUserState(name string, userID int, state setting.UserState) error {
	e, ok := m.entry(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	if err := m.deps.Settings.SetUserState(name, userID, state); err != nil {
		return err
	}
	e.mu.Lock()
	e.states[userID] = state
	e.mu.Unlock()
	return nil
}

// UserState returns the visibility of a package for one user.
func (m *Manager) UserState(name string, userID int) (setting.UserState, bool) {
	e, ok := m.entry(name)
	if !ok {
		return setting.UserState{}, false
	}
	return e.state(userID), true
}

// Setting returns a copy of the install record of a package.
func (m *Manager) Setting(name string) (*setting.PackageSetting, bool) {
	e, ok := m.entry(name)
	if !ok {
		return nil, false
	}
	ps := *e.setting
	return &ps, true
}

// Exists reports whether a package is published.
func (m *Manager) Exists(name string) bool {
	_, ok := m.entry(name)
	return ok
}

// List returns the names of all published packages in order.
func (m *Manager) List() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Stats describes the registry contents.
type Stats struct {
	TotalPackages int            `json:"total_packages"`
	Components    map[string]int `json:"components"`
	LastUpdated   *time.Time     `json:"last_updated,omitempty"`
}

// Stats returns registry statistics
func (m *Manager) Stats() Stats {
	stats := Stats{Components: make(map[string]int)}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		p := e.pkg
		stats.TotalPackages++
		stats.Components[snapshot.KindActivity.String()] += len(p.Activities)
		stats.Components[snapshot.KindReceiver.String()] += len(p.Receivers)
		stats.Components[snapshot.KindService.String()] += len(p.Services)
		stats.Components[snapshot.KindProvider.String()] += len(p.Providers)
		stats.Components[snapshot.KindInstrumentation.String()] += len(p.Instrumentation)
		stats.Components[snapshot.KindPermission.String()] += len(p.Permissions)
		stats.Components[snapshot.KindPermissionGroup.String()] += len(p.PermissionGroups)

		updated := e.setting.LastUpdateTime
		if stats.LastUpdated == nil || updated.After(*stats.LastUpdated) {
			stats.LastUpdated = &updated
		}
	}
	return stats
}

// authorities splits a provider's authority list.
func authorities(s string) []string {
	return strings.Split(s, ";")
}
