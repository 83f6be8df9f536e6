package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/manifest"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pkgcache"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
)

// RestoreStats summarizes a Restore run.
type RestoreStats struct {
	Loaded  int `json:"loaded"`
	Rebuilt int `json:"rebuilt"`
	Failed  int `json:"failed"`
}

// Restore publishes every package recorded in the settings store. A
// descriptor written by another format version, or missing or corrupt, is
// rebuilt from the stored manifest and saved again. Packages that cannot
// be restored are logged and skipped.
func (m *Manager) Restore(ctx context.Context) (RestoreStats, error) {
	span, ctx := m.deps.Tracer.StartSpan(ctx, "registry.restore")
	stats, err := m.restore(ctx)
	span.SetTag("restored", strconv.Itoa(stats.Loaded+stats.Rebuilt))
	m.deps.Tracer.End(span, err)
	return stats, err
}

func (m *Manager) restore(ctx context.Context) (RestoreStats, error) {
	var stats RestoreStats

	records, err := m.deps.Settings.List()
	if err != nil {
		return stats, fmt.Errorf("failed to list install records: %w", err)
	}

	known := make(map[string]bool, len(records))
	for _, ps := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		known[ps.PackageName] = true
		log := m.logger.With(zap.String("package", ps.PackageName))

		p, rebuilt, err := m.loadSnapshot(ps.PackageName)
		if err != nil {
			log.Error("Failed to restore package", zap.Error(err))
			stats.Failed++
			continue
		}

		states, err := m.deps.Settings.UserStates(ps.PackageName)
		if err != nil {
			log.Error("Failed to load user states", zap.Error(err))
			stats.Failed++
			continue
		}

		m.gen.PrepareBase(p, ps)
		m.publish(&entry{pkg: p, setting: ps, states: states, sigsLoaded: p.Signatures != nil})
		if rebuilt {
			stats.Rebuilt++
		} else {
			stats.Loaded++
		}
	}

	if names, err := m.deps.Cache.List(); err == nil {
		for _, name := range names {
			if !known[name] {
				m.logger.Warn("Descriptor without install record", zap.String("package", name))
			}
		}
	}

	m.logger.Info("Registry restored",
		zap.Int("loaded", stats.Loaded),
		zap.Int("rebuilt", stats.Rebuilt),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// loadSnapshot reads the descriptor of name, falling back to a rebuild
// from the stored manifest.
func (m *Manager) loadSnapshot(name string) (*snapshot.Package, bool, error) {
	p, err := m.deps.Cache.Load(name)
	if err == nil {
		m.deps.Metrics.RecordCacheLoad("ok")
		m.deps.Metrics.RecordRestore("cache")
		return p, false, nil
	}

	missing := errors.Is(err, fs.ErrNotExist)
	switch {
	case missing:
		m.deps.Metrics.RecordCacheLoad("missing")
	case pkgcache.NeedsRebuild(err):
		m.deps.Metrics.RecordCacheLoad("stale")
	default:
		m.deps.Metrics.RecordCacheLoad("error")
		return nil, false, err
	}
	m.logger.Info("Rebuilding descriptor", zap.String("package", name), zap.Bool("missing", missing), zap.Error(err))

	raw, err := manifest.Load(m.deps.Layout.ManifestFile(name))
	if err != nil {
		return nil, false, fmt.Errorf("failed to rebuild %s: %w", name, err)
	}
	if raw.PackageName != name {
		return nil, false, fmt.Errorf("failed to rebuild %s: manifest names %q", name, raw.PackageName)
	}
	p, err = m.deps.Builder.Build(raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to rebuild %s: %w", name, err)
	}
	if err := m.deps.Cache.Save(p); err != nil {
		m.deps.Metrics.RecordCacheSave("error")
		return nil, false, err
	}
	m.deps.Metrics.RecordCacheSave("ok")
	m.deps.Metrics.RecordRestore("manifest")
	return p, true, nil
}

