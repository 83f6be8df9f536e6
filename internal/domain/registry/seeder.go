package registry

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/manifest"
)

// manifestPattern selects the manifest files a seed directory may hold.
const manifestPattern = "**/*.{yaml,yml,json}"

// SeedStats summarizes a seeding run.
type SeedStats struct {
	Installed int `json:"installed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Seeder installs prebuilt package manifests from a directory on startup.
type Seeder struct {
	manager *Manager
	dir     string
	opts    InstallOptions
	logger  *zap.Logger
}

// NewSeeder creates a seeder for dir. Every package is installed with opts.
func NewSeeder(manager *Manager, dir string, opts InstallOptions) *Seeder {
	return &Seeder{
		manager: manager,
		dir:     dir,
		opts:    opts,
		logger:  manager.logger.Named("seeder"),
	}
}

// Seed installs every manifest under the seed directory. A package that
// is already installed at the same or a newer version code is skipped. A
// missing directory is not an error.
func (s *Seeder) Seed(ctx context.Context) (SeedStats, error) {
	var stats SeedStats
	if s.dir == "" {
		return stats, nil
	}
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Seed directory not found", zap.String("dir", s.dir))
		return stats, nil
	}

	s.logger.Info("Seeding packages", zap.String("dir", s.dir))
	matches, err := doublestar.Glob(os.DirFS(s.dir), manifestPattern)
	if err != nil {
		return stats, err
	}

	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		path := filepath.Join(s.dir, filepath.FromSlash(rel))

		installed, err := s.seedOne(ctx, path)
		switch {
		case err != nil:
			s.logger.Warn("Failed to seed package", zap.String("file", rel), zap.Error(err))
			stats.Failed++
		case installed:
			stats.Installed++
		default:
			stats.Skipped++
		}
	}

	s.logger.Info("Seeding complete",
		zap.Int("installed", stats.Installed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

func (s *Seeder) seedOne(ctx context.Context, path string) (bool, error) {
	raw, err := manifest.Load(path)
	if err != nil {
		return false, err
	}

	if e, ok := s.manager.entry(raw.PackageName); ok && e.pkg.VersionCode >= raw.VersionCode {
		s.logger.Debug("Package up to date",
			zap.String("package", raw.PackageName),
			zap.Int32("versionCode", e.pkg.VersionCode))
		return false, nil
	}

	if _, err := s.manager.Install(ctx, raw, s.opts); err != nil {
		return false, err
	}
	return true, nil
}
