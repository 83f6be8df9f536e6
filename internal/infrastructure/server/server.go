package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httpapi "github.com/GriffinCanCode/AgentOS/vpm/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/host"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pkgcache"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/setting"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/signature"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/view"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/archive"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/paths"
)

const readHeaderTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router    *gin.Engine
	http      *http.Server
	registry  *registry.Manager
	settings  *setting.Store
	processes *host.ProcessTable
	archiver  *archive.Archiver
	tracer    *tracing.Tracer
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics
	gatherer  prometheus.Gatherer
}

// NewServer wires the package registry from cfg, restores the installed
// packages and seeds the prebuilt ones.
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing package registry",
		zap.String("root", cfg.Storage.Root),
		zap.Int("platform_sdk", cfg.Engine.PlatformSDK),
		zap.String("host_abi", cfg.Engine.HostABI),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)
	tracer := tracing.New("vpm", logger.Logger)

	policy, err := config.LoadPolicy(cfg.Storage.PolicyFile)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	layout := paths.NewLayout(cfg.Storage.Root)
	for _, dir := range layout.StandardDirectories() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	hostPM, err := loadHostPackages(cfg.Storage.HostPackagesFile)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	settings, err := setting.New(layout.SettingsDB(), layout)
	if err != nil {
		tracer.Close()
		return nil, err
	}
	if err := settings.CreateSchema(); err != nil {
		settings.Close()
		tracer.Close()
		return nil, err
	}

	locks := storage.NewKeyedMutex()
	processes := host.NewProcessTable()
	manager := registry.NewManager(registry.Dependencies{
		Layout:     layout,
		Builder:    snapshot.NewBuilder(logger.Logger, snapshot.WithTrustPolicy(policy)),
		Cache:      pkgcache.New(layout, locks, logger.Logger),
		Signatures: signature.NewStore(layout, locks, logger.Logger),
		Settings:   settings,
		Locks:      locks,
		Host:       hostPM,
		Processes:  processes,
		Policy:     policy,
		Metrics:    metrics,
		Logger:     logger.Logger,
		Tracer:     tracer,
		ViewOptions: []view.Option{
			view.WithPlatformSDK(cfg.Engine.PlatformSDK),
			view.WithHostABI(cfg.Engine.HostABI),
		},
	})

	ctx := context.Background()
	stats, err := manager.Restore(ctx)
	if err != nil {
		settings.Close()
		tracer.Close()
		return nil, fmt.Errorf("failed to restore packages: %w", err)
	}
	logger.Info("Restored packages",
		zap.Int("loaded", stats.Loaded),
		zap.Int("rebuilt", stats.Rebuilt),
		zap.Int("failed", stats.Failed),
	)

	if cfg.Storage.SeedDir != "" {
		seeded, err := registry.NewSeeder(manager, cfg.Storage.SeedDir, registry.InstallOptions{}).Seed(ctx)
		if err != nil {
			logger.Warn("Failed to seed prebuilt packages", zap.Error(err))
		} else {
			logger.Info("Seeded prebuilt packages",
				zap.Int("installed", seeded.Installed),
				zap.Int("skipped", seeded.Skipped),
				zap.Int("failed", seeded.Failed),
			)
		}
	}

	var archiver *archive.Archiver
	if cfg.Storage.BackupDir != "" {
		archiver = archive.New(cfg.Storage.Root, cfg.Storage.BackupDir, logger.Logger)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(middleware.AccessLog(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := httpapi.NewHandlers(manager, archiver, processes, cfg.Engine.DefaultUser, logger.Component("api"))
	httpapi.RegisterRoutes(router, handlers)
	router.GET("/metrics", gin.WrapH(monitoring.Handler(reg)))

	logger.Info("Server initialized successfully", zap.Int("packages", len(manager.List())))

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		registry:  manager,
		settings:  settings,
		processes: processes,
		archiver:  archiver,
		tracer:    tracer,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
		gatherer:  reg,
	}, nil
}

func loadHostPackages(path string) (*host.StaticPackageManager, error) {
	if path == "" {
		return host.NewStaticPackageManager(), nil
	}
	return host.LoadStaticPackageManager(path)
}

// Router returns the HTTP handler.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Registry returns the package registry.
func (s *Server) Registry() *registry.Manager {
	return s.registry
}

// Processes returns the table of pids running virtual apps.
func (s *Server) Processes() *host.ProcessTable {
	return s.processes
}

// Run serves HTTP until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and
// releases the stores.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	err := s.http.Shutdown(ctx)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close releases the stores without stopping the listener.
func (s *Server) Close() error {
	s.tracer.Close()
	err := s.settings.Close()
	if err != nil {
		s.logger.Error("Failed to close settings store", zap.Error(err))
	}
	_ = s.logger.Sync()
	return err
}
