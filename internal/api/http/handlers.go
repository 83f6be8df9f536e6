package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/host"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/archive"
)

// Version is reported by the root endpoint.
const Version = "0.4.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	registry    *registry.Manager
	archiver    *archive.Archiver
	processes   *host.ProcessTable
	defaultUser int
	started     time.Time
	logger      *zap.Logger
}

// NewHandlers creates a new handler set. archiver may be nil, which
// disables the backup endpoints. processes must be the table the registry
// consults for caller bitness.
func NewHandlers(reg *registry.Manager, archiver *archive.Archiver, processes *host.ProcessTable, defaultUser int, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry:    reg,
		archiver:    archiver,
		processes:   processes,
		defaultUser: defaultUser,
		started:     time.Now(),
		logger:      logger.Named("api"),
	}
}

// RegisterRoutes registers every endpoint on r.
func RegisterRoutes(r gin.IRoutes, h *Handlers) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	// Packages
	r.GET("/packages", h.ListPackages)
	r.POST("/packages", h.InstallPackage)
	r.GET("/packages/:name", h.GetPackage)
	r.DELETE("/packages/:name", h.RemovePackage)
	r.GET("/packages/:name/application", h.GetApplication)
	r.GET("/packages/:name/setting", h.GetSetting)
	r.GET("/packages/:name/users/:user", h.GetUserState)
	r.PUT("/packages/:name/users/:user", h.SetUserState)

	// Components
	r.GET("/packages/:name/activities/:class", h.GetActivity)
	r.GET("/packages/:name/receivers/:class", h.GetReceiver)
	r.GET("/packages/:name/services/:class", h.GetService)
	r.GET("/packages/:name/providers/:class", h.GetProvider)
	r.GET("/packages/:name/instrumentation/:class", h.GetInstrumentation)
	r.GET("/providers/:authority", h.ResolveProvider)
	r.GET("/permissions/:name", h.GetPermission)
	r.GET("/permission-groups/:name", h.GetPermissionGroup)

	// Processes
	r.GET("/processes/:pid", h.GetProcess)
	r.PUT("/processes/:pid", h.RegisterProcess)
	r.DELETE("/processes/:pid", h.UnregisterProcess)

	// Registry
	r.GET("/registry/stats", h.Stats)

	// Backups
	r.GET("/backups", h.ListBackups)
	r.POST("/backups", h.CreateBackup)
	r.DELETE("/backups/:id", h.DeleteBackup)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "vpm",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"registry": h.registry.Stats(),
		"backups":  gin.H{"enabled": h.archiver != nil},
	})
}

// Stats returns registry statistics.
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Stats())
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

// fail maps domain errors to status codes.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, registry.ErrNotInstalled), errors.Is(err, archive.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, snapshot.ErrParseRejected):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
