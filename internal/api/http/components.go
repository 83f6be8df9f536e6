package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
)

// serveComponent answers a per-class view lookup of the registry.
func serveComponent[T any](h *Handlers, c *gin.Context, what string, lookup func(pkg, className string, flags pm.QueryFlags, userID, callerPID int) (T, bool)) {
	q, err := h.parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	info, ok := lookup(c.Param("name"), c.Param("class"), q.flags, q.user, q.pid)
	if !ok {
		notFound(c, what)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetActivity returns the view of an activity.
func (h *Handlers) GetActivity(c *gin.Context) {
	serveComponent(h, c, "activity", h.registry.Activity)
}

// GetReceiver returns the view of a receiver.
func (h *Handlers) GetReceiver(c *gin.Context) {
	serveComponent(h, c, "receiver", h.registry.Receiver)
}

// GetService returns the view of a service.
func (h *Handlers) GetService(c *gin.Context) {
	serveComponent(h, c, "service", h.registry.Service)
}

// GetProvider returns the view of a content provider.
func (h *Handlers) GetProvider(c *gin.Context) {
	serveComponent(h, c, "provider", h.registry.Provider)
}

// GetInstrumentation returns the view of an instrumentation.
func (h *Handlers) GetInstrumentation(c *gin.Context) {
	serveComponent(h, c, "instrumentation", h.registry.Instrumentation)
}

// ResolveProvider returns the provider serving a content authority.
func (h *Handlers) ResolveProvider(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	info, ok := h.registry.ProviderByAuthority(c.Param("authority"), q.flags, q.user, q.pid)
	if !ok {
		notFound(c, "provider")
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetPermission returns a declared permission.
func (h *Handlers) GetPermission(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	info, ok := h.registry.Permission(c.Param("name"), q.flags, q.user)
	if !ok {
		notFound(c, "permission")
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetPermissionGroup returns a declared permission group.
func (h *Handlers) GetPermissionGroup(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	info, ok := h.registry.PermissionGroup(c.Param("name"), q.flags, q.user)
	if !ok {
		notFound(c, "permission group")
		return
	}
	c.JSON(http.StatusOK, info)
}
