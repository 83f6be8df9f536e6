package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// processRequest is the body of PUT /processes/:pid.
type processRequest struct {
	Package string `json:"package" binding:"required"`
}

func pidParam(c *gin.Context) (int, error) {
	pid, err := strconv.Atoi(c.Param("pid"))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid: %q", c.Param("pid"))
	}
	return pid, nil
}

// GetProcess reports which package a pid runs.
func (h *Handlers) GetProcess(c *gin.Context) {
	pid, err := pidParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	pkg, ok := h.processes.PackageOf(pid)
	if !ok {
		notFound(c, "process")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pid": pid, "package": pkg})
}

// RegisterProcess marks a pid as running an installed package, making it
// part of the virtual app process family.
func (h *Handlers) RegisterProcess(c *gin.Context) {
	pid, err := pidParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.registry.Exists(req.Package) {
		notFound(c, "package")
		return
	}

	h.processes.Register(pid, req.Package)
	h.logger.Debug("Process registered", zap.Int("pid", pid), zap.String("package", req.Package))
	c.JSON(http.StatusOK, gin.H{"pid": pid, "package": req.Package})
}

// UnregisterProcess drops a pid from the process family.
func (h *Handlers) UnregisterProcess(c *gin.Context) {
	pid, err := pidParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.processes.PackageOf(pid); !ok {
		notFound(c, "process")
		return
	}

	h.processes.Unregister(pid)
	h.logger.Debug("Process unregistered", zap.Int("pid", pid))
	c.JSON(http.StatusOK, gin.H{"removed": true, "pid": pid})
}
