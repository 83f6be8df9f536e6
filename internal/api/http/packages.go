package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/manifest"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/setting"
)

// maxManifestSize bounds install request bodies.
const maxManifestSize = 4 << 20

// ListPackages lists the packages visible to a user.
func (h *Handlers) ListPackages(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	packages := h.registry.InstalledPackages(q.flags, q.user, q.pid)
	c.JSON(http.StatusOK, gin.H{
		"packages": packages,
		"count":    len(packages),
		"user":     q.user,
	})
}

// manifestFormat picks the body format from the format query parameter or
// the content type. YAML is the default.
func manifestFormat(c *gin.Context) manifest.Format {
	switch strings.ToLower(c.Query("format")) {
	case "json":
		return manifest.FormatJSON
	case "yaml", "yml":
		return manifest.FormatYAML
	}
	if strings.Contains(c.ContentType(), "json") {
		return manifest.FormatJSON
	}
	return manifest.FormatYAML
}

// InstallPackage installs the manifest in the request body.
func (h *Handlers) InstallPackage(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxManifestSize))
	if err != nil {
		badRequest(c, fmt.Errorf("failed to read manifest: %w", err))
		return
	}
	if len(data) == 0 {
		badRequest(c, fmt.Errorf("empty manifest"))
		return
	}

	raw, err := manifest.Decode(data, manifestFormat(c))
	if err != nil {
		badRequest(c, err)
		return
	}

	users, err := parseUsers(c.Query("users"))
	if err != nil {
		badRequest(c, err)
		return
	}
	opts := registry.InstallOptions{
		Run64Bit:  c.Query("run64") == "true",
		NotCopied: c.Query("not_copied") == "true",
		Users:     users,
	}

	ps, err := h.registry.Install(c.Request.Context(), raw, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ps)
}

// GetPackage returns the package view of one package.
func (h *Handlers) GetPackage(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	pi, ok := h.registry.PackageInfo(c.Param("name"), q.flags, q.user, q.pid)
	if !ok {
		notFound(c, "package")
		return
	}
	c.JSON(http.StatusOK, pi)
}

// RemovePackage uninstalls a package.
func (h *Handlers) RemovePackage(c *gin.Context) {
	name := c.Param("name")
	if err := h.registry.Remove(c.Request.Context(), name); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true, "package": name})
}

// GetApplication returns the application view. With out=true it returns
// the view handed to callers outside the package.
func (h *Handlers) GetApplication(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	name := c.Param("name")
	lookup := h.registry.Application
	if c.Query("out") == "true" {
		lookup = h.registry.ApplicationOut
	}
	ai, ok := lookup(name, q.flags, q.user, q.pid)
	if !ok {
		notFound(c, "application")
		return
	}
	c.JSON(http.StatusOK, ai)
}

// GetSetting returns the install record of a package.
func (h *Handlers) GetSetting(c *gin.Context) {
	ps, ok := h.registry.Setting(c.Param("name"))
	if !ok {
		notFound(c, "package")
		return
	}
	c.JSON(http.StatusOK, ps)
}

func userParam(c *gin.Context) (int, error) {
	u, err := strconv.Atoi(c.Param("user"))
	if err != nil || !setting.ValidUserID(u) {
		return 0, fmt.Errorf("invalid user: %q", c.Param("user"))
	}
	return u, nil
}

// GetUserState returns the per-user state of a package.
func (h *Handlers) GetUserState(c *gin.Context) {
	user, err := userParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	st, ok := h.registry.UserState(c.Param("name"), user)
	if !ok {
		notFound(c, "package")
		return
	}
	c.JSON(http.StatusOK, st)
}

// SetUserState replaces the per-user state of a package.
func (h *Handlers) SetUserState(c *gin.Context) {
	user, err := userParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var st setting.UserState
	if err := c.ShouldBindJSON(&st); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.registry.SetUserState(c.Param("name"), user, st); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
