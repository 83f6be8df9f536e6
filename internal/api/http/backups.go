package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) backupsEnabled(c *gin.Context) bool {
	if h.archiver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backups disabled"})
		return false
	}
	return true
}

// ListBackups lists the backups of the environment root.
func (h *Handlers) ListBackups(c *gin.Context) {
	if !h.backupsEnabled(c) {
		return
	}
	backups, err := h.archiver.List()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": backups, "count": len(backups)})
}

// CreateBackup archives the environment root.
func (h *Handlers) CreateBackup(c *gin.Context) {
	if !h.backupsEnabled(c) {
		return
	}
	b, err := h.archiver.Create(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// DeleteBackup removes a backup.
func (h *Handlers) DeleteBackup(c *gin.Context) {
	if !h.backupsEnabled(c) {
		return
	}
	backupID := c.Param("id")
	if err := h.archiver.Delete(backupID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "id": backupID})
}
