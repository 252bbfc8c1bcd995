package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rvworks/servicedesk/internal/service"
)

func (h *Handler) getSettings(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	settings, err := h.admin.GetSettings(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) updateSettings(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req service.SettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := h.admin.UpdateSettings(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) createAnnouncement(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req service.AnnouncementInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	announcement, err := h.admin.CreateAnnouncement(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, announcement)
}

func (h *Handler) listAnnouncements(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	announcements, err := h.admin.ListAnnouncements(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcements)
}

func (h *Handler) deleteAnnouncement(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.admin.DeleteAnnouncement(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
