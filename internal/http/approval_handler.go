package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rvworks/servicedesk/internal/service"
)

func (h *Handler) sendForApproval(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		ViaSMS   bool `json:"viaSms"`
		ViaEmail bool `json:"viaEmail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.dispatch.SendForApproval(c.Request.Context(), service.SendForApprovalInput{
		Principal:   principal,
		WorkOrderID: id,
		ViaSMS:      req.ViaSMS,
		ViaEmail:    req.ViaEmail,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) approvalHistory(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	entries, err := h.approvals.History(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) resolveApproval(c *gin.Context) {
	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	view, err := h.approvals.Resolve(c.Request.Context(), c.Param("token"), &ip, &ua)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type finalizeApprovalRequest struct {
	Approved      *bool   `json:"approved" binding:"required"`
	CustomerNotes *string `json:"customerNotes"`
}

func (h *Handler) finalizeApproval(c *gin.Context) {
	var req finalizeApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	wo, err := h.approvals.Finalize(c.Request.Context(), service.FinalizeInput{
		Token:         c.Param("token"),
		Approve:       *req.Approved,
		CustomerNotes: req.CustomerNotes,
		IPAddress:     &ip,
		UserAgent:     &ua,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": wo.Status})
}

func (h *Handler) estimatePDF(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	wo, err := h.workOrders.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	doc := service.EstimateDocument{WorkOrder: wo}
	if customer, err := h.directory.GetCustomer(c.Request.Context(), principal, wo.CustomerID); err == nil {
		doc.CustomerName = customer.Name
	}
	if rv, err := h.directory.GetRV(c.Request.Context(), principal, wo.RVID); err == nil {
		doc.RVLabel = rvLabel(rv.Year, rv.Make, rv.Model)
	}
	if settings, err := h.admin.GetSettings(c.Request.Context(), principal); err == nil {
		doc.DealershipName = settings.Name
		doc.CurrencySymbol = settings.CurrencySymbol
	}

	content, err := h.pdf.Render(doc)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\"estimate.pdf\"")
	c.Data(http.StatusOK, "application/pdf", content)
}
