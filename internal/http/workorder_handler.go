package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/service"
)

type createWorkOrderRequest struct {
	RVID             uuid.UUID               `json:"rvId" binding:"required"`
	IssueDescription string                  `json:"issueDescription"`
	LaborHours       float64                 `json:"laborHours"`
	LaborRate        *float64                `json:"laborRate"`
	Status           *model.WorkOrderStatus  `json:"status"`
	TechnicianNotes  *string                 `json:"technicianNotes"`
	Parts            []service.PartSelection `json:"parts"`
	Photos           []service.PhotoInput    `json:"photos"`
}

func (h *Handler) createWorkOrder(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req createWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wo, err := h.workOrders.Create(c.Request.Context(), service.CreateWorkOrderInput{
		Principal:        principal,
		RVID:             req.RVID,
		IssueDescription: req.IssueDescription,
		LaborHours:       req.LaborHours,
		LaborRate:        req.LaborRate,
		Status:           req.Status,
		TechnicianNotes:  req.TechnicianNotes,
		Parts:            req.Parts,
		Photos:           req.Photos,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.redactPricing(c, principal, wo)
	c.JSON(http.StatusCreated, wo)
}

func (h *Handler) listWorkOrders(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	orders, err := h.workOrders.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.redactPricingAll(c, principal, orders)
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getWorkOrder(c *gin.Context) {
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
	h.redactPricing(c, principal, wo)
	c.JSON(http.StatusOK, wo)
}

func (h *Handler) listRVWorkOrders(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	orders, err := h.workOrders.ListByRV(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.redactPricingAll(c, principal, orders)
	c.JSON(http.StatusOK, orders)
}

type updateWorkOrderRequest struct {
	IssueDescription *string                  `json:"issueDescription"`
	LaborHours       *float64                 `json:"laborHours"`
	LaborRate        *float64                 `json:"laborRate"`
	Status           *model.WorkOrderStatus   `json:"status"`
	TechnicianNotes  *string                  `json:"technicianNotes"`
	ManagerNotes     *string                  `json:"managerNotes"`
	TechnicianID     *uuid.UUID               `json:"technicianId"`
	Parts            *[]service.PartSelection `json:"parts"`
	Photos           *[]service.PhotoInput    `json:"photos"`
}

func (h *Handler) updateWorkOrder(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wo, err := h.workOrders.Update(c.Request.Context(), service.UpdateWorkOrderInput{
		Principal:        principal,
		ID:               id,
		IssueDescription: req.IssueDescription,
		LaborHours:       req.LaborHours,
		LaborRate:        req.LaborRate,
		Status:           req.Status,
		TechnicianNotes:  req.TechnicianNotes,
		ManagerNotes:     req.ManagerNotes,
		TechnicianID:     req.TechnicianID,
		Parts:            req.Parts,
		Photos:           req.Photos,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.redactPricing(c, principal, wo)
	c.JSON(http.StatusOK, wo)
}

type forceStatusRequest struct {
	Status model.WorkOrderStatus `json:"status" binding:"required"`
}

func (h *Handler) forceWorkOrderStatus(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req forceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wo, err := h.workOrders.ForceStatus(c.Request.Context(), principal, id, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

// redactPricing blanks money fields for technicians when the dealership
// keeps pricing internal.
func (h *Handler) redactPricing(c *gin.Context, principal model.Principal, wo *model.WorkOrder) {
	if !h.shouldRedact(c, principal) {
		return
	}
	wo.LaborRate = 0
	wo.TotalEstimate = 0
	for i := range wo.Parts {
		wo.Parts[i].UnitPrice = 0
	}
}

func (h *Handler) redactPricingAll(c *gin.Context, principal model.Principal, orders []model.WorkOrder) {
	if !h.shouldRedact(c, principal) {
		return
	}
	for i := range orders {
		orders[i].LaborRate = 0
		orders[i].TotalEstimate = 0
		for j := range orders[i].Parts {
			orders[i].Parts[j].UnitPrice = 0
		}
	}
}

func (h *Handler) shouldRedact(c *gin.Context, principal model.Principal) bool {
	if !principal.IsTechnician() {
		return false
	}
	settings, err := h.admin.GetSettings(c.Request.Context(), principal)
	if err != nil {
		return true
	}
	return !settings.TechniciansSeePricing
}
