package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rvworks/servicedesk/internal/http/middleware"
	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/service"
)

type Handler struct {
	provisioning  *service.ProvisioningService
	workOrders    *service.WorkOrderService
	approvals     *service.ApprovalService
	dispatch      *service.DispatchService
	directory     *service.DirectoryService
	admin         *service.AdminService
	notifications *service.NotificationService
	reports       *service.ReportService
	pdf           service.EstimateRenderer
	log           zerolog.Logger
}

func NewHandler(
	provisioning *service.ProvisioningService,
	workOrders *service.WorkOrderService,
	approvals *service.ApprovalService,
	dispatch *service.DispatchService,
	directory *service.DirectoryService,
	admin *service.AdminService,
	notifications *service.NotificationService,
	reports *service.ReportService,
	pdf service.EstimateRenderer,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		provisioning:  provisioning,
		workOrders:    workOrders,
		approvals:     approvals,
		dispatch:      dispatch,
		directory:     directory,
		admin:         admin,
		notifications: notifications,
		reports:       reports,
		pdf:           pdf,
		log:           log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.POST("/api/auth/login", h.login)
	router.POST("/api/provision/dealerships", h.createDealershipOwner)

	// Customer-facing approval pages. The token is the only credential.
	router.GET("/approve/:token", h.resolveApproval)
	router.POST("/approve/:token", h.finalizeApproval)

	api := router.Group("/api")
	api.Use(authMiddleware)

	api.POST("/users", h.createUser)
	api.GET("/users", h.listUsers)
	api.PATCH("/users/:id", h.updateUser)

	api.GET("/settings", h.getSettings)
	api.PATCH("/settings", h.updateSettings)

	api.POST("/customers", h.createCustomer)
	api.GET("/customers", h.listCustomers)
	api.GET("/customers/:id", h.getCustomer)
	api.PATCH("/customers/:id", h.updateCustomer)
	api.GET("/customers/:id/rvs", h.listCustomerRVs)

	api.POST("/rvs", h.createRV)
	api.GET("/rvs/:id", h.getRV)
	api.GET("/rvs/:id/work-orders", h.listRVWorkOrders)

	api.POST("/parts", h.createPart)
	api.GET("/parts", h.listParts)
	api.GET("/parts/:id", h.getPart)
	api.PATCH("/parts/:id", h.updatePart)

	api.POST("/work-orders", h.createWorkOrder)
	api.GET("/work-orders", h.listWorkOrders)
	api.GET("/work-orders/:id", h.getWorkOrder)
	api.PATCH("/work-orders/:id", h.updateWorkOrder)
	api.POST("/work-orders/:id/force-status", h.forceWorkOrderStatus)
	api.POST("/work-orders/:id/send-approval", h.sendForApproval)
	api.GET("/work-orders/:id/approval-history", h.approvalHistory)
	api.GET("/work-orders/:id/estimate.pdf", h.estimatePDF)

	api.GET("/notifications", h.listNotifications)
	api.POST("/notifications/:id/read", h.markNotificationRead)
	api.POST("/notifications/read-all", h.markAllNotificationsRead)

	api.POST("/announcements", h.createAnnouncement)
	api.GET("/announcements", h.listAnnouncements)
	api.DELETE("/announcements/:id", h.deleteAnnouncement)

	api.GET("/reports/revenue", h.revenueReport)
	api.GET("/reports/revenue/export", h.exportRevenueReport)
	api.GET("/reports/productivity", h.productivityReport)
	api.GET("/reports/funnel", h.funnelReport)
	api.GET("/reports/top-customers", h.topCustomersReport)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func principalOrAbort(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func rvLabel(year int, make, model string) string {
	return fmt.Sprintf("%d %s %s", year, make, model)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
