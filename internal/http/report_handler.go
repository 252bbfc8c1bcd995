package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportPeriod reads from/to query params as YYYY-MM-DD dates. The end date
// is inclusive.
func reportPeriod(c *gin.Context, principal model.Principal) (service.ReportPeriod, bool) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
		return service.ReportPeriod{}, false
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
		return service.ReportPeriod{}, false
	}
	return service.ReportPeriod{
		Principal: principal,
		From:      from,
		To:        to.Add(24*time.Hour - time.Nanosecond),
	}, true
}

func (h *Handler) revenueReport(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	period, ok := reportPeriod(c, principal)
	if !ok {
		return
	}
	metrics, err := h.reports.Revenue(c.Request.Context(), period)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (h *Handler) exportRevenueReport(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	period, ok := reportPeriod(c, principal)
	if !ok {
		return
	}
	result, err := h.reports.ExportRevenue(c.Request.Context(), period)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) productivityReport(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	period, ok := reportPeriod(c, principal)
	if !ok {
		return
	}
	entries, err := h.reports.Productivity(c.Request.Context(), period)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) funnelReport(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	period, ok := reportPeriod(c, principal)
	if !ok {
		return
	}
	entries, err := h.reports.Funnel(c.Request.Context(), period)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) topCustomersReport(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	period, ok := reportPeriod(c, principal)
	if !ok {
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	entries, err := h.reports.TopCustomers(c.Request.Context(), period, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
