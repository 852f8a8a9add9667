package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves analytics and the audit trail.
type AdminHandler struct {
	analyticsService *service.AnalyticsService
	auditService     *service.AuditService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(analyticsService *service.AnalyticsService, auditService *service.AuditService) *AdminHandler {
	return &AdminHandler{analyticsService: analyticsService, auditService: auditService}
}

// Analytics godoc
// GET /api/v1/admin/analytics
func (h *AdminHandler) Analytics(c *gin.Context) {
	a, err := h.analyticsService.Get(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

// ExportAnalytics godoc
// GET /api/v1/admin/analytics/export
// Downloads the analytics as an XLSX workbook.
func (h *AdminHandler) ExportAnalytics(c *gin.Context) {
	buf, err := h.analyticsService.ExportWorkbook(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}

	filename := fmt.Sprintf("smsi-analytics-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// AuditLogs godoc
// GET /api/v1/admin/audit-logs?limit=50&offset=0
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	offset, limit := response.ClampWindow(queryInt(c, "offset", 0), queryInt(c, "limit", 50), 50, 200)

	logs, total, err := h.auditService.List(c.Request.Context(), limit, offset)
	if err != nil {
		failFromService(c, err)
		return
	}

	if logs == nil {
		logs = []model.AuditLog{}
	}
	response.SuccessWithPagination(c, http.StatusOK, logs, response.WindowOf(offset, limit, len(logs), total))
}
