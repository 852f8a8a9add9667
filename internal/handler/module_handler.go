package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/middleware"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
)

// ModuleHandler serves the learner-facing module catalogue.
type ModuleHandler struct {
	moduleService *service.ModuleService
	audit         Auditor
}

// NewModuleHandler creates a new ModuleHandler.
func NewModuleHandler(moduleService *service.ModuleService, audit Auditor) *ModuleHandler {
	return &ModuleHandler{moduleService: moduleService, audit: audit}
}

// ListModules godoc
// GET /api/v1/modules
// Lists active modules with the caller's progress on each.
func (h *ModuleHandler) ListModules(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	modules, err := h.moduleService.ListForUser(c.Request.Context(), p.ID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// GetModule godoc
// GET /api/v1/modules/:id
// Returns an active module with its content.
func (h *ModuleHandler) GetModule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	module, err := h.moduleService.GetActive(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditModuleView,
		Resource:   "module",
		ResourceID: module.ID,
	})

	response.Success(c, http.StatusOK, gin.H{"module": module})
}

// Progress godoc
// GET /api/v1/progress
// Summarizes the caller's training progress.
func (h *ModuleHandler) Progress(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	progress, err := h.moduleService.Progress(c.Request.Context(), p.ID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, progress)
}
