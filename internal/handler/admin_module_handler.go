package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
	"github.com/smsi-platform/smsi-backend/internal/validator"
)

// AdminModuleHandler manages modules and their question banks.
type AdminModuleHandler struct {
	moduleService *service.ModuleService
	audit         Auditor
}

func NewAdminModuleHandler(moduleService *service.ModuleService, audit Auditor) *AdminModuleHandler {
	return &AdminModuleHandler{moduleService: moduleService, audit: audit}
}

// ─── Modules ────────────────────────────────────────────────────────

// ListModules godoc
// GET /api/v1/admin/modules
// Lists every module, inactive ones included, with attempt statistics.
func (h *AdminModuleHandler) ListModules(c *gin.Context) {
	modules, err := h.moduleService.ListWithStats(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// CreateModule godoc
// POST /api/v1/admin/modules
func (h *AdminModuleHandler) CreateModule(c *gin.Context) {
	var req model.CreateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	module, err := h.moduleService.Create(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditModuleCreate,
		Resource:   "module",
		ResourceID: module.ID,
		Details:    gin.H{"title": module.Title},
	})

	response.Success(c, http.StatusCreated, gin.H{"module": module})
}

// UpdateModule godoc
// PUT /api/v1/admin/modules/:id
func (h *AdminModuleHandler) UpdateModule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	module, err := h.moduleService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditModuleUpdate,
		Resource:   "module",
		ResourceID: module.ID,
	})

	response.Success(c, http.StatusOK, gin.H{"module": module})
}

// DeleteModule godoc
// DELETE /api/v1/admin/modules/:id
// Deactivates the module; results and certificates are kept.
func (h *AdminModuleHandler) DeleteModule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.moduleService.Delete(c.Request.Context(), id); err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditModuleDelete,
		Resource:   "module",
		ResourceID: id,
	})

	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Question bank ──────────────────────────────────────────────────

// ListQuestions godoc
// GET /api/v1/admin/modules/:id/questions
func (h *AdminModuleHandler) ListQuestions(c *gin.Context) {
	moduleID, ok := paramID(c, "id")
	if !ok {
		return
	}

	questions, err := h.moduleService.ListQuestions(c.Request.Context(), moduleID)
	if err != nil {
		failFromService(c, err)
		return
	}
	if questions == nil {
		questions = []model.Quiz{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// AddQuestion godoc
// POST /api/v1/admin/modules/:id/questions
func (h *AdminModuleHandler) AddQuestion(c *gin.Context) {
	moduleID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.moduleService.AddQuestion(c.Request.Context(), moduleID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditQuizCreate,
		Resource:   "quiz",
		ResourceID: q.ID,
		Details:    gin.H{"module_id": moduleID},
	})

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/modules/:id/questions/:quiz_id
func (h *AdminModuleHandler) UpdateQuestion(c *gin.Context) {
	moduleID, ok := paramID(c, "id")
	if !ok {
		return
	}
	quizID, ok := paramID(c, "quiz_id")
	if !ok {
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.moduleService.UpdateQuestion(c.Request.Context(), moduleID, quizID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditQuizUpdate,
		Resource:   "quiz",
		ResourceID: q.ID,
		Details:    gin.H{"module_id": moduleID},
	})

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/modules/:id/questions/:quiz_id
func (h *AdminModuleHandler) DeleteQuestion(c *gin.Context) {
	moduleID, ok := paramID(c, "id")
	if !ok {
		return
	}
	quizID, ok := paramID(c, "quiz_id")
	if !ok {
		return
	}

	if err := h.moduleService.DeleteQuestion(c.Request.Context(), moduleID, quizID); err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditQuizDelete,
		Resource:   "quiz",
		ResourceID: quizID,
		Details:    gin.H{"module_id": moduleID},
	})

	response.Success(c, http.StatusOK, gin.H{})
}
