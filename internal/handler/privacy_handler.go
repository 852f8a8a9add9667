package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/middleware"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
	"github.com/smsi-platform/smsi-backend/internal/validator"
)

// PrivacyHandler serves data-subject access and erasure requests.
type PrivacyHandler struct {
	privacyService *service.PrivacyService
	audit          Auditor
	cfg            *config.Config
}

// NewPrivacyHandler creates a new PrivacyHandler.
func NewPrivacyHandler(privacyService *service.PrivacyService, audit Auditor, cfg *config.Config) *PrivacyHandler {
	return &PrivacyHandler{privacyService: privacyService, audit: audit, cfg: cfg}
}

// ExportData godoc
// GET /api/v1/rgpd/export
// Returns everything stored about the caller.
func (h *PrivacyHandler) ExportData(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	export, err := h.privacyService.Export(c.Request.Context(), p.ID)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{Action: model.AuditDataExport, Resource: "user", ResourceID: p.ID})

	response.Success(c, http.StatusOK, export)
}

// DeleteAccount godoc
// DELETE /api/v1/rgpd/delete
// Re-checks the password, then erases the account and its data.
func (h *PrivacyHandler) DeleteAccount(c *gin.Context) {
	var req model.DeleteAccountRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p := middleware.GetPrincipal(c)
	ctx := c.Request.Context()

	if err := h.privacyService.VerifyPassword(ctx, p.ID, req.Password); err != nil {
		failFromService(c, err)
		return
	}

	// Recorded first; the erasure anonymizes it along with the rest of the trail.
	record(c, h.audit, auditEvent{Action: model.AuditDataDelete, Resource: "user", ResourceID: p.ID})

	if err := h.privacyService.Erase(ctx, p.ID); err != nil {
		failFromService(c, err)
		return
	}

	setSessionCookie(c, h.cfg, "", -1)

	response.Success(c, http.StatusOK, gin.H{})
}
