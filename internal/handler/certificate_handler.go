package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/middleware"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
	"github.com/smsi-platform/smsi-backend/internal/validator"
)

// CertificateHandler lists and issues completion certificates.
type CertificateHandler struct {
	certificateService *service.CertificateService
	audit              Auditor
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certificateService *service.CertificateService, audit Auditor) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService, audit: audit}
}

// ListCertificates godoc
// GET /api/v1/certificates
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	certs, err := h.certificateService.ListCertificates(c.Request.Context(), p.ID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"certificates": certs})
}

// GenerateCertificate godoc
// POST /api/v1/certificates/generate
// Renders the certificate of a passed module as a download.
func (h *CertificateHandler) GenerateCertificate(c *gin.Context) {
	var req model.GenerateCertificateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p := middleware.GetPrincipal(c)

	cert, err := h.certificateService.Generate(c.Request.Context(), p.ID, req.ModuleID)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditCertificateGenerate,
		Resource:   "module",
		ResourceID: req.ModuleID,
		Details: gin.H{
			"certificate_id": cert.CertificateID,
			"first_issue":    cert.FirstIssue,
		},
	})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, cert.Filename))
	c.Header("X-Certificate-Id", cert.CertificateID)
	c.Data(http.StatusOK, cert.ContentType, cert.Content)
}
