package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/middleware"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
	"github.com/smsi-platform/smsi-backend/internal/validator"
)

// QuizHandler serves quiz questions and scores attempts.
type QuizHandler struct {
	quizService *service.QuizService
	audit       Auditor
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, audit Auditor) *QuizHandler {
	return &QuizHandler{quizService: quizService, audit: audit}
}

// GetQuiz godoc
// GET /api/v1/quiz/:module_id
// Returns a module's questions without the answer key.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	moduleID, ok := paramID(c, "module_id")
	if !ok {
		return
	}

	view, err := h.quizService.GetQuiz(c.Request.Context(), moduleID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// SubmitQuiz godoc
// POST /api/v1/quiz/submit
// Scores an attempt and keeps the best result per module.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	var req model.QuizSubmission
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p := middleware.GetPrincipal(c)

	result, err := h.quizService.Submit(c.Request.Context(), p.ID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditQuizSubmit,
		Resource:   "module",
		ResourceID: req.ModuleID,
		Details: gin.H{
			"score":    result.Score,
			"passed":   result.Passed,
			"improved": result.Improved,
		},
	})

	response.Success(c, http.StatusOK, result)
}
