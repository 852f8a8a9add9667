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

// AdminUserHandler manages accounts.
type AdminUserHandler struct {
	userService *service.UserService
	audit       Auditor
}

func NewAdminUserHandler(userService *service.UserService, audit Auditor) *AdminUserHandler {
	return &AdminUserHandler{userService: userService, audit: audit}
}

// ListUsers godoc
// GET /api/v1/admin/users?page=1&per_page=10
func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 10)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	users, total, err := h.userService.List(c.Request.Context(), page, perPage)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, users, response.PageOf(page, perPage, total))
}

// GetUser godoc
// GET /api/v1/admin/users/:id
func (h *AdminUserHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// CreateUser godoc
// POST /api/v1/admin/users
func (h *AdminUserHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditUserCreate,
		Resource:   "user",
		ResourceID: user.ID,
		Details:    gin.H{"email": user.Email, "role": user.Role},
	})

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// UpdateUser godoc
// PUT /api/v1/admin/users/:id
// Only the provided fields change; a password is re-hashed.
func (h *AdminUserHandler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditUserUpdate,
		Resource:   "user",
		ResourceID: user.ID,
		Details:    gin.H{"password_changed": req.Password != ""},
	})

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// DeleteUser godoc
// DELETE /api/v1/admin/users/:id
// An admin cannot delete their own account.
func (h *AdminUserHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	p := middleware.GetPrincipal(c)

	if err := h.userService.Delete(c.Request.Context(), p.ID, id); err != nil {
		failFromService(c, err)
		return
	}

	record(c, h.audit, auditEvent{
		Action:     model.AuditUserDelete,
		Resource:   "user",
		ResourceID: id,
	})

	response.Success(c, http.StatusOK, gin.H{})
}
