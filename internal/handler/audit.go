package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/middleware"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

// Auditor records audit events. Implemented by service.AuditService.
type Auditor interface {
	Record(ctx context.Context, e model.AuditEntry)
}

// auditEvent describes one audited action taken by the current request.
type auditEvent struct {
	Action     model.AuditAction
	Resource   string
	ResourceID int
	Details    interface{}
	// UserID overrides the authenticated principal (login, register).
	UserID int
}

// record builds an audit entry from the request and hands it to the auditor.
func record(c *gin.Context, a Auditor, ev auditEvent) {
	if a == nil {
		return
	}

	e := model.AuditEntry{
		Action:    ev.Action,
		Resource:  ev.Resource,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	userID := ev.UserID
	if userID == 0 {
		if p := middleware.GetPrincipal(c); p != nil {
			userID = p.ID
		}
	}
	if userID != 0 {
		e.UserID = &userID
	}
	if ev.ResourceID != 0 {
		rid := ev.ResourceID
		e.ResourceID = &rid
	}
	if ev.Details != nil {
		if raw, err := json.Marshal(ev.Details); err == nil {
			e.Details = raw
		}
	}

	a.Record(c.Request.Context(), e)
}
