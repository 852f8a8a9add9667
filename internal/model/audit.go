package model

import (
	"encoding/json"
	"time"
)

// AuditAction names an audited operation.
type AuditAction string

const (
	AuditLogin               AuditAction = "LOGIN"
	AuditLogout              AuditAction = "LOGOUT"
	AuditRegister            AuditAction = "REGISTER"
	AuditModuleView          AuditAction = "MODULE_VIEW"
	AuditQuizSubmit          AuditAction = "QUIZ_SUBMIT"
	AuditCertificateGenerate AuditAction = "CERTIFICATE_GENERATE"
	AuditUserCreate          AuditAction = "USER_CREATE"
	AuditUserUpdate          AuditAction = "USER_UPDATE"
	AuditUserDelete          AuditAction = "USER_DELETE"
	AuditModuleCreate        AuditAction = "MODULE_CREATE"
	AuditModuleUpdate        AuditAction = "MODULE_UPDATE"
	AuditModuleDelete        AuditAction = "MODULE_DELETE"
	AuditQuizCreate          AuditAction = "QUIZ_CREATE"
	AuditQuizUpdate          AuditAction = "QUIZ_UPDATE"
	AuditQuizDelete          AuditAction = "QUIZ_DELETE"
	AuditDataExport          AuditAction = "DATA_EXPORT"
	AuditDataDelete          AuditAction = "DATA_DELETE"
)

// AuditEntry is an audit event before persistence.
type AuditEntry struct {
	UserID     *int            `json:"user_id"`
	Action     AuditAction     `json:"action"`
	Resource   string          `json:"resource,omitempty"`
	ResourceID *int            `json:"resource_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditLog is a persisted audit entry.
type AuditLog struct {
	ID        int64  `json:"id"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	AuditEntry
}
