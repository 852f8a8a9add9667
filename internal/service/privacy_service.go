package service

import (
	"context"
	"fmt"
	"time"

	"github.com/smsi-platform/smsi-backend/internal/model"
)

// exportActivityLimit caps the audit trail included in a data export.
const exportActivityLimit = 1000

// DataExport is the personal data bundle returned to a data subject.
type DataExport struct {
	PersonalInfo    model.User               `json:"personal_info"`
	TrainingResults []model.ResultWithModule `json:"training_results"`
	ActivityLogs    []model.AuditLog         `json:"activity_logs"`
	ExportInfo      ExportInfo               `json:"export_info"`
}

// ExportInfo describes the export itself.
type ExportInfo struct {
	ExportedAt time.Time `json:"exported_at"`
	Format     string    `json:"format"`
	Regulation string    `json:"regulation"`
}

// PrivacyService implements data-subject access and erasure.
type PrivacyService struct {
	users   UserStore
	results ResultStore
	audits  AuditStore
	auth    *AuthService
	now     func() time.Time
}

// NewPrivacyService creates a new PrivacyService.
func NewPrivacyService(users UserStore, results ResultStore, audits AuditStore, auth *AuthService) *PrivacyService {
	return &PrivacyService{users: users, results: results, audits: audits, auth: auth, now: time.Now}
}

// Export gathers everything stored about a user.
func (s *PrivacyService) Export(ctx context.Context, userID int) (*DataExport, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, userErr(err)
	}
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	logs, err := s.audits.ListByUser(ctx, userID, exportActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	return &DataExport{
		PersonalInfo:    *user,
		TrainingResults: results,
		ActivityLogs:    logs,
		ExportInfo: ExportInfo{
			ExportedAt: s.now().UTC(),
			Format:     "JSON",
			Regulation: "RGPD Article 20 - Right to data portability",
		},
	}, nil
}

// VerifyPassword confirms the account password before erasure.
func (s *PrivacyService) VerifyPassword(ctx context.Context, userID int, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return userErr(err)
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// Erase deletes the account, its results and its audit references in one transaction.
func (s *PrivacyService) Erase(ctx context.Context, userID int) error {
	if err := s.users.Erase(ctx, userID); err != nil {
		return userErr(err)
	}
	return nil
}
