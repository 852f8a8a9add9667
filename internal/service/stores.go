package service

import (
	"context"
	"time"

	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/repository"
)

// The store interfaces below are satisfied by the pgx repositories and by
// in-memory fakes in tests.

// UserStore is the user persistence used by services.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
	Delete(ctx context.Context, id int) error
	Erase(ctx context.Context, id int) error
	ListWithStats(ctx context.Context, limit, offset int) ([]model.UserWithStats, int, error)
}

// ModuleStore is the module persistence used by services.
type ModuleStore interface {
	GetByID(ctx context.Context, id int) (*model.Module, error)
	GetActiveByID(ctx context.Context, id int) (*model.Module, error)
	ListActiveWithProgress(ctx context.Context, userID int) ([]model.ModuleWithProgress, error)
	ListWithStats(ctx context.Context) ([]model.ModuleWithStats, error)
	Create(ctx context.Context, m *model.Module) error
	Update(ctx context.Context, m *model.Module) error
	Deactivate(ctx context.Context, id int) error
}

// QuizStore is the question bank persistence used by services.
type QuizStore interface {
	ListByModule(ctx context.Context, moduleID int) ([]model.Quiz, error)
	GetByID(ctx context.Context, id int) (*model.Quiz, error)
	Create(ctx context.Context, q *model.Quiz) error
	Update(ctx context.Context, q *model.Quiz) error
	Delete(ctx context.Context, moduleID, id int) error
	BulkCreate(ctx context.Context, quizzes []model.Quiz) error
}

// ResultStore is the result persistence used by services.
type ResultStore interface {
	UpsertBest(ctx context.Context, res *model.Result) (*model.Result, bool, error)
	GetByUserAndModule(ctx context.Context, userID, moduleID int) (*model.Result, error)
	MarkCertificateGenerated(ctx context.Context, userID, moduleID int) (bool, error)
	ListCertificates(ctx context.Context, userID int) ([]model.Certificate, error)
	ListByUser(ctx context.Context, userID int) ([]model.ResultWithModule, error)
	Progress(ctx context.Context, userID int) (*model.UserProgress, error)
}

// AuditStore is the audit log persistence used by services and workers.
type AuditStore interface {
	Insert(ctx context.Context, e *model.AuditEntry) error
	BulkInsert(ctx context.Context, batch []*model.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]model.AuditLog, int, error)
	ListByUser(ctx context.Context, userID, limit int) ([]model.AuditLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AnalyticsStore runs the reporting aggregates.
type AnalyticsStore interface {
	Overview(ctx context.Context) (*model.AnalyticsOverview, error)
	ModuleCompletion(ctx context.Context) ([]model.ModuleCompletion, error)
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

var (
	_ UserStore      = (*repository.UserRepository)(nil)
	_ ModuleStore    = (*repository.ModuleRepository)(nil)
	_ QuizStore      = (*repository.QuizRepository)(nil)
	_ ResultStore    = (*repository.ResultRepository)(nil)
	_ AuditStore     = (*repository.AuditRepository)(nil)
	_ AnalyticsStore = (*repository.AnalyticsRepository)(nil)
)
