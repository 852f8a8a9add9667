package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

// AnalyticsRepository runs the admin reporting aggregates.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// Overview returns platform-wide counters.
func (r *AnalyticsRepository) Overview(ctx context.Context) (*model.AnalyticsOverview, error) {
	o := &model.AnalyticsOverview{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'user'),
			(SELECT COUNT(*) FROM users WHERE role = 'admin'),
			(SELECT COUNT(*) FROM modules WHERE is_active),
			(SELECT COUNT(*) FROM quizzes q JOIN modules m ON m.id = q.module_id WHERE m.is_active),
			(SELECT COUNT(*) FROM results),
			(SELECT COUNT(*) FROM results WHERE passed),
			(SELECT COALESCE(AVG(score), 0) FROM results),
			(SELECT COUNT(*) FROM results WHERE certificate_generated)`,
	).Scan(&o.TotalUsers, &o.TotalAdmins, &o.ActiveModules, &o.TotalQuestions,
		&o.TotalAttempts, &o.PassedAttempts, &o.AverageScore, &o.CertificatesIssued)
	if err != nil {
		return nil, err
	}
	if o.TotalAttempts > 0 {
		o.PassRate = float64(o.PassedAttempts) / float64(o.TotalAttempts) * 100
	}
	return o, nil
}

// ModuleCompletion returns attempt and pass figures per active module.
// Completion rate is the share of learner accounts with a passed result.
func (r *AnalyticsRepository) ModuleCompletion(ctx context.Context) ([]model.ModuleCompletion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.title,
		       COUNT(res.id),
		       COUNT(res.id) FILTER (WHERE res.passed),
		       COALESCE(AVG(res.score), 0),
		       CASE WHEN (SELECT COUNT(*) FROM users WHERE role = 'user') = 0 THEN 0
		            ELSE COUNT(res.id) FILTER (WHERE res.passed)::float8 * 100
		                 / (SELECT COUNT(*) FROM users WHERE role = 'user')
		       END
		FROM modules m
		LEFT JOIN results res ON res.module_id = m.id
		WHERE m.is_active
		GROUP BY m.id
		ORDER BY m.order_index, m.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]model.ModuleCompletion, 0)
	for rows.Next() {
		var s model.ModuleCompletion
		if err := rows.Scan(&s.ModuleID, &s.Title, &s.Attempts, &s.Passed, &s.AverageScore, &s.CompletionRate); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Leaderboard ranks learners by passed modules, then by average score.
func (r *AnalyticsRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name,
		       COUNT(res.id) FILTER (WHERE res.passed) AS passed_count,
		       COALESCE(AVG(res.score), 0) AS avg_score
		FROM users u
		JOIN results res ON res.user_id = u.id
		WHERE u.role = 'user'
		GROUP BY u.id
		ORDER BY passed_count DESC, avg_score DESC, u.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.ModulesPassed, &e.AverageScore); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
