package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

const resultColumns = `id, user_id, module_id, score, total_questions, correct_answers, passed, time_spent_minutes, certificate_generated, completed_at`

// ResultRepository handles quiz result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func scanResult(row pgx.Row) (*model.Result, error) {
	res := &model.Result{}
	err := row.Scan(&res.ID, &res.UserID, &res.ModuleID, &res.Score, &res.TotalQuestions,
		&res.CorrectAnswers, &res.Passed, &res.TimeSpentMinutes, &res.CertificateGenerated, &res.CompletedAt)
	return res, err
}

// UpsertBest stores a scored attempt keyed by (user_id, module_id).
// The row is written only when it is new or strictly beats the stored score;
// the comparison and the write happen in one statement. The returned bool
// reports whether the stored row changed. Otherwise the stored row is returned unchanged.
func (r *ResultRepository) UpsertBest(ctx context.Context, res *model.Result) (*model.Result, bool, error) {
	stored, err := scanResult(r.pool.QueryRow(ctx,
		`INSERT INTO results (user_id, module_id, score, total_questions, correct_answers,
		                      passed, time_spent_minutes, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, module_id) DO UPDATE
		 SET score              = EXCLUDED.score,
		     total_questions    = EXCLUDED.total_questions,
		     correct_answers    = EXCLUDED.correct_answers,
		     passed             = EXCLUDED.passed,
		     time_spent_minutes = EXCLUDED.time_spent_minutes,
		     completed_at       = EXCLUDED.completed_at
		 WHERE results.score < EXCLUDED.score
		 RETURNING `+resultColumns,
		res.UserID, res.ModuleID, res.Score, res.TotalQuestions, res.CorrectAnswers,
		res.Passed, res.TimeSpentMinutes, res.CompletedAt,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// Conflict without improvement: nothing returned, read the stored row.
	stored, err = r.GetByUserAndModule(ctx, res.UserID, res.ModuleID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// GetByUserAndModule retrieves the best result of a user on a module.
func (r *ResultRepository) GetByUserAndModule(ctx context.Context, userID, moduleID int) (*model.Result, error) {
	res, err := scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM results WHERE user_id = $1 AND module_id = $2`,
		userID, moduleID))
	if err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

// MarkCertificateGenerated flips certificate_generated once.
// Reports whether this call performed the flip.
func (r *ResultRepository) MarkCertificateGenerated(ctx context.Context, userID, moduleID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE results SET certificate_generated = TRUE
		 WHERE user_id = $1 AND module_id = $2 AND passed AND certificate_generated = FALSE`,
		userID, moduleID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListCertificates returns the passed results of a user joined with module titles.
func (r *ResultRepository) ListCertificates(ctx context.Context, userID int) ([]model.Certificate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.module_id, m.title, res.score, res.completed_at, res.certificate_generated
		 FROM results res
		 JOIN modules m ON m.id = res.module_id
		 WHERE res.user_id = $1 AND res.passed
		 ORDER BY res.completed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	certs := make([]model.Certificate, 0)
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ModuleID, &c.ModuleTitle, &c.Score, &c.CompletedAt, &c.CertificateGenerated); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

// ListByUser returns every result of a user joined with module titles.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int) ([]model.ResultWithModule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.id, res.user_id, res.module_id, res.score, res.total_questions, res.correct_answers,
		        res.passed, res.time_spent_minutes, res.certificate_generated, res.completed_at, m.title
		 FROM results res
		 JOIN modules m ON m.id = res.module_id
		 WHERE res.user_id = $1
		 ORDER BY res.completed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.ResultWithModule, 0)
	for rows.Next() {
		var res model.ResultWithModule
		if err := rows.Scan(&res.ID, &res.UserID, &res.ModuleID, &res.Score, &res.TotalQuestions,
			&res.CorrectAnswers, &res.Passed, &res.TimeSpentMinutes, &res.CertificateGenerated,
			&res.CompletedAt, &res.ModuleTitle); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// Progress summarizes a user's results against the active module catalogue.
func (r *ResultRepository) Progress(ctx context.Context, userID int) (*model.UserProgress, error) {
	p := &model.UserProgress{}
	err := r.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM modules WHERE is_active),
		        COUNT(res.id),
		        COUNT(res.id) FILTER (WHERE res.passed),
		        COALESCE(AVG(res.score), 0),
		        COUNT(res.id) FILTER (WHERE res.certificate_generated),
		        COALESCE(SUM(res.time_spent_minutes), 0)
		 FROM results res
		 WHERE res.user_id = $1`, userID,
	).Scan(&p.TotalModules, &p.CompletedModules, &p.PassedModules, &p.AverageScore,
		&p.CertificatesEarned, &p.TotalTimeMinutes)
	if err != nil {
		return nil, err
	}
	return p, nil
}
