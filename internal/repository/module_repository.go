package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

const moduleColumns = `m.id, m.title, m.description, m.content, m.difficulty, m.duration_minutes, m.order_index, m.is_active, m.created_at, m.updated_at`

// ModuleRepository handles training module data access.
type ModuleRepository struct {
	pool *pgxpool.Pool
}

// NewModuleRepository creates a new ModuleRepository.
func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{pool: pool}
}

func scanModule(row pgx.Row) (*model.Module, error) {
	m := &model.Module{}
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Content, &m.Difficulty,
		&m.DurationMinutes, &m.OrderIndex, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// GetByID retrieves a module regardless of its active flag.
func (r *ModuleRepository) GetByID(ctx context.Context, id int) (*model.Module, error) {
	return scanModule(r.pool.QueryRow(ctx,
		`SELECT `+moduleColumns+` FROM modules m WHERE m.id = $1`, id))
}

// GetActiveByID retrieves a module only if it is active.
func (r *ModuleRepository) GetActiveByID(ctx context.Context, id int) (*model.Module, error) {
	return scanModule(r.pool.QueryRow(ctx,
		`SELECT `+moduleColumns+` FROM modules m WHERE m.id = $1 AND m.is_active`, id))
}

// ListActiveWithProgress lists active modules with the user's best result, if any.
func (r *ModuleRepository) ListActiveWithProgress(ctx context.Context, userID int) ([]model.ModuleWithProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+moduleColumns+`, res.score, COALESCE(res.passed, FALSE), res.completed_at
		 FROM modules m
		 LEFT JOIN results res ON res.module_id = m.id AND res.user_id = $1
		 WHERE m.is_active
		 ORDER BY m.order_index, m.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []model.ModuleWithProgress
	for rows.Next() {
		var m model.ModuleWithProgress
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Content, &m.Difficulty,
			&m.DurationMinutes, &m.OrderIndex, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
			&m.Progress.Score, &m.Progress.Passed, &m.Progress.CompletedAt); err != nil {
			return nil, err
		}
		// Listing rows omit the body to keep the payload small.
		m.Content = ""
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// ListWithStats lists all modules with question and attempt counters.
func (r *ModuleRepository) ListWithStats(ctx context.Context) ([]model.ModuleWithStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+moduleColumns+`,
		        (SELECT COUNT(*) FROM quizzes q WHERE q.module_id = m.id),
		        COUNT(res.id), COUNT(res.id) FILTER (WHERE res.passed),
		        COALESCE(AVG(res.score), 0)
		 FROM modules m
		 LEFT JOIN results res ON res.module_id = m.id
		 GROUP BY m.id
		 ORDER BY m.order_index, m.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []model.ModuleWithStats
	for rows.Next() {
		var m model.ModuleWithStats
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Content, &m.Difficulty,
			&m.DurationMinutes, &m.OrderIndex, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
			&m.QuestionCount, &m.Attempts, &m.PassedCount, &m.AverageScore); err != nil {
			return nil, err
		}
		m.Content = ""
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// CountActive returns the number of active modules.
func (r *ModuleRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM modules WHERE is_active`).Scan(&n)
	return n, err
}

// Create inserts a new module.
func (r *ModuleRepository) Create(ctx context.Context, m *model.Module) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO modules (title, description, content, difficulty, duration_minutes, order_index, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		 RETURNING id, is_active, created_at, updated_at`,
		m.Title, m.Description, m.Content, m.Difficulty, m.DurationMinutes, m.OrderIndex,
	).Scan(&m.ID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
}

// Update writes every mutable column of a module.
func (r *ModuleRepository) Update(ctx context.Context, m *model.Module) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE modules
		 SET title = $1, description = $2, content = $3, difficulty = $4,
		     duration_minutes = $5, order_index = $6, is_active = $7, updated_at = NOW()
		 WHERE id = $8
		 RETURNING created_at, updated_at`,
		m.Title, m.Description, m.Content, m.Difficulty, m.DurationMinutes, m.OrderIndex, m.IsActive, m.ID,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return notFound(err)
}

// Deactivate soft-deletes a module.
func (r *ModuleRepository) Deactivate(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE modules SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
