package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

const userColumns = `id, name, email, password_hash, role, consent_rgpd, consent_date, last_login, created_at, updated_at`

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.ConsentRGPD, &u.ConsentDate, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by their unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts a new user. Returns ErrDuplicateEmail on a taken email.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, consent_rgpd, consent_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.ConsentRGPD, u.ConsentDate,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// Update writes name, email, role and password hash of an existing user.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = $1, email = $2, role = $3, password_hash = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		u.Name, u.Email, u.Role, u.PasswordHash, u.ID,
	).Scan(&u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return notFound(err)
}

// UpdateLastLogin stamps the last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	return err
}

// Delete removes a user. Results cascade, audit references are nulled.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Erase removes every trace of a user in a single transaction:
// results, audit log references, then the account itself.
func (r *UserRepository) Erase(ctx context.Context, id int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM results WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE audit_logs SET user_id = NULL, ip_address = NULL, user_agent = NULL WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("anonymize audit logs: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// ListWithStats returns a page of users with training statistics and the total count.
func (r *UserRepository) ListWithStats(ctx context.Context, limit, offset int) ([]model.UserWithStats, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, u.role, u.consent_rgpd, u.consent_date, u.last_login,
		        u.created_at, u.updated_at,
		        COUNT(res.id), COUNT(res.id) FILTER (WHERE res.passed),
		        COALESCE(AVG(res.score), 0)
		 FROM users u
		 LEFT JOIN results res ON res.user_id = u.id
		 GROUP BY u.id
		 ORDER BY u.created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]model.UserWithStats, 0, limit)
	for rows.Next() {
		var u model.UserWithStats
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.ConsentRGPD, &u.ConsentDate,
			&u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
			&u.ModulesCompleted, &u.ModulesPassed, &u.AverageScore); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
