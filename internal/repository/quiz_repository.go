package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

// QuizRepository handles question bank data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

func scanQuiz(row pgx.Row) (*model.Quiz, error) {
	q := &model.Quiz{}
	var options []byte
	if err := row.Scan(&q.ID, &q.ModuleID, &q.Question, &options, &q.CorrectOption,
		&q.Points, &q.Explanation, &q.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return nil, fmt.Errorf("decode options of quiz %d: %w", q.ID, err)
	}
	return q, nil
}

// ListByModule returns the question bank of a module in insertion order.
func (r *QuizRepository) ListByModule(ctx context.Context, moduleID int) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, module_id, question, options, correct_option, points, explanation, created_at
		 FROM quizzes WHERE module_id = $1 ORDER BY id`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]model.Quiz, 0)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuizRepository) GetByID(ctx context.Context, id int) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT id, module_id, question, options, correct_option, points, explanation, created_at
		 FROM quizzes WHERE id = $1`, id))
}

// Create inserts a new question.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (module_id, question, options, correct_option, points, explanation)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		q.ModuleID, q.Question, options, q.CorrectOption, q.Points, q.Explanation,
	).Scan(&q.ID, &q.CreatedAt)
}

// Update rewrites a question in place.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET question = $1, options = $2, correct_option = $3, points = $4, explanation = $5
		 WHERE id = $6 AND module_id = $7`,
		q.Question, options, q.CorrectOption, q.Points, q.Explanation, q.ID, q.ModuleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a question from a module.
func (r *QuizRepository) Delete(ctx context.Context, moduleID, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1 AND module_id = $2`, id, moduleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkCreate inserts many questions in one round-trip using UNNEST.
func (r *QuizRepository) BulkCreate(ctx context.Context, quizzes []model.Quiz) error {
	if len(quizzes) == 0 {
		return nil
	}
	n := len(quizzes)
	moduleIDs := make([]int, n)
	questions := make([]string, n)
	options := make([]string, n)
	corrects := make([]int, n)
	points := make([]int, n)
	explanations := make([]string, n)
	for i, q := range quizzes {
		raw, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		moduleIDs[i] = q.ModuleID
		questions[i] = q.Question
		options[i] = string(raw)
		corrects[i] = q.CorrectOption
		points[i] = q.Points
		explanations[i] = q.Explanation
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO quizzes (module_id, question, options, correct_option, points, explanation)
		 SELECT u.module_id, u.question, u.options::jsonb, u.correct_option, u.points, u.explanation
		 FROM UNNEST($1::int[], $2::text[], $3::text[], $4::int[], $5::int[], $6::text[])
		      AS u (module_id, question, options, correct_option, points, explanation)`,
		moduleIDs, questions, options, corrects, points, explanations)
	return err
}
