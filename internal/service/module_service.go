package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/repository"
)

// ModuleService handles training modules and their question banks.
type ModuleService struct {
	modules   ModuleStore
	quizzes   QuizStore
	results   ResultStore
	questions *QuestionCache
	log       zerolog.Logger
}

// NewModuleService creates a new ModuleService.
func NewModuleService(modules ModuleStore, quizzes QuizStore, results ResultStore, questions *QuestionCache, log zerolog.Logger) *ModuleService {
	return &ModuleService{
		modules:   modules,
		quizzes:   quizzes,
		results:   results,
		questions: questions,
		log:       log.With().Str("component", "module_service").Logger(),
	}
}

func moduleErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrModuleNotFound
	}
	return err
}

// ─── Learner ────────────────────────────────────────────────────────

// ListForUser lists active modules with the caller's progress.
func (s *ModuleService) ListForUser(ctx context.Context, userID int) ([]model.ModuleWithProgress, error) {
	modules, err := s.modules.ListActiveWithProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		modules = []model.ModuleWithProgress{}
	}
	return modules, nil
}

// GetActive returns an active module with its content.
func (s *ModuleService) GetActive(ctx context.Context, id int) (*model.Module, error) {
	m, err := s.modules.GetActiveByID(ctx, id)
	if err != nil {
		return nil, moduleErr(err)
	}
	return m, nil
}

// Progress summarizes the caller's training progress.
func (s *ModuleService) Progress(ctx context.Context, userID int) (*model.UserProgress, error) {
	return s.results.Progress(ctx, userID)
}

// ─── Admin ──────────────────────────────────────────────────────────

// ListWithStats lists every module, active or not, with counters.
func (s *ModuleService) ListWithStats(ctx context.Context) ([]model.ModuleWithStats, error) {
	modules, err := s.modules.ListWithStats(ctx)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		modules = []model.ModuleWithStats{}
	}
	return modules, nil
}

// Create adds a module.
func (s *ModuleService) Create(ctx context.Context, req *model.CreateModuleRequest) (*model.Module, error) {
	m := &model.Module{
		Title:           req.Title,
		Description:     req.Description,
		Content:         req.Content,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
		OrderIndex:      req.OrderIndex,
	}
	if err := s.modules.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create module: %w", err)
	}
	return m, nil
}

// Update changes a module. A nil IsActive keeps the current flag.
func (s *ModuleService) Update(ctx context.Context, id int, req *model.UpdateModuleRequest) (*model.Module, error) {
	m, err := s.modules.GetByID(ctx, id)
	if err != nil {
		return nil, moduleErr(err)
	}

	m.Title = req.Title
	m.Description = req.Description
	m.Content = req.Content
	m.Difficulty = req.Difficulty
	m.DurationMinutes = req.DurationMinutes
	m.OrderIndex = req.OrderIndex
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.modules.Update(ctx, m); err != nil {
		return nil, moduleErr(err)
	}
	return m, nil
}

// Delete soft-deletes a module; results are kept.
func (s *ModuleService) Delete(ctx context.Context, id int) error {
	if err := s.modules.Deactivate(ctx, id); err != nil {
		return moduleErr(err)
	}
	s.questions.Invalidate(ctx, id)
	return nil
}

// ListQuestions returns the full question bank, answer key included.
func (s *ModuleService) ListQuestions(ctx context.Context, moduleID int) ([]model.Quiz, error) {
	if _, err := s.modules.GetByID(ctx, moduleID); err != nil {
		return nil, moduleErr(err)
	}
	return s.quizzes.ListByModule(ctx, moduleID)
}

// AddQuestion appends a question to a module's bank.
func (s *ModuleService) AddQuestion(ctx context.Context, moduleID int, req *model.CreateQuizRequest) (*model.Quiz, error) {
	if _, err := s.modules.GetByID(ctx, moduleID); err != nil {
		return nil, moduleErr(err)
	}

	q, err := quizFromRequest(moduleID, req)
	if err != nil {
		return nil, err
	}
	if err := s.quizzes.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	s.questions.Invalidate(ctx, moduleID)
	return q, nil
}

// UpdateQuestion rewrites a question of a module.
func (s *ModuleService) UpdateQuestion(ctx context.Context, moduleID, quizID int, req *model.CreateQuizRequest) (*model.Quiz, error) {
	existing, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil || existing.ModuleID != moduleID {
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	q, err := quizFromRequest(moduleID, req)
	if err != nil {
		return nil, err
	}
	q.ID = quizID
	q.CreatedAt = existing.CreatedAt

	if err := s.quizzes.Update(ctx, q); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	s.questions.Invalidate(ctx, moduleID)
	return q, nil
}

// DeleteQuestion removes a question of a module.
func (s *ModuleService) DeleteQuestion(ctx context.Context, moduleID, quizID int) error {
	if err := s.quizzes.Delete(ctx, moduleID, quizID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuizNotFound
		}
		return err
	}
	s.questions.Invalidate(ctx, moduleID)
	return nil
}

// ImportQuestions appends a batch of questions to a module in one insert.
// The whole batch is rejected when any entry has an out-of-range answer.
func (s *ModuleService) ImportQuestions(ctx context.Context, moduleID int, reqs []model.CreateQuizRequest) (int, error) {
	if _, err := s.modules.GetByID(ctx, moduleID); err != nil {
		return 0, moduleErr(err)
	}

	quizzes := make([]model.Quiz, 0, len(reqs))
	for i := range reqs {
		q, err := quizFromRequest(moduleID, &reqs[i])
		if err != nil {
			return 0, fmt.Errorf("question %d: %w", i+1, err)
		}
		quizzes = append(quizzes, *q)
	}

	if err := s.quizzes.BulkCreate(ctx, quizzes); err != nil {
		return 0, fmt.Errorf("import questions: %w", err)
	}
	s.questions.Invalidate(ctx, moduleID)
	return len(quizzes), nil
}

func quizFromRequest(moduleID int, req *model.CreateQuizRequest) (*model.Quiz, error) {
	if req.CorrectOption == nil || *req.CorrectOption < 0 || *req.CorrectOption >= len(req.Options) {
		return nil, ErrInvalidAnswer
	}
	points := req.Points
	if points == 0 {
		points = 1
	}
	return &model.Quiz{
		ModuleID:      moduleID,
		Question:      req.Question,
		Options:       req.Options,
		CorrectOption: *req.CorrectOption,
		Points:        points,
		Explanation:   req.Explanation,
	}, nil
}
