package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/repository"
)

// QuizService serves module quizzes and scores submissions.
type QuizService struct {
	modules   ModuleStore
	questions *QuestionCache
	results   ResultStore
	log       zerolog.Logger
	now       func() time.Time
}

// NewQuizService creates a new QuizService.
func NewQuizService(modules ModuleStore, questions *QuestionCache, results ResultStore, log zerolog.Logger) *QuizService {
	return &QuizService{
		modules:   modules,
		questions: questions,
		results:   results,
		log:       log.With().Str("component", "quiz_service").Logger(),
		now:       time.Now,
	}
}

func (s *QuizService) activeModule(ctx context.Context, moduleID int) (*model.Module, error) {
	module, err := s.modules.GetActiveByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("get module: %w", err)
	}
	return module, nil
}

func (s *QuizService) bank(ctx context.Context, moduleID int) ([]model.Quiz, error) {
	questions, err := s.questions.Get(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

// GetQuiz returns a module's questions without the answer key.
func (s *QuizService) GetQuiz(ctx context.Context, moduleID int) (*model.QuizView, error) {
	module, err := s.activeModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	questions, err := s.bank(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	view := &model.QuizView{
		Module:         model.ModuleRef{ID: module.ID, Title: module.Title},
		Questions:      make([]model.PublicQuiz, 0, len(questions)),
		TotalQuestions: len(questions),
		PassThreshold:  PassThreshold,
	}
	for i := range questions {
		view.Questions = append(view.Questions, questions[i].Public())
		view.TotalPoints += questions[i].Points
	}
	return view, nil
}

// Submit scores a submission and stores it when it beats the user's best.
// certificate_eligible reflects the stored best result.
func (s *QuizService) Submit(ctx context.Context, userID int, sub *model.QuizSubmission) (*model.SubmissionResult, error) {
	module, err := s.activeModule(ctx, sub.ModuleID)
	if err != nil {
		return nil, err
	}
	questions, err := s.bank(ctx, sub.ModuleID)
	if err != nil {
		return nil, err
	}

	card := Score(questions, sub.Answers)

	best, improved, err := s.results.UpsertBest(ctx, &model.Result{
		UserID:           userID,
		ModuleID:         module.ID,
		Score:            card.Percentage,
		TotalQuestions:   card.TotalQuestions,
		CorrectAnswers:   card.CorrectAnswers,
		Passed:           card.Passed,
		TimeSpentMinutes: sub.TimeSpent(),
		CompletedAt:      s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	s.log.Debug().
		Int("user_id", userID).
		Int("module_id", module.ID).
		Float64("score", card.Percentage).
		Bool("improved", improved).
		Msg("quiz scored")

	return &model.SubmissionResult{
		Score:               card.Percentage,
		Passed:              card.Passed,
		TotalQuestions:      card.TotalQuestions,
		CorrectAnswers:      card.CorrectAnswers,
		TotalPoints:         card.TotalPoints,
		EarnedPoints:        card.EarnedPoints,
		TimeSpentMinutes:    sub.TimeSpent(),
		CertificateEligible: Eligible(best),
		BestScore:           best.Score,
		Improved:            improved,
		DetailedResults:     card.Details,
		Module:              model.ModuleRef{ID: module.ID, Title: module.Title},
	}, nil
}
