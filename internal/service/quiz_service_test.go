package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

type quizFixture struct {
	svc     *QuizService
	results *fakeResults
}

func newQuizFixture(bank ...model.Quiz) quizFixture {
	modules := newFakeModules(
		&model.Module{ID: 1, Title: "Phishing", IsActive: true},
		&model.Module{ID: 2, Title: "Retired", IsActive: false},
		&model.Module{ID: 3, Title: "Empty", IsActive: true},
	)
	results := newFakeResults()
	cache := NewQuestionCache(newFakeQuizzes(bank...), nil, time.Minute, zerolog.Nop())
	return quizFixture{
		svc:     NewQuizService(modules, cache, results, zerolog.Nop()),
		results: results,
	}
}

// fiveQuestions is a one-point bank for module 1 whose answer is always 1.
func fiveQuestions() []model.Quiz {
	return bankOf(1, 1, 1, 1, 1)
}

// submission answers the first n questions correctly and the rest wrong.
func submission(n int) *model.QuizSubmission {
	spent := 4.5
	sub := &model.QuizSubmission{ModuleID: 1, TimeSpentMinutes: &spent}
	for id := 1; id <= 5; id++ {
		choice := 0
		if id <= n {
			choice = 1
		}
		sub.Answers = append(sub.Answers, answer(id, choice))
	}
	return sub
}

func TestGetQuizHidesAnswers(t *testing.T) {
	f := newQuizFixture(fiveQuestions()...)

	view, err := f.svc.GetQuiz(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if view.TotalQuestions != 5 || view.TotalPoints != 5 || view.PassThreshold != PassThreshold {
		t.Fatalf("view = %+v", view)
	}
	if view.Module.Title != "Phishing" {
		t.Fatalf("module = %+v", view.Module)
	}
}

func TestSubmitErrors(t *testing.T) {
	f := newQuizFixture(fiveQuestions()...)
	ctx := context.Background()

	tests := []struct {
		name     string
		moduleID int
		want     error
	}{
		{"missing module", 99, ErrModuleNotFound},
		{"inactive module", 2, ErrModuleNotFound},
		{"module without questions", 3, ErrNoQuestions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := submission(5)
			sub.ModuleID = tt.moduleID
			if _, err := f.svc.Submit(ctx, 1, sub); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubmitKeepsBestScore(t *testing.T) {
	f := newQuizFixture(fiveQuestions()...)
	ctx := context.Background()

	steps := []struct {
		correct       int
		wantScore     float64
		wantBest      float64
		wantImproved  bool
		wantEligible  bool
		wantCompleted int // step whose submission time is stored
	}{
		{correct: 3, wantScore: 60, wantBest: 60, wantImproved: true, wantEligible: false, wantCompleted: 0},
		{correct: 5, wantScore: 100, wantBest: 100, wantImproved: true, wantEligible: true, wantCompleted: 1},
		{correct: 2, wantScore: 40, wantBest: 100, wantImproved: false, wantEligible: true, wantCompleted: 1},
		{correct: 5, wantScore: 100, wantBest: 100, wantImproved: false, wantEligible: true, wantCompleted: 1},
	}

	start := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	stepTime := func(i int) time.Time { return start.Add(time.Duration(i) * time.Hour) }

	for i, st := range steps {
		at := stepTime(i)
		f.svc.now = func() time.Time { return at }

		res, err := f.svc.Submit(ctx, 1, submission(st.correct))
		if err != nil {
			t.Fatalf("step %d: Submit: %v", i, err)
		}
		if res.Score != st.wantScore || res.BestScore != st.wantBest {
			t.Fatalf("step %d: score/best = %v/%v, want %v/%v", i, res.Score, res.BestScore, st.wantScore, st.wantBest)
		}
		if res.Improved != st.wantImproved {
			t.Fatalf("step %d: improved = %v, want %v", i, res.Improved, st.wantImproved)
		}
		if res.CertificateEligible != st.wantEligible {
			t.Fatalf("step %d: eligible = %v, want %v", i, res.CertificateEligible, st.wantEligible)
		}
		if got := f.results.get(1, 1).CompletedAt; !got.Equal(stepTime(st.wantCompleted)) {
			t.Fatalf("step %d: completed_at = %v, want %v", i, got, stepTime(st.wantCompleted))
		}
	}

	stored := f.results.get(1, 1)
	if stored == nil || stored.Score != 100 || !stored.Passed {
		t.Fatalf("stored = %+v, want passed 100", stored)
	}
}

func TestSubmitConcurrentKeepsMaximum(t *testing.T) {
	f := newQuizFixture(fiveQuestions()...)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := f.svc.Submit(ctx, 1, submission(n%6)); err != nil {
				t.Errorf("Submit: %v", err)
			}
		}(i)
	}
	wg.Wait()

	stored := f.results.get(1, 1)
	if stored == nil || stored.Score != 100 {
		t.Fatalf("stored = %+v, want best score 100", stored)
	}
}
