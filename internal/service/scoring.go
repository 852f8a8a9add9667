package service

import "github.com/smsi-platform/smsi-backend/internal/model"

// PassThreshold is the minimum percentage that passes a module quiz.
const PassThreshold = 80.0

// Scorecard is the outcome of scoring one submission against a question bank.
type Scorecard struct {
	TotalQuestions int
	CorrectAnswers int
	TotalPoints    int
	EarnedPoints   int
	Percentage     float64
	Passed         bool
	Details        []model.QuestionResult
}

// Score grades answers against the module's questions.
//
// Answers whose quiz_id is not in the bank are ignored. Totals accumulate only
// over matched answers, so unanswered questions count toward neither total.
// TotalQuestions is the size of the bank.
func Score(questions []model.Quiz, answers []model.SubmittedAnswer) Scorecard {
	bank := make(map[int]*model.Quiz, len(questions))
	for i := range questions {
		bank[questions[i].ID] = &questions[i]
	}

	card := Scorecard{
		TotalQuestions: len(questions),
		Details:        make([]model.QuestionResult, 0, len(answers)),
	}

	for _, a := range answers {
		q, ok := bank[a.QuizID]
		if !ok {
			continue
		}

		selected := a.Selected()
		correct := selected == q.CorrectOption
		earned := 0
		if correct {
			earned = q.Points
			card.CorrectAnswers++
		}

		card.TotalPoints += q.Points
		card.EarnedPoints += earned
		card.Details = append(card.Details, model.QuestionResult{
			QuizID:         q.ID,
			Question:       q.Question,
			SelectedOption: selected,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      correct,
			Points:         q.Points,
			PointsEarned:   earned,
			Explanation:    q.Explanation,
		})
	}

	if card.TotalPoints > 0 {
		card.Percentage = float64(card.EarnedPoints*100) / float64(card.TotalPoints)
	}
	card.Passed = card.Percentage >= PassThreshold

	return card
}
