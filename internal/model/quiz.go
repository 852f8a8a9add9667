package model

import "time"

// Quiz is one question of a module's question bank.
type Quiz struct {
	ID            int       `json:"id"`
	ModuleID      int       `json:"module_id"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectOption int       `json:"correct_option"`
	Points        int       `json:"points"`
	Explanation   string    `json:"explanation"`
	CreatedAt     time.Time `json:"created_at"`
}

// PublicQuiz is a question as shown to a learner, without the answer key.
type PublicQuiz struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
}

// Public strips the answer key.
func (q *Quiz) Public() PublicQuiz {
	return PublicQuiz{ID: q.ID, Question: q.Question, Options: q.Options, Points: q.Points}
}

// ModuleRef identifies a module in responses.
type ModuleRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// QuizView is the learner-facing question set of a module.
type QuizView struct {
	Module         ModuleRef    `json:"module"`
	Questions      []PublicQuiz `json:"questions"`
	TotalQuestions int          `json:"total_questions"`
	TotalPoints    int          `json:"total_points"`
	PassThreshold  float64      `json:"pass_threshold"`
}

// SubmittedAnswer is one answer of a submission.
type SubmittedAnswer struct {
	QuizID         int  `json:"quiz_id" binding:"required,gt=0"`
	SelectedOption *int `json:"selected_option" binding:"required,min=0"`
}

// Selected returns the chosen option index, or -1 when absent.
func (a SubmittedAnswer) Selected() int {
	if a.SelectedOption == nil {
		return -1
	}
	return *a.SelectedOption
}

// QuizSubmission is the payload of a quiz attempt.
type QuizSubmission struct {
	ModuleID         int               `json:"module_id" binding:"required,gt=0"`
	// Each question may be answered at most once per submission.
	Answers          []SubmittedAnswer `json:"answers" binding:"required,unique=QuizID,dive"`
	TimeSpentMinutes *float64          `json:"time_spent_minutes" binding:"required,min=0"`
}

// TimeSpent returns the reported duration, or zero when absent.
func (s QuizSubmission) TimeSpent() float64 {
	if s.TimeSpentMinutes == nil {
		return 0
	}
	return *s.TimeSpentMinutes
}

// QuestionResult is the per-question feedback of a scored attempt.
type QuestionResult struct {
	QuizID         int    `json:"quiz_id"`
	Question       string `json:"question"`
	SelectedOption int    `json:"selected_option"`
	CorrectOption  int    `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
	Points         int    `json:"points"`
	PointsEarned   int    `json:"points_earned"`
	Explanation    string `json:"explanation"`
}

// SubmissionResult is returned after a quiz attempt.
type SubmissionResult struct {
	Score               float64          `json:"score"`
	Passed              bool             `json:"passed"`
	TotalQuestions      int              `json:"total_questions"`
	CorrectAnswers      int              `json:"correct_answers"`
	TotalPoints         int              `json:"total_points"`
	EarnedPoints        int              `json:"earned_points"`
	TimeSpentMinutes    float64          `json:"time_spent_minutes"`
	// CertificateEligible reflects the stored best result, so a failed
	// retry after a pass stays eligible.
	CertificateEligible bool             `json:"certificate_eligible"`
	BestScore           float64          `json:"best_score"`
	Improved            bool             `json:"improved"`
	DetailedResults     []QuestionResult `json:"detailed_results"`
	Module              ModuleRef        `json:"module"`
}

// CreateQuizRequest is the admin payload for a new question.
type CreateQuizRequest struct {
	Question      string   `json:"question" binding:"required,min=5"`
	Options       []string `json:"options" binding:"required,min=2,max=10,dive,required"`
	CorrectOption *int     `json:"correct_option" binding:"required,min=0"`
	Points        int      `json:"points" binding:"omitempty,min=1,max=100"`
	Explanation   string   `json:"explanation"`
}
