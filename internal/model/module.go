package model

import "time"

// Difficulty grades a training module.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Module is a unit of training content with an attached question bank.
type Module struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Content         string     `json:"content,omitempty"`
	Difficulty      Difficulty `json:"difficulty"`
	DurationMinutes int        `json:"duration_minutes"`
	OrderIndex      int        `json:"order_index"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ModuleProgress is the caller's best result on a module, if any.
type ModuleProgress struct {
	Score       *float64   `json:"score"`
	Passed      bool       `json:"passed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// ModuleWithProgress is a module listing row for a learner.
type ModuleWithProgress struct {
	Module
	Progress ModuleProgress `json:"progress"`
}

// ModuleWithStats is a module listing row for administrators.
type ModuleWithStats struct {
	Module
	QuestionCount int     `json:"question_count"`
	Attempts      int     `json:"attempts"`
	PassedCount   int     `json:"passed_count"`
	AverageScore  float64 `json:"average_score"`
}

// CreateModuleRequest is the admin payload for a new module.
type CreateModuleRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=255"`
	Description     string     `json:"description" binding:"required,min=10"`
	Content         string     `json:"content" binding:"required,min=10"`
	Difficulty      Difficulty `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=5,max=180"`
	OrderIndex      int        `json:"order_index" binding:"min=0"`
}

// UpdateModuleRequest is the admin payload for changing a module.
type UpdateModuleRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=255"`
	Description     string     `json:"description" binding:"required,min=10"`
	Content         string     `json:"content" binding:"required,min=10"`
	Difficulty      Difficulty `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=5,max=180"`
	OrderIndex      int        `json:"order_index" binding:"min=0"`
	IsActive        *bool      `json:"is_active"`
}
