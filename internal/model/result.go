package model

import "time"

// Result is the durable best-score record of a user on a module.
type Result struct {
	ID                   int       `json:"id"`
	UserID               int       `json:"user_id"`
	ModuleID             int       `json:"module_id"`
	Score                float64   `json:"score"`
	TotalQuestions       int       `json:"total_questions"`
	CorrectAnswers       int       `json:"correct_answers"`
	Passed               bool      `json:"passed"`
	TimeSpentMinutes     float64   `json:"time_spent_minutes"`
	CertificateGenerated bool      `json:"certificate_generated"`
	CompletedAt          time.Time `json:"completed_at"`
}

// ResultWithModule is a result joined with its module title.
type ResultWithModule struct {
	Result
	ModuleTitle string `json:"module_title"`
}

// Certificate is a passed result surfaced as an earned certificate.
type Certificate struct {
	ModuleID             int       `json:"module_id"`
	ModuleTitle          string    `json:"module_title"`
	Score                float64   `json:"score"`
	CompletedAt          time.Time `json:"completed_at"`
	CertificateGenerated bool      `json:"certificate_generated"`
}

// UserProgress summarizes a user's training progress.
type UserProgress struct {
	TotalModules       int     `json:"total_modules"`
	CompletedModules   int     `json:"completed_modules"`
	PassedModules      int     `json:"passed_modules"`
	AverageScore       float64 `json:"average_score"`
	CertificatesEarned int     `json:"certificates_earned"`
	TotalTimeMinutes   float64 `json:"total_time_minutes"`
}

// GenerateCertificateRequest selects the module to certify.
type GenerateCertificateRequest struct {
	ModuleID int `json:"module_id" binding:"required,gt=0"`
}

// CertificateData is everything a renderer needs to draw a certificate.
type CertificateData struct {
	CertificateID string
	UserName      string
	UserEmail     string
	ModuleTitle   string
	Score         float64
	CompletedAt   time.Time
}

// GeneratedCertificate is a rendered certificate document.
type GeneratedCertificate struct {
	CertificateID string
	Filename      string
	ContentType   string
	Content       []byte
	FirstIssue    bool
}
