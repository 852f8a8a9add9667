package model

// AnalyticsOverview holds platform-wide counters.
type AnalyticsOverview struct {
	TotalUsers         int     `json:"total_users"`
	TotalAdmins        int     `json:"total_admins"`
	ActiveModules      int     `json:"active_modules"`
	TotalQuestions     int     `json:"total_questions"`
	TotalAttempts      int     `json:"total_attempts"`
	PassedAttempts     int     `json:"passed_attempts"`
	PassRate           float64 `json:"pass_rate"`
	AverageScore       float64 `json:"average_score"`
	CertificatesIssued int     `json:"certificates_issued"`
}

// ModuleCompletion holds per-module completion figures.
type ModuleCompletion struct {
	ModuleID       int     `json:"module_id"`
	Title          string  `json:"title"`
	Attempts       int     `json:"attempts"`
	Passed         int     `json:"passed"`
	AverageScore   float64 `json:"average_score"`
	CompletionRate float64 `json:"completion_rate"`
}

// LeaderboardEntry ranks a learner by passed modules then average score.
type LeaderboardEntry struct {
	UserID        int     `json:"user_id"`
	Name          string  `json:"name"`
	ModulesPassed int     `json:"modules_passed"`
	AverageScore  float64 `json:"average_score"`
}

// Analytics is the full admin dashboard payload.
type Analytics struct {
	Overview    AnalyticsOverview  `json:"overview"`
	Modules     []ModuleCompletion `json:"modules"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
