package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// LeaderboardSize is the number of learners shown on the leaderboard.
const LeaderboardSize = 10

// AnalyticsService assembles the admin reporting views.
type AnalyticsService struct {
	store AnalyticsStore
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Get returns the overview, per-module completion and leaderboard.
func (s *AnalyticsService) Get(ctx context.Context) (*model.Analytics, error) {
	overview, err := s.store.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	modules, err := s.store.ModuleCompletion(ctx)
	if err != nil {
		return nil, fmt.Errorf("module completion: %w", err)
	}
	leaders, err := s.store.Leaderboard(ctx, LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return &model.Analytics{Overview: *overview, Modules: modules, Leaderboard: leaders}, nil
}

// ExportWorkbook renders the analytics as an XLSX workbook with one sheet per view.
func (s *AnalyticsService) ExportWorkbook(ctx context.Context) (*bytes.Buffer, error) {
	a, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return BuildAnalyticsWorkbook(a)
}

// BuildAnalyticsWorkbook writes analytics into a new XLSX document.
func BuildAnalyticsWorkbook(a *model.Analytics) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const overviewSheet = "Overview"
	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return nil, err
	}
	o := a.Overview
	overview := [][]interface{}{
		{"Metric", "Value"},
		{"Learners", o.TotalUsers},
		{"Administrators", o.TotalAdmins},
		{"Active modules", o.ActiveModules},
		{"Questions", o.TotalQuestions},
		{"Attempts", o.TotalAttempts},
		{"Passed attempts", o.PassedAttempts},
		{"Pass rate (%)", o.PassRate},
		{"Average score (%)", o.AverageScore},
		{"Certificates issued", o.CertificatesIssued},
	}
	if err := writeRows(f, overviewSheet, overview); err != nil {
		return nil, err
	}

	modules := [][]interface{}{{"Module ID", "Title", "Attempts", "Passed", "Average score (%)", "Completion rate (%)"}}
	for _, m := range a.Modules {
		modules = append(modules, []interface{}{m.ModuleID, m.Title, m.Attempts, m.Passed, m.AverageScore, m.CompletionRate})
	}
	if err := writeSheet(f, "Modules", modules); err != nil {
		return nil, err
	}

	leaders := [][]interface{}{{"Rank", "User ID", "Name", "Modules passed", "Average score (%)"}}
	for i, l := range a.Leaderboard {
		leaders = append(leaders, []interface{}{i + 1, l.UserID, l.Name, l.ModulesPassed, l.AverageScore})
	}
	if err := writeSheet(f, "Leaderboard", leaders); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
