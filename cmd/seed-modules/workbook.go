package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	modulesSheet   = "Modules"
	questionsSheet = "Questions"

	// Questions columns before the variable-length option list.
	questionFixedCols = 5
)

var (
	moduleHeader   = []interface{}{"Title", "Description", "Content", "Difficulty", "Duration (min)", "Order"}
	questionHeader = []interface{}{"Module", "Question", "Correct", "Points", "Explanation", "Option A", "Option B", "Option C", "Option D"}
)

// seedModule is one module row together with the questions that name it.
type seedModule struct {
	Request   model.CreateModuleRequest
	Questions []model.CreateQuizRequest
}

// writeTemplate creates an empty workbook with the expected headers and
// one example row per sheet.
func writeTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", modulesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(questionsSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(modulesSheet, "A1", &moduleHeader); err != nil {
		return err
	}
	example := []interface{}{
		"Phishing Awareness",
		"Recognise and report phishing attempts.",
		"Phishing messages imitate trusted senders to steal credentials...",
		"beginner", 15, 1,
	}
	if err := f.SetSheetRow(modulesSheet, "A2", &example); err != nil {
		return err
	}

	if err := f.SetSheetRow(questionsSheet, "A1", &questionHeader); err != nil {
		return err
	}
	exampleQ := []interface{}{
		"Phishing Awareness",
		"Which sign most reliably indicates a phishing email?",
		"B", 1,
		"Mismatched sender domains are the strongest indicator.",
		"A friendly greeting",
		"A sender domain that does not match the organisation",
		"An attachment",
		"A signature block",
	}
	if err := f.SetSheetRow(questionsSheet, "A2", &exampleQ); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// parseWorkbook reads modules and their questions. Questions reference
// modules by exact title; an unknown title is an error.
func parseWorkbook(f *excelize.File) ([]*seedModule, error) {
	moduleRows, err := f.GetRows(modulesSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", modulesSheet, err)
	}

	modules := make([]*seedModule, 0, len(moduleRows))
	byTitle := make(map[string]*seedModule)

	for i, row := range moduleRows {
		if i == 0 || blank(row) {
			continue
		}
		line := i + 1
		duration, err := cellInt(row, 4, 0)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: duration: %w", modulesSheet, line, err)
		}
		order, err := cellInt(row, 5, 0)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: order: %w", modulesSheet, line, err)
		}

		m := &seedModule{Request: model.CreateModuleRequest{
			Title:           cell(row, 0),
			Description:     cell(row, 1),
			Content:         cell(row, 2),
			Difficulty:      model.Difficulty(strings.ToLower(cell(row, 3))),
			DurationMinutes: duration,
			OrderIndex:      order,
		}}
		if _, dup := byTitle[m.Request.Title]; dup {
			return nil, fmt.Errorf("%s row %d: duplicate title %q", modulesSheet, line, m.Request.Title)
		}
		byTitle[m.Request.Title] = m
		modules = append(modules, m)
	}

	questionRows, err := f.GetRows(questionsSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", questionsSheet, err)
	}

	for i, row := range questionRows {
		if i == 0 || blank(row) {
			continue
		}
		line := i + 1

		m, ok := byTitle[cell(row, 0)]
		if !ok {
			return nil, fmt.Errorf("%s row %d: unknown module %q", questionsSheet, line, cell(row, 0))
		}

		var options []string
		for c := questionFixedCols; c < len(row); c++ {
			if opt := strings.TrimSpace(row[c]); opt != "" {
				options = append(options, opt)
			}
		}

		correct, err := parseCorrect(cell(row, 2))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: correct: %w", questionsSheet, line, err)
		}
		points, err := cellInt(row, 3, 1)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: points: %w", questionsSheet, line, err)
		}

		m.Questions = append(m.Questions, model.CreateQuizRequest{
			Question:      cell(row, 1),
			Options:       options,
			CorrectOption: &correct,
			Points:        points,
			Explanation:   cell(row, 4),
		})
	}

	return modules, nil
}

// parseCorrect accepts an option letter (A, B, ...) or a 1-based number
// and returns the 0-based option index.
func parseCorrect(v string) (int, error) {
	v = strings.TrimSpace(strings.ToUpper(v))
	if v == "" {
		return 0, fmt.Errorf("missing")
	}
	if len(v) == 1 && v[0] >= 'A' && v[0] <= 'Z' {
		return int(v[0] - 'A'), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q is neither a letter nor a 1-based number", v)
	}
	return n - 1, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellInt(row []string, i, def int) (int, error) {
	v := cell(row, i)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
