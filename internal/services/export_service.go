package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
)

const (
	candidatesSheet = "Candidates"
	skillsSheet     = "Skills"
)

var candidateHeaders = []string{
	"Candidate", "Invite ID", "Overall Score", "Proficiency Level", "Percentile", "Accuracy",
	"Integrity Score", "Tab Switches", "Face Detection Issues", "Time Taken (s)",
	"Questions Answered", "Total Questions", "Completed At",
}

var skillHeaders = []string{"Candidate", "Skill", "Proficiency Level", "Strength", "Questions", "Correct Answers"}

// Import columns, matched case-insensitively against the header row
var importColumns = []string{"name", "description", "role_id", "mode", "skill_ids", "task_ids"}

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	TotalRows    int                          `json:"total_rows"`
	SuccessCount int                          `json:"success_count"`
	ErrorCount   int                          `json:"error_count"`
	Errors       []ImportRowError             `json:"errors"`
	Templates    []*models.AssessmentTemplate `json:"templates"`
}

type exportService struct {
	templates TemplateService
	reports   repositories.ReportRepository
	logger    *slog.Logger
}

func NewExportService(templates TemplateService, reports repositories.ReportRepository, logger *slog.Logger) ExportService {
	return &exportService{
		templates: templates,
		reports:   reports,
		logger:    logger,
	}
}

func (s *exportService) ExportTemplateReports(ctx context.Context, templateID string) ([]byte, error) {
	s.logger.Info("Exporting template reports", "template_id", templateID)

	if _, err := s.templates.GetByID(ctx, templateID); err != nil {
		return nil, err
	}
	reports, err := s.reports.ListByTemplate(ctx, nil, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", candidatesSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet(skillsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeRow(f, candidatesSheet, 1, toCells(candidateHeaders)); err != nil {
		return nil, err
	}
	if err := writeRow(f, skillsSheet, 1, toCells(skillHeaders)); err != nil {
		return nil, err
	}

	skillRow := 2
	for i, report := range reports {
		inviteID := ""
		if report.InviteID != nil {
			inviteID = *report.InviteID
		}
		row := []interface{}{
			report.CandidateID, inviteID, report.OverallScore, report.ProficiencyLevel, report.Percentile,
			report.Accuracy, report.IntegrityScore, report.TabSwitches, report.FaceDetectionIssues,
			report.TimeTakenSeconds, report.QuestionsAnswered, report.TotalQuestions,
			report.CompletedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, candidatesSheet, i+2, row); err != nil {
			return nil, err
		}

		res, err := report.Result()
		if err != nil {
			return nil, err
		}
		for _, skill := range res.SkillResults {
			correct := 0
			for _, task := range skill.TaskResults {
				if task.Correct {
					correct++
				}
			}
			row := []interface{}{report.CandidateID, skill.SkillName, skill.ProficiencyLevel, skill.IsStrength, len(skill.TaskResults), correct}
			if err := writeRow(f, skillsSheet, skillRow, row); err != nil {
				return nil, err
			}
			skillRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Template reports exported successfully", "template_id", templateID, "reports", len(reports))
	return buf.Bytes(), nil
}

func (s *exportService) ImportTemplates(ctx context.Context, reader io.Reader, creatorID string) (*ImportResult, error) {
	s.logger.Info("Importing templates", "creator_id", creatorID)

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrInvalidSpreadsheet)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: header row and at least one data row required", ErrInvalidSpreadsheet)
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range importColumns {
		if _, ok := headerMap[col]; !ok && col != "description" {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidSpreadsheet, col)
		}
	}

	result := &ImportResult{TotalRows: len(rows) - 1}
	for i, row := range rows[1:] {
		rowNum := i + 2
		req := parseTemplateRow(row, headerMap)
		template, err := s.templates.Create(ctx, req, creatorID)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.SuccessCount++
		result.Templates = append(result.Templates, template)
	}

	s.logger.Info("Template import completed",
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)
	return result, nil
}

func parseTemplateRow(row []string, headerMap map[string]int) *models.TemplateRequest {
	cell := func(col string) string {
		i, ok := headerMap[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return &models.TemplateRequest{
		Name:        cell("name"),
		Description: cell("description"),
		RoleID:      cell("role_id"),
		Mode:        models.AssessmentMode(strings.ToLower(cell("mode"))),
		SkillIDs:    splitList(cell("skill_ids")),
		TaskIDs:     splitList(cell("task_ids")),
	}
}

// splitList splits a comma or semicolon separated cell
func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
