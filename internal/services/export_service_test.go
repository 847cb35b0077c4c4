package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

func newExportFixture(t *testing.T) (ExportService, *MockTemplateRepository, *MockReportRepository) {
	t.Helper()
	templates, templateRepo, _ := newTemplateService(t)
	reports := new(MockReportRepository)
	return NewExportService(templates, reports, discardLogger()), templateRepo, reports
}

func TestExportService_ExportTemplateReports(t *testing.T) {
	svc, templateRepo, reports := newExportFixture(t)
	templateRepo.On("GetByID", mock.Anything, (*gorm.DB)(nil), "tpl-1").Return(&models.AssessmentTemplate{ID: "tpl-1"}, nil)

	inviteID := "inv-1"
	report, err := models.NewAssessmentReport("rep-1", "sess-1", "ana@example.com", models.Selection{RoleID: "backend-dev"},
		models.Result{
			OverallScore:     67,
			ProficiencyLevel: 4,
			SkillResults: []models.SkillResult{{
				SkillID:          "api-design",
				SkillName:        "API Design",
				ProficiencyLevel: 4,
				TaskResults: []models.TaskResult{
					{TaskID: "rest-endpoints", Correct: true},
					{TaskID: "api-versioning", Correct: true},
					{TaskID: "graphql-schema", Correct: false},
				},
			}},
		}, epoch)
	require.NoError(t, err)
	report.InviteID = &inviteID
	reports.On("ListByTemplate", mock.Anything, (*gorm.DB)(nil), "tpl-1").Return([]*models.AssessmentReport{report}, nil)

	data, err := svc.ExportTemplateReports(context.Background(), "tpl-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{candidatesSheet, skillsSheet}, f.GetSheetList())

	candidates, err := f.GetRows(candidatesSheet)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, candidateHeaders, candidates[0])
	assert.Equal(t, "ana@example.com", candidates[1][0])
	assert.Equal(t, "inv-1", candidates[1][1])
	assert.Equal(t, "67", candidates[1][2])

	skills, err := f.GetRows(skillsSheet)
	require.NoError(t, err)
	require.Len(t, skills, 2)
	require.Len(t, skills[1], len(skillHeaders))
	assert.Equal(t, "API Design", skills[1][1])
	assert.Equal(t, "3", skills[1][4])
	assert.Equal(t, "2", skills[1][5])
}

func TestExportService_ExportUnknownTemplate(t *testing.T) {
	svc, templateRepo, reports := newExportFixture(t)
	templateRepo.On("GetByID", mock.Anything, (*gorm.DB)(nil), "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.ExportTemplateReports(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	reports.AssertNotCalled(t, "ListByTemplate", mock.Anything, mock.Anything, mock.Anything)
}

func importWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		require.NoError(t, writeRow(f, "Sheet1", i+1, row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestExportService_ImportTemplates(t *testing.T) {
	svc, templateRepo, _ := newExportFixture(t)
	templateRepo.On("Create", mock.Anything, (*gorm.DB)(nil), mock.AnythingOfType("*models.AssessmentTemplate")).Return(nil)

	buf := importWorkbook(t, [][]interface{}{
		{"Name", "Role_ID", "Mode", "Skill_IDs", "Task_IDs"},
		{"Backend API screen", "backend-dev", "Skill", "api-design", "rest-endpoints; api-versioning"},
		{"Broken", "backend-dev", "skill", "api-design", "terraform"},
		{"Cloud panel", "cloud-architect", "persona", "containers,infrastructure", "k8s-deploy,terraform"},
	})

	result, err := svc.ImportTemplates(context.Background(), buf, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)

	require.Len(t, result.Templates, 2)
	assert.Equal(t, models.ModeSkill, result.Templates[0].Mode)
	assert.Equal(t, []string{"rest-endpoints", "api-versioning"}, result.Templates[0].Tasks())
	assert.Equal(t, []string{"containers", "infrastructure"}, result.Templates[1].Skills())
	templateRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestExportService_ImportRejectsMissingColumn(t *testing.T) {
	svc, _, _ := newExportFixture(t)
	buf := importWorkbook(t, [][]interface{}{
		{"name", "mode", "skill_ids", "task_ids"},
		{"No role", "skill", "api-design", "rest-endpoints"},
	})

	_, err := svc.ImportTemplates(context.Background(), buf, "admin-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSpreadsheet)
	assert.True(t, IsValidation(err))
}

func TestExportService_ImportRejectsGarbage(t *testing.T) {
	svc, _, _ := newExportFixture(t)

	_, err := svc.ImportTemplates(context.Background(), bytes.NewReader([]byte("not a workbook")), "admin-1")
	assert.ErrorIs(t, err, ErrInvalidSpreadsheet)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList(" a, b;c ,"))
	assert.Empty(t, splitList(""))
}
