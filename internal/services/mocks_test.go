package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

// MockTemplateRepository is a mock implementation of TemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, tx *gorm.DB, template *models.AssessmentTemplate) error {
	args := m.Called(ctx, tx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AssessmentTemplate, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentTemplate), args.Error(1)
}

func (m *MockTemplateRepository) Update(ctx context.Context, tx *gorm.DB, template *models.AssessmentTemplate) error {
	args := m.Called(ctx, tx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockTemplateRepository) List(ctx context.Context, tx *gorm.DB, filters models.TemplateFilters) ([]*models.AssessmentTemplate, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.AssessmentTemplate), args.Get(1).(int64), args.Error(2)
}

func (m *MockTemplateRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(int64), args.Error(1)
}

// MockInviteRepository is a mock implementation of InviteRepository
type MockInviteRepository struct {
	mock.Mock
}

func (m *MockInviteRepository) CreateBatch(ctx context.Context, tx *gorm.DB, invites []*models.Invite) error {
	args := m.Called(ctx, tx, invites)
	return args.Error(0)
}

func (m *MockInviteRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Invite, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteRepository) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Invite, error) {
	args := m.Called(ctx, tx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteRepository) Update(ctx context.Context, tx *gorm.DB, invite *models.Invite) error {
	args := m.Called(ctx, tx, invite)
	return args.Error(0)
}

func (m *MockInviteRepository) List(ctx context.Context, tx *gorm.DB, filters models.CandidateFilters) ([]*models.Invite, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.Invite), args.Get(1).(int64), args.Error(2)
}

func (m *MockInviteRepository) ExistingEmails(ctx context.Context, tx *gorm.DB, templateID string, emails []string) (map[string]bool, error) {
	args := m.Called(ctx, tx, templateID, emails)
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockInviteRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteRepository) CountByStatus(ctx context.Context, tx *gorm.DB, status models.InviteStatus) (int64, error) {
	args := m.Called(ctx, tx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteRepository) HasInvites(ctx context.Context, tx *gorm.DB, templateID string) (bool, error) {
	args := m.Called(ctx, tx, templateID)
	return args.Bool(0), args.Error(1)
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, tx *gorm.DB, report *models.AssessmentReport) error {
	args := m.Called(ctx, tx, report)
	return args.Error(0)
}

func (m *MockReportRepository) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*models.AssessmentReport, error) {
	args := m.Called(ctx, tx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentReport), args.Error(1)
}

func (m *MockReportRepository) GetByInviteID(ctx context.Context, tx *gorm.DB, inviteID string) (*models.AssessmentReport, error) {
	args := m.Called(ctx, tx, inviteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentReport), args.Error(1)
}

func (m *MockReportRepository) ListByTemplate(ctx context.Context, tx *gorm.DB, templateID string) ([]*models.AssessmentReport, error) {
	args := m.Called(ctx, tx, templateID)
	return args.Get(0).([]*models.AssessmentReport), args.Error(1)
}

func (m *MockReportRepository) AverageScore(ctx context.Context, tx *gorm.DB) (float64, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(float64), args.Error(1)
}

// MockProctoringRepository is a mock implementation of ProctoringRepository
type MockProctoringRepository struct {
	mock.Mock
}

func (m *MockProctoringRepository) Create(ctx context.Context, tx *gorm.DB, event *models.ProctoringEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

func (m *MockProctoringRepository) ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.ProctoringEvent, error) {
	args := m.Called(ctx, tx, sessionID)
	return args.Get(0).([]*models.ProctoringEvent), args.Error(1)
}
