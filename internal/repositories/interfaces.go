package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

// TemplateRepository persists admin-defined assessment templates
type TemplateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, template *models.AssessmentTemplate) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AssessmentTemplate, error)
	Update(ctx context.Context, tx *gorm.DB, template *models.AssessmentTemplate) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters models.TemplateFilters) ([]*models.AssessmentTemplate, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

// InviteRepository persists candidate invites
type InviteRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, invites []*models.Invite) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Invite, error)
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Invite, error)
	Update(ctx context.Context, tx *gorm.DB, invite *models.Invite) error
	List(ctx context.Context, tx *gorm.DB, filters models.CandidateFilters) ([]*models.Invite, int64, error)
	ExistingEmails(ctx context.Context, tx *gorm.DB, templateID string, emails []string) (map[string]bool, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status models.InviteStatus) (int64, error)
	HasInvites(ctx context.Context, tx *gorm.DB, templateID string) (bool, error)
}

// ReportRepository persists graded results
type ReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.AssessmentReport) error
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*models.AssessmentReport, error)
	GetByInviteID(ctx context.Context, tx *gorm.DB, inviteID string) (*models.AssessmentReport, error)
	ListByTemplate(ctx context.Context, tx *gorm.DB, templateID string) ([]*models.AssessmentReport, error)
	AverageScore(ctx context.Context, tx *gorm.DB) (float64, error)
}

// ProctoringRepository persists the integrity event log
type ProctoringRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.ProctoringEvent) error
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.ProctoringEvent, error)
}
