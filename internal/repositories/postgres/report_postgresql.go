package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
)

type ReportPostgreSQL struct {
	db *gorm.DB
}

func NewReportPostgreSQL(db *gorm.DB) repositories.ReportRepository {
	return &ReportPostgreSQL{db: db}
}

func (r *ReportPostgreSQL) Create(ctx context.Context, tx *gorm.DB, report *models.AssessmentReport) error {
	return getDB(r.db, tx).WithContext(ctx).Create(report).Error
}

func (r *ReportPostgreSQL) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*models.AssessmentReport, error) {
	var report models.AssessmentReport
	if err := getDB(r.db, tx).WithContext(ctx).Where("session_id = ?", sessionID).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// GetByInviteID returns the most recent report completed from the invite
func (r *ReportPostgreSQL) GetByInviteID(ctx context.Context, tx *gorm.DB, inviteID string) (*models.AssessmentReport, error) {
	var report models.AssessmentReport
	err := getDB(r.db, tx).WithContext(ctx).
		Where("invite_id = ?", inviteID).
		Order("completed_at DESC").
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportPostgreSQL) ListByTemplate(ctx context.Context, tx *gorm.DB, templateID string) ([]*models.AssessmentReport, error) {
	var reports []*models.AssessmentReport
	err := getDB(r.db, tx).WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("completed_at ASC").
		Find(&reports).Error
	return reports, err
}

func (r *ReportPostgreSQL) AverageScore(ctx context.Context, tx *gorm.DB) (float64, error) {
	var avg *float64
	err := getDB(r.db, tx).WithContext(ctx).
		Model(&models.AssessmentReport{}).
		Select("AVG(overall_score)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
