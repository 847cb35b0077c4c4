package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
)

type TemplatePostgreSQL struct {
	db *gorm.DB
}

func NewTemplatePostgreSQL(db *gorm.DB) repositories.TemplateRepository {
	return &TemplatePostgreSQL{db: db}
}

func (r *TemplatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, template *models.AssessmentTemplate) error {
	return getDB(r.db, tx).WithContext(ctx).Create(template).Error
}

func (r *TemplatePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AssessmentTemplate, error) {
	var template models.AssessmentTemplate
	if err := getDB(r.db, tx).WithContext(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *TemplatePostgreSQL) Update(ctx context.Context, tx *gorm.DB, template *models.AssessmentTemplate) error {
	return getDB(r.db, tx).WithContext(ctx).Save(template).Error
}

func (r *TemplatePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := getDB(r.db, tx).WithContext(ctx).Where("id = ?", id).Delete(&models.AssessmentTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TemplatePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters models.TemplateFilters) ([]*models.AssessmentTemplate, int64, error) {
	query := getDB(r.db, tx).WithContext(ctx).Model(&models.AssessmentTemplate{})

	if filters.RoleID != "" {
		query = query.Where("role_id = ?", filters.RoleID)
	}
	if filters.Mode != "" {
		query = query.Where("mode = ?", filters.Mode)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var templates []*models.AssessmentTemplate
	if err := paginate(query.Order("created_at DESC"), filters.Limit, filters.Offset).Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

func (r *TemplatePostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var total int64
	err := getDB(r.db, tx).WithContext(ctx).Model(&models.AssessmentTemplate{}).Count(&total).Error
	return total, err
}
