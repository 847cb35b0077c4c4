package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
)

type InvitePostgreSQL struct {
	db *gorm.DB
}

func NewInvitePostgreSQL(db *gorm.DB) repositories.InviteRepository {
	return &InvitePostgreSQL{db: db}
}

func (r *InvitePostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, invites []*models.Invite) error {
	if len(invites) == 0 {
		return nil
	}
	return getDB(r.db, tx).WithContext(ctx).CreateInBatches(invites, 100).Error
}

func (r *InvitePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Invite, error) {
	var invite models.Invite
	if err := getDB(r.db, tx).WithContext(ctx).Where("id = ?", id).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InvitePostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Invite, error) {
	var invite models.Invite
	if err := getDB(r.db, tx).WithContext(ctx).Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InvitePostgreSQL) Update(ctx context.Context, tx *gorm.DB, invite *models.Invite) error {
	return getDB(r.db, tx).WithContext(ctx).Save(invite).Error
}

func (r *InvitePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters models.CandidateFilters) ([]*models.Invite, int64, error) {
	query := getDB(r.db, tx).WithContext(ctx).Model(&models.Invite{})

	if filters.TemplateID != "" {
		query = query.Where("template_id = ?", filters.TemplateID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Search != "" {
		query = query.Where("email ILIKE ?", likePattern(filters.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invites []*models.Invite
	if err := paginate(query.Order("invited_at DESC"), filters.Limit, filters.Offset).Find(&invites).Error; err != nil {
		return nil, 0, err
	}
	return invites, total, nil
}

func (r *InvitePostgreSQL) ExistingEmails(ctx context.Context, tx *gorm.DB, templateID string, emails []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(emails) == 0 {
		return existing, nil
	}
	var found []string
	err := getDB(r.db, tx).WithContext(ctx).
		Model(&models.Invite{}).
		Where("template_id = ? AND email IN ?", templateID, emails).
		Pluck("email", &found).Error
	if err != nil {
		return nil, err
	}
	for _, e := range found {
		existing[e] = true
	}
	return existing, nil
}

func (r *InvitePostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var total int64
	err := getDB(r.db, tx).WithContext(ctx).Model(&models.Invite{}).Count(&total).Error
	return total, err
}

func (r *InvitePostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB, status models.InviteStatus) (int64, error) {
	var total int64
	err := getDB(r.db, tx).WithContext(ctx).Model(&models.Invite{}).Where("status = ?", status).Count(&total).Error
	return total, err
}

func (r *InvitePostgreSQL) HasInvites(ctx context.Context, tx *gorm.DB, templateID string) (bool, error) {
	var total int64
	err := getDB(r.db, tx).WithContext(ctx).Model(&models.Invite{}).Where("template_id = ?", templateID).Limit(1).Count(&total).Error
	return total > 0, err
}
