package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
)

type ProctoringPostgreSQL struct {
	db *gorm.DB
}

func NewProctoringPostgreSQL(db *gorm.DB) repositories.ProctoringRepository {
	return &ProctoringPostgreSQL{db: db}
}

func (r *ProctoringPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.ProctoringEvent) error {
	return getDB(r.db, tx).WithContext(ctx).Create(event).Error
}

func (r *ProctoringPostgreSQL) ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.ProctoringEvent, error) {
	var events []*models.ProctoringEvent
	err := getDB(r.db, tx).WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
