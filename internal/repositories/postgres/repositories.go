package postgres

import (
	"gorm.io/gorm"

	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
)

// Repositories bundles the postgres-backed repositories sharing one connection
type Repositories struct {
	DB         *gorm.DB
	Templates  repositories.TemplateRepository
	Invites    repositories.InviteRepository
	Reports    repositories.ReportRepository
	Proctoring repositories.ProctoringRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:         db,
		Templates:  NewTemplatePostgreSQL(db),
		Invites:    NewInvitePostgreSQL(db),
		Reports:    NewReportPostgreSQL(db),
		Proctoring: NewProctoringPostgreSQL(db),
	}
}
