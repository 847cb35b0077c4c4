package models

import "time"

type InviteStatus string

const (
	InvitePending    InviteStatus = "pending"
	InviteInProgress InviteStatus = "in_progress"
	InviteCompleted  InviteStatus = "completed"
)

func (s InviteStatus) IsValid() bool {
	switch s {
	case InvitePending, InviteInProgress, InviteCompleted:
		return true
	}
	return false
}

// Invite ties a candidate email to a template through a one-time token.
type Invite struct {
	ID          string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Token       string       `json:"token" gorm:"type:varchar(64);uniqueIndex;not null"`
	TemplateID  string       `json:"template_id" gorm:"type:varchar(36);not null;index"`
	Email       string       `json:"email" gorm:"type:varchar(255);not null;index"`
	Status      InviteStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	SessionID   *string      `json:"session_id,omitempty" gorm:"type:varchar(36)"`
	Score       *int         `json:"score,omitempty"`
	InvitedAt   time.Time    `json:"invited_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func (Invite) TableName() string {
	return "assessment_invites"
}

type InviteRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,max=100,dive,required,email"`
}

type CandidateFilters struct {
	TemplateID string       `form:"template_id"`
	Status     InviteStatus `form:"status" validate:"omitempty,invite_status"`
	Search     string       `form:"search"`
	Limit      int          `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset     int          `form:"offset" validate:"omitempty,min=0"`
}

// InviteValidation is returned to a candidate opening an invite link.
type InviteValidation struct {
	Valid        bool         `json:"valid"`
	Status       InviteStatus `json:"status"`
	TemplateID   string       `json:"template_id"`
	TemplateName string       `json:"template_name"`
	Email        string       `json:"email"`
}

type DashboardStats struct {
	TotalTemplates  int64   `json:"total_templates"`
	TotalCandidates int64   `json:"total_candidates"`
	CompletedTests  int64   `json:"completed_tests"`
	AverageScore    float64 `json:"average_score"`
}
