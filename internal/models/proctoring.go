package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProctoringEventType string

const (
	ProctoringTabSwitch ProctoringEventType = "tab_switch"
	ProctoringFaceIssue ProctoringEventType = "face_issue"
)

func (t ProctoringEventType) IsValid() bool {
	return t == ProctoringTabSwitch || t == ProctoringFaceIssue
}

// ProctoringEvent is one integrity signal observed during an attempt.
type ProctoringEvent struct {
	ID            uint                `json:"id" gorm:"primaryKey"`
	SessionID     string              `json:"session_id" gorm:"type:varchar(36);not null;index"`
	Type          ProctoringEventType `json:"type" gorm:"type:varchar(20);not null"`
	OffsetSeconds int                 `json:"offset_seconds"`
	Metadata      datatypes.JSON      `json:"metadata,omitempty" gorm:"type:jsonb"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

func (ProctoringEvent) TableName() string {
	return "proctoring_events"
}

type ProctoringRequest struct {
	Type     ProctoringEventType `json:"type" validate:"required,proctoring_event"`
	Metadata map[string]any      `json:"metadata"`
}
