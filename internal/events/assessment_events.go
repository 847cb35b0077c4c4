package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

// EventType represents the kinds of events the proficiency service emits
type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventSessionGrading   EventType = "session.grading"
	EventSessionCompleted EventType = "session.completed"
	EventSessionReset     EventType = "session.reset"
	EventProctoring       EventType = "proctoring.event"
	EventInviteCreated    EventType = "invite.created"
)

const (
	eventSource  = "proficiency-service"
	eventVersion = "1.0"
)

// Event is the envelope for every published event
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Data      any            `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(t EventType, sessionID string, data any, at time.Time) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sessionID,
		Timestamp: at.UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type SessionStartedEvent struct {
	SessionID        string                `json:"session_id"`
	CandidateID      string                `json:"candidate_id"`
	InviteID         string                `json:"invite_id,omitempty"`
	RoleID           string                `json:"role_id"`
	Mode             models.AssessmentMode `json:"mode"`
	TotalQuestions   int                   `json:"total_questions"`
	TimeLimitSeconds int                   `json:"time_limit_seconds"`
	StartedAt        time.Time             `json:"started_at"`
}

type SessionGradingEvent struct {
	SessionID         string `json:"session_id"`
	Reason            string `json:"reason"` // last_question, skipped_last, time_expired, manual
	QuestionsAnswered int    `json:"questions_answered"`
}

type SessionCompletedEvent struct {
	SessionID        string    `json:"session_id"`
	CandidateID      string    `json:"candidate_id"`
	InviteID         string    `json:"invite_id,omitempty"`
	ReportID         string    `json:"report_id"`
	OverallScore     int       `json:"overall_score"`
	ProficiencyLevel int       `json:"proficiency_level"`
	IntegrityScore   int       `json:"integrity_score"`
	CompletedAt      time.Time `json:"completed_at"`
}

type SessionResetEvent struct {
	SessionID   string              `json:"session_id"`
	CandidateID string              `json:"candidate_id"`
	FromState   models.SessionState `json:"from_state"`
}

type ProctoringEventPayload struct {
	SessionID     string                     `json:"session_id"`
	Type          models.ProctoringEventType `json:"type"`
	OffsetSeconds int                        `json:"offset_seconds"`
	Metadata      map[string]any             `json:"metadata,omitempty"`
}

type InviteCreatedEvent struct {
	InviteID   string `json:"invite_id"`
	TemplateID string `json:"template_id"`
	Email      string `json:"email"`
	Token      string `json:"token"`
}
