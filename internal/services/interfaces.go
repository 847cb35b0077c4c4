package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/monitor"
	"github.com/SAP-F-2025/proficiency-service/internal/session"
)

// Catalog is the read side of the content catalog used by services and handlers
type Catalog interface {
	session.Catalog
	Summaries() []models.RoleSummary
	Skills(roleID string) ([]models.Skill, error)
	Tasks(skillID string) ([]models.Task, error)
	SkillOfTask(taskID string) (models.Skill, error)
}

// SessionService drives candidate sessions from configuration to a graded result
type SessionService interface {
	Create(ctx context.Context, req *models.CreateSessionRequest, candidateID string) (*models.SessionView, error)
	Get(ctx context.Context, sessionID string) (*models.SessionView, error)

	// Configuring
	SelectRole(ctx context.Context, sessionID, roleID string) (*models.SessionView, error)
	ToggleSkill(ctx context.Context, sessionID, skillID string) (*models.SessionView, error)
	ToggleTask(ctx context.Context, sessionID, skillID, taskID string) (*models.SessionView, error)
	SelectAllTasks(ctx context.Context, sessionID, skillID string) (*models.SessionView, error)
	DeselectAllTasks(ctx context.Context, sessionID, skillID string) (*models.SessionView, error)
	Estimate(ctx context.Context, sessionID string) (*models.EstimateResponse, error)

	// Consent
	RequestStart(ctx context.Context, sessionID string) (*models.SessionView, error)
	Back(ctx context.Context, sessionID string) (*models.SessionView, error)
	Consent(ctx context.Context, sessionID string, req *models.ConsentRequest) (*models.SessionView, error)

	// InProgress
	SubmitAnswer(ctx context.Context, sessionID string, req *models.SubmitAnswerRequest) (*models.SessionView, error)
	Skip(ctx context.Context, sessionID string) (*models.SessionView, error)
	Next(ctx context.Context, sessionID string) (*models.SessionView, error)
	RecordProctoring(ctx context.Context, sessionID string, req *models.ProctoringRequest) (*models.SessionView, error)
	Finish(ctx context.Context, sessionID string) (*models.SessionView, error)
	Live(ctx context.Context, sessionID string) (*LiveSession, error)

	// Grading / Complete
	GetResult(ctx context.Context, sessionID string) (*models.Result, error)
	Reset(ctx context.Context, sessionID string) (*models.SessionView, error)
	Discard(ctx context.Context, sessionID string) error

	StartFromInvite(ctx context.Context, token, candidateID string) (*models.SessionView, error)

	// Close stops live monitors and waits for in-flight grading
	Close() error
}

// TemplateService manages admin-defined assessment templates
type TemplateService interface {
	Create(ctx context.Context, req *models.TemplateRequest, creatorID string) (*models.AssessmentTemplate, error)
	GetByID(ctx context.Context, id string) (*models.AssessmentTemplate, error)
	Update(ctx context.Context, id string, req *models.TemplateRequest) (*models.AssessmentTemplate, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters models.TemplateFilters) ([]*models.AssessmentTemplate, int64, error)
}

// InviteService manages candidate invites and the admin views over them
type InviteService interface {
	InviteCandidates(ctx context.Context, templateID string, req *models.InviteRequest) ([]*models.Invite, error)
	ValidateInvite(ctx context.Context, token string) (*models.InviteValidation, error)
	ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Invite, int64, error)
	CandidateReport(ctx context.Context, inviteID string) (*models.CandidateReport, error)
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

// ExportService moves templates and reports in and out of spreadsheets
type ExportService interface {
	ExportTemplateReports(ctx context.Context, templateID string) ([]byte, error)
	ImportTemplates(ctx context.Context, reader io.Reader, creatorID string) (*ImportResult, error)
}

// LiveSession is a subscription to one in-progress session's countdown plus
// its page-visibility tracker.
type LiveSession struct {
	SessionID string
	Ticks     <-chan monitor.TickEvent
	Cancel    func()

	tracker *monitor.VisibilityTracker
	clock   session.Clock
}

// Hidden records that the candidate's page lost visibility.
func (l *LiveSession) Hidden() {
	l.tracker.Hidden(l.clock.Now())
}

// Shown closes a hide cycle and counts it as a tab switch; it returns the time away.
func (l *LiveSession) Shown() (time.Duration, bool, error) {
	return l.tracker.Shown(l.clock.Now())
}
