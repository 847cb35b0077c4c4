package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/proficiency-service/internal/cache"
	"github.com/SAP-F-2025/proficiency-service/internal/events"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/monitor"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/session"
)

const persistTimeout = 10 * time.Second

// Grading reasons carried by session.grading events
const (
	reasonLastQuestion = "last_question"
	reasonSkippedLast  = "skipped_last"
	reasonTimeExpired  = "time_expired"
	reasonManual       = "manual"
)

// SessionDependencies collects what the session service needs to run
type SessionDependencies struct {
	Catalog    Catalog
	Generator  session.Generator
	Scorer     session.Scorer
	Registry   *session.Registry
	Monitors   *monitor.Manager
	Templates  repositories.TemplateRepository
	Invites    repositories.InviteRepository
	Reports    repositories.ReportRepository
	Proctoring repositories.ProctoringRepository
	Cache      cache.CacheService
	Publisher  events.EventPublisher
	Clock      session.Clock
	Logger     *slog.Logger
}

type SessionOptions struct {
	// GradingDelay holds the session in Grading before scoring
	GradingDelay   time.Duration
	ResultCacheTTL time.Duration
}

type sessionService struct {
	deps   SessionDependencies
	opts   SessionOptions
	logger *slog.Logger
	ops    *ServiceLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewSessionService(deps SessionDependencies, opts SessionOptions) SessionService {
	if deps.Clock == nil {
		deps.Clock = session.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Registry == nil {
		deps.Registry = session.NewRegistry()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewMemoryCache()
	}
	if deps.Monitors == nil {
		deps.Monitors = monitor.NewManager(deps.Clock, time.Second, deps.Logger)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &sessionService{
		deps:   deps,
		opts:   opts,
		logger: deps.Logger,
		ops:    NewServiceLogger(deps.Logger, "sessions"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Create(ctx context.Context, req *models.CreateSessionRequest, candidateID string) (*models.SessionView, error) {
	s.logger.Info("Creating session", "mode", req.Mode, "role_id", req.RoleID, "candidate_id", candidateID)

	sess := s.newSession(req.Mode, session.WithCandidate(candidateID))
	if err := applySelection(sess, s.deps.Catalog, req.RoleID, req.SkillIDs, req.Tasks); err != nil {
		return nil, err
	}
	s.deps.Registry.Add(sess)

	s.logger.Info("Session created successfully", "session_id", sess.ID())
	return s.view(sess), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *sessionService) StartFromInvite(ctx context.Context, token, candidateID string) (*models.SessionView, error) {
	s.logger.Info("Starting session from invite", "candidate_id", candidateID)

	invite, err := s.deps.Invites.GetByToken(ctx, nil, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	switch invite.Status {
	case models.InviteCompleted:
		return nil, ErrInviteUsed
	case models.InviteInProgress:
		if invite.SessionID != nil {
			if sess, err := s.deps.Registry.Get(*invite.SessionID); err == nil {
				s.logger.Info("Resuming invite session", "session_id", sess.ID(), "invite_id", invite.ID)
				return s.view(sess), nil
			}
		}
	}

	template, err := s.deps.Templates.GetByID(ctx, nil, invite.TemplateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if candidateID == "" {
		candidateID = invite.Email
	}
	sess := s.newSession(template.Mode, session.WithCandidate(candidateID), session.WithInvite(invite.ID, template.ID))

	var tasks []models.SelectedTask
	for _, taskID := range template.Tasks() {
		skill, err := s.deps.Catalog.SkillOfTask(taskID)
		if err != nil {
			return nil, fmt.Errorf("template %s references unknown task: %w", template.ID, err)
		}
		tasks = append(tasks, models.SelectedTask{SkillID: skill.ID, TaskID: taskID})
	}
	if err := applySelection(sess, s.deps.Catalog, template.RoleID, template.Skills(), tasks); err != nil {
		return nil, fmt.Errorf("template %s no longer matches the catalog: %w", template.ID, err)
	}

	now := s.deps.Clock.Now()
	sessionID := sess.ID()
	invite.Status = models.InviteInProgress
	invite.SessionID = &sessionID
	invite.StartedAt = &now
	if err := s.deps.Invites.Update(ctx, nil, invite); err != nil {
		return nil, fmt.Errorf("failed to update invite: %w", err)
	}
	s.deps.Registry.Add(sess)
	s.invalidateDashboard(ctx)

	s.logger.Info("Invite session created successfully",
		"session_id", sessionID,
		"invite_id", invite.ID,
		"template_id", template.ID)
	return s.view(sess), nil
}

func (s *sessionService) Reset(ctx context.Context, sessionID string) (*models.SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	from := sess.State()
	sess.Reset()
	s.deps.Monitors.Forget(sessionID)

	s.publish(ctx, events.EventSessionReset, sessionID, events.SessionResetEvent{
		SessionID:   sessionID,
		CandidateID: sess.CandidateID(),
		FromState:   from,
	})
	s.logger.Info("Session reset", "session_id", sessionID, "from_state", from)
	return s.view(sess), nil
}

func (s *sessionService) Discard(ctx context.Context, sessionID string) error {
	if !s.deps.Registry.Remove(sessionID) {
		return &NotFoundError{Kind: "session", ID: sessionID}
	}
	s.deps.Monitors.Forget(sessionID)
	s.logger.Info("Session discarded", "session_id", sessionID)
	return nil
}

func (s *sessionService) Close() error {
	s.once.Do(s.cancel)
	s.wg.Wait()
	return nil
}

// ===== CONFIGURING =====

func (s *sessionService) SelectRole(ctx context.Context, sessionID, roleID string) (*models.SessionView, error) {
	return s.mutate(ctx, "select_role", sessionID, func(sess *session.Session) error {
		return sess.SelectRole(roleID)
	})
}

func (s *sessionService) ToggleSkill(ctx context.Context, sessionID, skillID string) (*models.SessionView, error) {
	return s.mutate(ctx, "toggle_skill", sessionID, func(sess *session.Session) error {
		return sess.ToggleSkill(skillID)
	})
}

func (s *sessionService) ToggleTask(ctx context.Context, sessionID, skillID, taskID string) (*models.SessionView, error) {
	return s.mutate(ctx, "toggle_task", sessionID, func(sess *session.Session) error {
		return sess.ToggleTask(skillID, taskID)
	})
}

func (s *sessionService) SelectAllTasks(ctx context.Context, sessionID, skillID string) (*models.SessionView, error) {
	return s.mutate(ctx, "select_all_tasks", sessionID, func(sess *session.Session) error {
		return sess.SelectAllTasks(skillID)
	})
}

func (s *sessionService) DeselectAllTasks(ctx context.Context, sessionID, skillID string) (*models.SessionView, error) {
	return s.mutate(ctx, "deselect_all_tasks", sessionID, func(sess *session.Session) error {
		return sess.DeselectAllTasks(skillID)
	})
}

func (s *sessionService) Estimate(ctx context.Context, sessionID string) (*models.EstimateResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return &models.EstimateResponse{
		Minutes:  sess.EstimatedMinutes(),
		CanStart: sess.CanStart(),
	}, nil
}

// ===== CONSENT =====

func (s *sessionService) RequestStart(ctx context.Context, sessionID string) (*models.SessionView, error) {
	return s.mutate(ctx, "request_start", sessionID, func(sess *session.Session) error {
		return sess.RequestStart()
	})
}

func (s *sessionService) Back(ctx context.Context, sessionID string) (*models.SessionView, error) {
	return s.mutate(ctx, "back", sessionID, func(sess *session.Session) error {
		return sess.Back()
	})
}

// Consent applies the camera flag and consent checkbox, then begins the attempt.
func (s *sessionService) Consent(ctx context.Context, sessionID string, req *models.ConsentRequest) (*models.SessionView, error) {
	view, err := s.mutate(ctx, "begin", sessionID, func(sess *session.Session) error {
		if err := sess.SetCameraActive(req.CameraActive); err != nil {
			return err
		}
		if req.Consent {
			if err := sess.AffirmConsent(); err != nil {
				return err
			}
		}
		return sess.Begin()
	})
	if err != nil {
		return nil, err
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	s.deps.Monitors.Watch(s.ctx, sess, s.onExpire)

	sel := sess.Selection()
	s.publish(ctx, events.EventSessionStarted, sessionID, events.SessionStartedEvent{
		SessionID:        sessionID,
		CandidateID:      sess.CandidateID(),
		InviteID:         sess.InviteID(),
		RoleID:           sel.RoleID,
		Mode:             sel.Mode,
		TotalQuestions:   len(view.Questions),
		TimeLimitSeconds: view.TimeLimitSeconds,
		StartedAt:        s.deps.Clock.Now(),
	})
	s.logger.Info("Assessment started successfully",
		"session_id", sessionID,
		"total_questions", len(view.Questions),
		"time_limit_seconds", view.TimeLimitSeconds)
	return view, nil
}

// ===== IN PROGRESS =====

func (s *sessionService) SubmitAnswer(ctx context.Context, sessionID string, req *models.SubmitAnswerRequest) (*models.SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := sess.SubmitAnswer(req.QuestionID, req.Answer, req.TimeSpentSeconds)
	if errors.Is(err, session.ErrTimeExpired) {
		s.startGrading(sess, reasonTimeExpired)
		return nil, err
	}
	if err != nil {
		s.ops.LogOperation(ctx, "submit_answer", sess.CandidateID(), sessionID, err)
		return nil, err
	}

	s.logger.Debug("Answer recorded",
		"session_id", sessionID,
		"question_id", req.QuestionID,
		"current_index", res.CurrentIndex)
	if res.Finished {
		s.startGrading(sess, reasonLastQuestion)
	}
	return s.view(sess), nil
}

func (s *sessionService) Skip(ctx context.Context, sessionID string) (*models.SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	res, err := sess.Skip()
	if err != nil {
		return nil, err
	}
	if res.Finished {
		s.startGrading(sess, reasonSkippedLast)
	}
	return s.view(sess), nil
}

func (s *sessionService) Next(ctx context.Context, sessionID string) (*models.SessionView, error) {
	return s.mutate(ctx, "next", sessionID, func(sess *session.Session) error {
		_, err := sess.Next()
		return err
	})
}

func (s *sessionService) Finish(ctx context.Context, sessionID string) (*models.SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Finish() {
		// A racing finish already won; only InProgress sessions may be finished.
		if st := sess.State(); st != session.Grading && st != session.Complete {
			return nil, invalidState("finish", st, session.InProgress)
		}
		return s.view(sess), nil
	}
	s.startGrading(sess, reasonManual)
	return s.view(sess), nil
}

func (s *sessionService) RecordProctoring(ctx context.Context, sessionID string, req *models.ProctoringRequest) (*models.SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.recordProctoring(ctx, sess, req.Type, req.Metadata); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// recordProctoring counts the event on the session, appends it to the log and
// returns its offset from the start of the attempt.
func (s *sessionService) recordProctoring(ctx context.Context, sess *session.Session, eventType models.ProctoringEventType, metadata map[string]any) (int, error) {
	var (
		offset int
		err    error
	)
	switch eventType {
	case models.ProctoringTabSwitch:
		offset, err = sess.RecordTabSwitch()
	case models.ProctoringFaceIssue:
		offset, err = sess.RecordFaceIssue()
	default:
		return 0, NewValidationError("type", "must be a valid proctoring event (tab_switch, face_issue)", eventType)
	}
	if err != nil {
		return 0, err
	}

	clean := redactMetadata(metadata)
	event := &models.ProctoringEvent{
		SessionID:     sess.ID(),
		Type:          eventType,
		OffsetSeconds: offset,
		OccurredAt:    s.deps.Clock.Now(),
	}
	if len(clean) > 0 {
		if raw, err := json.Marshal(clean); err == nil {
			event.Metadata = datatypes.JSON(raw)
		}
	}
	// The in-memory counter is authoritative for scoring; a lost log row is logged, not fatal.
	if err := s.deps.Proctoring.Create(ctx, nil, event); err != nil {
		s.logger.Error("Failed to persist proctoring event",
			"session_id", sess.ID(),
			"type", eventType,
			"error", err)
	}

	s.publish(ctx, events.EventProctoring, sess.ID(), events.ProctoringEventPayload{
		SessionID:     sess.ID(),
		Type:          eventType,
		OffsetSeconds: offset,
		Metadata:      clean,
	})
	s.logger.Info("Proctoring event recorded",
		"session_id", sess.ID(),
		"type", eventType,
		"offset_seconds", offset)
	return offset, nil
}

func (s *sessionService) Live(ctx context.Context, sessionID string) (*LiveSession, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	mon, ok := s.deps.Monitors.Monitor(sessionID)
	if !ok || sess.State() != session.InProgress {
		return nil, invalidState("watch", sess.State(), session.InProgress)
	}
	ticks, cancel := mon.Subscribe()
	return &LiveSession{
		SessionID: sessionID,
		Ticks:     ticks,
		Cancel:    cancel,
		tracker:   s.deps.Monitors.Tracker(sessionID, &visibilityRecorder{svc: s, sess: sess}),
		clock:     s.deps.Clock,
	}, nil
}

// visibilityRecorder routes tab switches detected over the live channel
// through the same path as reported ones.
type visibilityRecorder struct {
	svc  *sessionService
	sess *session.Session
}

func (r *visibilityRecorder) RecordTabSwitch() (int, error) {
	ctx, cancel := context.WithTimeout(r.svc.ctx, persistTimeout)
	defer cancel()
	return r.svc.recordProctoring(ctx, r.sess, models.ProctoringTabSwitch, map[string]any{"source": "visibility"})
}

// ===== GRADING / COMPLETE =====

func (s *sessionService) GetResult(ctx context.Context, sessionID string) (*models.Result, error) {
	sess, err := s.deps.Registry.Get(sessionID)
	if err == nil {
		switch st := sess.State(); st {
		case session.Complete:
			res, _ := sess.Result()
			return &res, nil
		case session.Grading:
			return nil, ErrResultPending
		default:
			return nil, invalidState("get result", st, session.Grading, session.Complete)
		}
	}

	// Evicted sessions are served from the cache, then from the report store.
	var res models.Result
	if err := s.deps.Cache.Get(ctx, cache.ReportKey(sessionID), &res); err == nil {
		return &res, nil
	}
	report, err := s.deps.Reports.GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, &NotFoundError{Kind: "session", ID: sessionID}
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	res, err = report.Result()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *sessionService) onExpire(sessionID string) {
	sess, err := s.deps.Registry.Get(sessionID)
	if err != nil {
		return
	}
	s.logger.Info("Assessment time expired", "session_id", sessionID)
	s.startGrading(sess, reasonTimeExpired)
}

// startGrading is called exactly once per attempt by whoever won the finish.
// The attempt is pinned here so a retake begun during GradingDelay is not
// graded by this goroutine.
func (s *sessionService) startGrading(sess *session.Session, reason string) {
	attempt := sess.Attempt()
	s.publish(s.ctx, events.EventSessionGrading, sess.ID(), events.SessionGradingEvent{
		SessionID:         sess.ID(),
		Reason:            reason,
		QuestionsAnswered: sess.AnswerCount(),
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if s.opts.GradingDelay > 0 {
			timer := time.NewTimer(s.opts.GradingDelay)
			select {
			case <-timer.C:
			case <-s.ctx.Done():
				timer.Stop()
			}
		}
		s.grade(sess, attempt)
	}()
}

func (s *sessionService) grade(sess *session.Session, attempt int) {
	sessionID := sess.ID()
	s.logger.Info("Grading session", "session_id", sessionID, "attempt", attempt)

	res, err := sess.Grade(attempt, s.deps.Scorer)
	if err != nil {
		// Reset, or reset and retaken, while grading was pending.
		s.logger.Warn("Grading skipped", "session_id", sessionID, "attempt", attempt, "error", err)
		return
	}
	completedAt := sess.CompletedAt()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), persistTimeout)
	defer cancel()

	reportID := uuid.NewString()
	report, err := models.NewAssessmentReport(reportID, sessionID, sess.CandidateID(), sess.Selection(), res, completedAt)
	if err != nil {
		s.logger.Error("Failed to build report", "session_id", sessionID, "error", err)
		return
	}
	if id := sess.InviteID(); id != "" {
		report.InviteID = &id
	}
	if id := sess.TemplateID(); id != "" {
		report.TemplateID = &id
	}
	if err := s.deps.Reports.Create(ctx, nil, report); err != nil {
		s.logger.Error("Failed to persist report", "session_id", sessionID, "error", err)
	}
	if err := s.deps.Cache.Set(ctx, cache.ReportKey(sessionID), res, s.opts.ResultCacheTTL); err != nil {
		s.logger.Warn("Failed to cache result", "session_id", sessionID, "error", err)
	}

	if inviteID := sess.InviteID(); inviteID != "" {
		s.completeInvite(ctx, inviteID, res.OverallScore, completedAt)
	}

	s.publish(ctx, events.EventSessionCompleted, sessionID, events.SessionCompletedEvent{
		SessionID:        sessionID,
		CandidateID:      sess.CandidateID(),
		InviteID:         sess.InviteID(),
		ReportID:         reportID,
		OverallScore:     res.OverallScore,
		ProficiencyLevel: res.ProficiencyLevel,
		IntegrityScore:   res.IntegrityScore,
		CompletedAt:      completedAt,
	})
	s.logger.Info("Session graded successfully",
		"session_id", sessionID,
		"overall_score", res.OverallScore,
		"proficiency_level", res.ProficiencyLevel)
}

func (s *sessionService) completeInvite(ctx context.Context, inviteID string, score int, completedAt time.Time) {
	invite, err := s.deps.Invites.GetByID(ctx, nil, inviteID)
	if err != nil {
		s.logger.Error("Failed to load invite for completion", "invite_id", inviteID, "error", err)
		return
	}
	invite.Status = models.InviteCompleted
	invite.Score = &score
	invite.CompletedAt = &completedAt
	if err := s.deps.Invites.Update(ctx, nil, invite); err != nil {
		s.logger.Error("Failed to complete invite", "invite_id", inviteID, "error", err)
		return
	}
	if err := s.deps.Cache.Delete(ctx, cache.InviteReportKey(inviteID)); err != nil {
		s.logger.Warn("Failed to invalidate candidate report", "invite_id", inviteID, "error", err)
	}
	s.invalidateDashboard(ctx)
}

// ===== HELPERS =====

func (s *sessionService) newSession(mode models.AssessmentMode, opts ...session.Option) *session.Session {
	opts = append(opts, session.WithClock(s.deps.Clock))
	return session.New(uuid.NewString(), mode, s.deps.Catalog, s.deps.Generator, opts...)
}

// applySelection replays a role, skills and tasks onto a Configuring session.
func applySelection(sess *session.Session, catalog Catalog, roleID string, skillIDs []string, tasks []models.SelectedTask) error {
	if err := sess.SelectRole(roleID); err != nil {
		return err
	}
	for _, skillID := range skillIDs {
		if err := sess.ToggleSkill(skillID); err != nil {
			return err
		}
	}
	for _, t := range tasks {
		skillID := t.SkillID
		if skillID == "" {
			skill, err := catalog.SkillOfTask(t.TaskID)
			if err != nil {
				return err
			}
			skillID = skill.ID
		}
		if err := sess.AddTask(skillID, t.TaskID); err != nil {
			return err
		}
	}
	return nil
}

func (s *sessionService) lookup(sessionID string) (*session.Session, error) {
	return s.deps.Registry.Get(sessionID)
}

func (s *sessionService) mutate(ctx context.Context, operation, sessionID string, fn func(*session.Session) error) (*models.SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		s.ops.LogOperation(ctx, operation, sess.CandidateID(), sessionID, err)
		return nil, err
	}
	return s.view(sess), nil
}

func (s *sessionService) view(sess *session.Session) *models.SessionView {
	v := sess.View(s.deps.Clock.Now())
	return &v
}

func (s *sessionService) publish(ctx context.Context, t events.EventType, sessionID string, data any) {
	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.Publish(ctx, events.NewEvent(t, sessionID, data, s.deps.Clock.Now())); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", t, "session_id", sessionID, "error", err)
	}
}

func (s *sessionService) invalidateDashboard(ctx context.Context) {
	if err := s.deps.Cache.Delete(ctx, cache.DashboardKey()); err != nil {
		s.logger.Warn("Failed to invalidate dashboard cache", "error", err)
	}
}

func invalidState(op string, current session.State, required ...session.State) error {
	req := make([]string, len(required))
	for i, r := range required {
		req[i] = string(r)
	}
	return &InvalidStateError{Operation: op, Current: string(current), Required: req}
}
